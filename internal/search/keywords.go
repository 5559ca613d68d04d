package search

import (
	"context"
	"fmt"
	"strings"

	"codetutor/internal/llm"
	"codetutor/internal/util/jsonutil"
)

const (
	maxReadmeChars  = 6000
	maxSummaryChars = 500
)

// ExtractKeywords asks the model for search keywords for a natural-language
// query. A malformed response degrades to naive tokenization instead of
// failing the search.
func ExtractKeywords(ctx context.Context, cli llm.Client, query string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Extract 2 to 5 GitHub search keywords from this request: %q\n\n"+
			"STRICT OUTPUT FORMAT: respond with a JSON string array only, no prose, for example:\n"+
			"[\"http\", \"router\"]\n", query)
	resp, err := cli.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var keywords []string
	if err := jsonutil.UnmarshalFlex([]byte(resp), &keywords); err != nil || len(keywords) == 0 {
		return fallbackKeywords(query), nil
	}
	return keywords, nil
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true,
	"with": true, "this": true, "what": true, "how": true,
}

// fallbackKeywords tokenizes the query, dropping stopwords and short words.
func fallbackKeywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?\"'()")
		if len(w) <= 3 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		out = strings.Fields(strings.ToLower(query))
	}
	return out
}

// Summarize condenses a README into 2 to 3 sentences. Model failure or an
// oversized answer degrades to the first paragraph of the README.
func Summarize(ctx context.Context, cli llm.Client, readme string) string {
	prompt := fmt.Sprintf(
		"Summarize this project README in 2 to 3 plain sentences for someone choosing what to study. "+
			"Respond with the sentences only.\n\n%s\n", truncate(readme, maxReadmeChars))
	resp, err := cli.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(resp) == "" {
		return truncate(firstParagraph(readme), maxSummaryChars)
	}
	return truncate(strings.TrimSpace(resp), maxSummaryChars)
}

// truncate cuts s to at most n characters, preferring a sentence boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexAny(cut, ".!?"); i > n/2 {
		return cut[:i+1]
	}
	return cut + "..."
}

// firstParagraph returns the first prose paragraph, skipping markdown
// headers, badges and images.
func firstParagraph(readme string) string {
	for _, para := range strings.Split(readme, "\n\n") {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") ||
				strings.HasPrefix(line, "![") || strings.HasPrefix(line, "[!") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			return strings.Join(lines, " ")
		}
	}
	return ""
}
