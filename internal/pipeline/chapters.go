package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"codetutor/internal/flow"
	"codetutor/internal/llm"
	"codetutor/internal/output"
	t "codetutor/internal/types"
)

// WriteChapters drafts one tutorial chapter per ordered abstraction. Each
// item sees the drafts already completed at the time it runs, so with one
// worker every chapter builds on all of its predecessors.
type WriteChapters struct {
	LLM llm.Client

	mu     sync.Mutex
	drafts map[int]string // chapter number -> draft content
}

type chapterItem struct {
	number      int // 1-based
	abstraction int
	name        string
	description string
	listing     string // full table of contents
	related     string
	excerpts    string
	project     string
	summary     string
}

func (s *WriteChapters) Name() string { return "write-chapters" }

func (s *WriteChapters) PrepareItems(rc *flow.Context) ([]any, error) {
	if len(rc.ChapterOrder) == 0 {
		return nil, fmt.Errorf("no chapter order decided yet")
	}
	if rc.Relationships == nil {
		return nil, fmt.Errorf("relationships not analyzed yet")
	}
	s.mu.Lock()
	s.drafts = make(map[int]string, len(rc.ChapterOrder))
	s.mu.Unlock()

	listing := chapterListing(rc.ChapterOrder, rc.Abstractions)
	items := make([]any, 0, len(rc.ChapterOrder))
	for pos, ai := range rc.ChapterOrder {
		a := rc.Abstractions[ai]
		items = append(items, chapterItem{
			number:      pos + 1,
			abstraction: ai,
			name:        a.Name,
			description: a.Description,
			listing:     listing,
			related:     relatedEdges(rc.Relationships.Edges, rc.Abstractions, ai),
			excerpts:    fileExcerpts(rc.Files, a.FileIndices),
			project:     rc.ProjectName,
			summary:     rc.Relationships.Summary,
		})
	}
	return items, nil
}

func (s *WriteChapters) ExecuteItem(ctx context.Context, item any) (any, error) {
	it := item.(chapterItem)

	// Snapshot the drafts that already exist, in chapter order, so this
	// chapter can stay consistent with what came before it.
	s.mu.Lock()
	var prior strings.Builder
	for n := 1; n < it.number; n++ {
		if d, ok := s.drafts[n]; ok {
			prior.WriteString(d)
			prior.WriteString("\n\n")
		}
	}
	s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "You are writing a beginner tutorial for the project %q.\n", it.project)
	fmt.Fprintf(&b, "Project summary: %s\n\n", it.summary)
	fmt.Fprintf(&b, "Full table of contents:\n%s\n", it.listing)
	if prior.Len() > 0 {
		fmt.Fprintf(&b, "Chapters written so far:\n\n%s\n", prior.String())
	}
	fmt.Fprintf(&b, "Write chapter %d of the tutorial, about %q.\n", it.number, it.name)
	fmt.Fprintf(&b, "Concept description: %s\n\n", it.description)
	fmt.Fprintf(&b, "Relationships involving this concept:\n%s\n", it.related)
	fmt.Fprintf(&b, "Relevant source files:\n\n%s\n", it.excerpts)
	b.WriteString("Guidelines:\n")
	fmt.Fprintf(&b, "- Start with the heading '# Chapter %d: %s'.\n", it.number, it.name)
	b.WriteString("- Explain the concept to a newcomer, with short code excerpts where they help.\n")
	b.WriteString("- Link to other chapters using the filenames from the table of contents.\n")
	b.WriteString("- End with a one-sentence transition to the next chapter, if there is one.\n")
	b.WriteString("- Respond with the chapter markdown only, no preamble.\n")

	resp, err := s.LLM.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}
	draft := strings.TrimSpace(resp)
	heading := fmt.Sprintf("# Chapter %d", it.number)
	if !strings.HasPrefix(draft, heading) {
		draft = fmt.Sprintf("%s: %s\n\n%s", heading, it.name, draft)
	}
	s.mu.Lock()
	s.drafts[it.number] = draft
	s.mu.Unlock()
	return draft, nil
}

func (s *WriteChapters) FinalizeItems(results []flow.ItemResult, rc *flow.Context) error {
	chapters := make([]t.Chapter, len(results))
	for _, r := range results {
		pos := r.Position
		ai := rc.ChapterOrder[pos]
		name := rc.Abstractions[ai].Name
		ch := t.Chapter{
			Number:      pos + 1,
			Abstraction: ai,
			Title:       name,
			Filename:    output.ChapterFilename(pos+1, name),
		}
		if r.Err != nil {
			ch.Failed = true
			ch.Content = fmt.Sprintf("# Chapter %d: %s\n\n*This chapter could not be generated: %v*\n", pos+1, name, r.Err)
		} else {
			ch.Content = r.Out.(string)
		}
		chapters[pos] = ch
	}
	rc.Chapters = chapters
	return nil
}
