package pipeline

import (
	"fmt"
	"strings"

	"codetutor/internal/output"
	t "codetutor/internal/types"
)

// maxFileChars caps how much of a single file is inlined into a prompt.
const maxFileChars = 12000

// filesContext serializes the file set for a prompt, one indexed block per
// file so the model can reference files by index.
func filesContext(files []t.File) string {
	var b strings.Builder
	for i, f := range files {
		content := f.Content
		if len(content) > maxFileChars {
			content = content[:maxFileChars] + "\n... (truncated)"
		}
		fmt.Fprintf(&b, "--- File %d: %s ---\n%s\n\n", i, f.Path, content)
	}
	return b.String()
}

// abstractionListing renders "index. name: description" lines.
func abstractionListing(abs []t.Abstraction) string {
	var b strings.Builder
	for i, a := range abs {
		fmt.Fprintf(&b, "%d. %s: %s\n", i, a.Name, a.Description)
	}
	return b.String()
}

// edgeListing renders relationship edges with abstraction names.
func edgeListing(edges []t.Relationship, abs []t.Abstraction) string {
	var b strings.Builder
	for _, e := range edges {
		fmt.Fprintf(&b, "- %s (%d) %s %s (%d)\n", abs[e.From].Name, e.From, e.Label, abs[e.To].Name, e.To)
	}
	return b.String()
}

// relatedEdges keeps only the edges touching abstraction index ai.
func relatedEdges(edges []t.Relationship, abs []t.Abstraction, ai int) string {
	var touching []t.Relationship
	for _, e := range edges {
		if e.From == ai || e.To == ai {
			touching = append(touching, e)
		}
	}
	if len(touching) == 0 {
		return "(none)\n"
	}
	return edgeListing(touching, abs)
}

// fileExcerpts inlines the files backing one abstraction.
func fileExcerpts(files []t.File, indices []int) string {
	var b strings.Builder
	for _, fi := range indices {
		if fi < 0 || fi >= len(files) {
			continue
		}
		f := files[fi]
		content := f.Content
		if len(content) > maxFileChars {
			content = content[:maxFileChars] + "\n... (truncated)"
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", f.Path, content)
	}
	return b.String()
}

// chapterListing renders the full table of contents with the stable
// filenames, so chapters can cross-link each other.
func chapterListing(order []int, abs []t.Abstraction) string {
	var b strings.Builder
	for pos, ai := range order {
		name := abs[ai].Name
		fmt.Fprintf(&b, "%d. %s (%s)\n", pos+1, name, output.ChapterFilename(pos+1, name))
	}
	return b.String()
}
