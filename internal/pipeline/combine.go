package pipeline

import (
	"context"
	"fmt"
	"strings"

	"codetutor/internal/flow"
	"codetutor/internal/output"
	t "codetutor/internal/types"
)

// CombineTutorial assembles the final artifact set: an index page with the
// project summary, a relationship diagram and a linked table of contents,
// plus one file per chapter. No model calls, pure assembly.
type CombineTutorial struct {
	OutputDir string
}

type combineInput struct {
	project  string
	dir      string
	summary  string
	edges    []t.Relationship
	abs      []t.Abstraction
	chapters []t.Chapter
}

func (s *CombineTutorial) Name() string { return "combine-tutorial" }

func (s *CombineTutorial) Prepare(rc *flow.Context) (any, error) {
	if len(rc.Chapters) == 0 {
		return nil, fmt.Errorf("no chapters drafted yet")
	}
	if rc.Relationships == nil {
		return nil, fmt.Errorf("relationships not analyzed yet")
	}
	dir := s.OutputDir
	if rc.OutputDir != "" {
		dir = rc.OutputDir
	}
	return combineInput{
		project:  rc.ProjectName,
		dir:      dir,
		summary:  rc.Relationships.Summary,
		edges:    rc.Relationships.Edges,
		abs:      rc.Abstractions,
		chapters: rc.Chapters,
	}, nil
}

func (s *CombineTutorial) Execute(ctx context.Context, in any) (any, error) {
	inp := in.(combineInput)

	var idx strings.Builder
	fmt.Fprintf(&idx, "# Tutorial: %s\n\n%s\n\n", inp.project, inp.summary)
	idx.WriteString(mermaidDiagram(inp.edges, inp.abs))
	idx.WriteString("\n## Chapters\n\n")
	for _, ch := range inp.chapters {
		fmt.Fprintf(&idx, "%d. [%s](%s)\n", ch.Number, ch.Title, ch.Filename)
	}

	tut := output.Tutorial{
		Project:  inp.project,
		Index:    idx.String(),
		Chapters: make([]output.File, 0, len(inp.chapters)),
	}
	for _, ch := range inp.chapters {
		tut.Chapters = append(tut.Chapters, output.File{Name: ch.Filename, Content: ch.Content})
	}
	return struct {
		dir string
		tut output.Tutorial
	}{inp.dir, tut}, nil
}

func (s *CombineTutorial) Finalize(out any, rc *flow.Context) error {
	o := out.(struct {
		dir string
		tut output.Tutorial
	})
	dir, err := output.Write(o.dir, o.tut)
	if err != nil {
		return err
	}
	rc.FinalOutputDir = dir
	return nil
}

// mermaidDiagram renders the abstraction graph as a mermaid flowchart.
func mermaidDiagram(edges []t.Relationship, abs []t.Abstraction) string {
	var b strings.Builder
	b.WriteString("```mermaid\nflowchart TD\n")
	for i, a := range abs {
		fmt.Fprintf(&b, "    A%d[\"%s\"]\n", i, strings.ReplaceAll(a.Name, "\"", "'"))
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "    A%d -- \"%s\" --> A%d\n", e.From, strings.ReplaceAll(e.Label, "\"", "'"), e.To)
	}
	b.WriteString("```\n")
	return b.String()
}
