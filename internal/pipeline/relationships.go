package pipeline

import (
	"context"
	"fmt"
	"strings"

	"codetutor/internal/flow"
	"codetutor/internal/llm"
	t "codetutor/internal/types"
	"codetutor/internal/util/jsonutil"
)

// AnalyzeRelationships maps how the identified abstractions interact: a
// one-paragraph project summary plus directed, labeled edges between
// abstraction indices.
type AnalyzeRelationships struct {
	LLM llm.Client
}

type relationshipsInput struct {
	project  string
	listing  string
	absCount int
}

type relationshipsOut struct {
	raw      string
	absCount int
}

func (s *AnalyzeRelationships) Name() string { return "analyze-relationships" }

func (s *AnalyzeRelationships) Prepare(rc *flow.Context) (any, error) {
	if len(rc.Abstractions) == 0 {
		return nil, fmt.Errorf("no abstractions to relate")
	}
	return relationshipsInput{
		project:  rc.ProjectName,
		listing:  abstractionListing(rc.Abstractions),
		absCount: len(rc.Abstractions),
	}, nil
}

func (s *AnalyzeRelationships) Execute(ctx context.Context, in any) (any, error) {
	inp := in.(relationshipsInput)
	var b strings.Builder
	fmt.Fprintf(&b, "The project %q contains these abstractions (indexed 0..%d):\n\n%s\n", inp.project, inp.absCount-1, inp.listing)
	b.WriteString("Write a beginner-friendly summary of the whole project in one short paragraph, ")
	b.WriteString("then list how the abstractions interact as directed edges with a short verb-phrase label.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use only the indices listed above.\n")
	b.WriteString("- Do not relate an abstraction to itself.\n")
	b.WriteString("- Keep each label under six words.\n\n")
	b.WriteString("STRICT OUTPUT FORMAT: respond with JSON only, no prose, matching exactly:\n")
	b.WriteString("{\"summary\": \"...\", \"relationships\": [{\"from_abstraction\": 0, \"to_abstraction\": 1, \"label\": \"configures\"}]}\n")

	resp, err := s.LLM.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return relationshipsOut{raw: resp, absCount: inp.absCount}, nil
}

func (s *AnalyzeRelationships) Finalize(out any, rc *flow.Context) error {
	o := out.(relationshipsOut)
	var parsed t.RelationshipSet
	if err := jsonutil.UnmarshalFlex([]byte(o.raw), &parsed); err != nil {
		return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("unparseable response: %v", err)}
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return &flow.ValidationError{Stage: s.Name(), Reason: "empty project summary"}
	}
	for i, e := range parsed.Edges {
		if e.From < 0 || e.From >= o.absCount || e.To < 0 || e.To >= o.absCount {
			return &flow.ValidationError{
				Stage:  s.Name(),
				Reason: fmt.Sprintf("edge %d references abstraction %d->%d, have %d abstractions", i, e.From, e.To, o.absCount),
			}
		}
		if e.From == e.To {
			return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("edge %d relates abstraction %d to itself", i, e.From)}
		}
	}
	rc.Relationships = &parsed
	return nil
}
