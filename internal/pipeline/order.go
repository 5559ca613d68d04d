package pipeline

import (
	"context"
	"fmt"
	"strings"

	"codetutor/internal/flow"
	"codetutor/internal/llm"
	"codetutor/internal/util/jsonutil"
)

// OrderChapters decides the pedagogical order in which abstractions should
// be taught. Its output must be an exact permutation of the abstraction
// indices; anything else is rejected outright.
type OrderChapters struct {
	LLM llm.Client
}

type orderInput struct {
	project  string
	listing  string
	edges    string
	summary  string
	absCount int
}

type orderOut struct {
	raw      string
	absCount int
}

type orderParsed struct {
	Order []int `json:"order"`
}

func (s *OrderChapters) Name() string { return "order-chapters" }

func (s *OrderChapters) Prepare(rc *flow.Context) (any, error) {
	if len(rc.Abstractions) == 0 {
		return nil, fmt.Errorf("no abstractions to order")
	}
	if rc.Relationships == nil {
		return nil, fmt.Errorf("relationships not analyzed yet")
	}
	return orderInput{
		project:  rc.ProjectName,
		listing:  abstractionListing(rc.Abstractions),
		edges:    edgeListing(rc.Relationships.Edges, rc.Abstractions),
		summary:  rc.Relationships.Summary,
		absCount: len(rc.Abstractions),
	}, nil
}

func (s *OrderChapters) Execute(ctx context.Context, in any) (any, error) {
	inp := in.(orderInput)
	var b strings.Builder
	fmt.Fprintf(&b, "Project %q: %s\n\n", inp.project, inp.summary)
	fmt.Fprintf(&b, "Abstractions (indexed 0..%d):\n%s\n", inp.absCount-1, inp.listing)
	fmt.Fprintf(&b, "Relationships:\n%s\n", inp.edges)
	b.WriteString("Decide the best order to teach these abstractions to a newcomer, ")
	b.WriteString("starting from user-facing or foundational concepts and ending with internal detail. ")
	fmt.Fprintf(&b, "Include every index from 0 to %d exactly once.\n\n", inp.absCount-1)
	b.WriteString("STRICT OUTPUT FORMAT: respond with JSON only, no prose, matching exactly:\n")
	b.WriteString("{\"order\": [2, 0, 1]}\n")

	resp, err := s.LLM.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return orderOut{raw: resp, absCount: inp.absCount}, nil
}

func (s *OrderChapters) Finalize(out any, rc *flow.Context) error {
	o := out.(orderOut)
	var parsed orderParsed
	if err := jsonutil.UnmarshalFlex([]byte(o.raw), &parsed); err != nil {
		return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("unparseable response: %v", err)}
	}
	if len(parsed.Order) != o.absCount {
		return &flow.ValidationError{
			Stage:  s.Name(),
			Reason: fmt.Sprintf("order has %d entries, want %d", len(parsed.Order), o.absCount),
		}
	}
	seen := make(map[int]bool, o.absCount)
	for _, ai := range parsed.Order {
		if ai < 0 || ai >= o.absCount {
			return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("index %d out of range", ai)}
		}
		if seen[ai] {
			return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("index %d appears twice", ai)}
		}
		seen[ai] = true
	}
	rc.ChapterOrder = parsed.Order
	return nil
}
