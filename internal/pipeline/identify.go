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

// IdentifyAbstractions is the first pipeline stage. It reads the whole file
// set and names the core concepts a newcomer must understand, each backed by
// the file indices that best exemplify it.
type IdentifyAbstractions struct {
	LLM             llm.Client
	MaxAbstractions int // < 1 uses the default of 10
}

type identifyInput struct {
	project     string
	fileContext string
	fileCount   int
	max         int
}

type identifyOut struct {
	raw       string
	fileCount int
}

type identifyParsed struct {
	Abstractions []t.Abstraction `json:"abstractions"`
}

func (s *IdentifyAbstractions) Name() string { return "identify-abstractions" }

func (s *IdentifyAbstractions) Prepare(rc *flow.Context) (any, error) {
	if len(rc.Files) == 0 {
		return nil, fmt.Errorf("no files to analyze")
	}
	max := s.MaxAbstractions
	if max < 1 {
		max = 10
	}
	return identifyInput{
		project:     rc.ProjectName,
		fileContext: filesContext(rc.Files),
		fileCount:   len(rc.Files),
		max:         max,
	}, nil
}

func (s *IdentifyAbstractions) Execute(ctx context.Context, in any) (any, error) {
	inp := in.(identifyInput)
	var b strings.Builder
	fmt.Fprintf(&b, "You are analyzing the codebase of the project %q.\n\n", inp.project)
	fmt.Fprintf(&b, "Codebase files (indexed 0..%d):\n\n%s\n", inp.fileCount-1, inp.fileContext)
	fmt.Fprintf(&b, "Identify at most %d core abstractions a newcomer needs to understand this codebase. ", inp.max)
	b.WriteString("For each, give a concise name, a beginner-friendly description of around 100 words, and the indices of the files most relevant to it.\n\n")
	b.WriteString("STRICT OUTPUT FORMAT: respond with JSON only, no prose, matching exactly:\n")
	b.WriteString("{\"abstractions\": [{\"name\": \"...\", \"description\": \"...\", \"file_indices\": [0, 3]}]}\n")

	resp, err := s.LLM.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return identifyOut{raw: resp, fileCount: inp.fileCount}, nil
}

func (s *IdentifyAbstractions) Finalize(out any, rc *flow.Context) error {
	o := out.(identifyOut)
	var parsed identifyParsed
	if err := jsonutil.UnmarshalFlex([]byte(o.raw), &parsed); err != nil {
		return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("unparseable response: %v", err)}
	}
	if len(parsed.Abstractions) == 0 {
		return &flow.ValidationError{Stage: s.Name(), Reason: "no abstractions returned"}
	}
	for i, a := range parsed.Abstractions {
		if strings.TrimSpace(a.Name) == "" {
			return &flow.ValidationError{Stage: s.Name(), Reason: fmt.Sprintf("abstraction %d has an empty name", i)}
		}
		for _, fi := range a.FileIndices {
			if fi < 0 || fi >= o.fileCount {
				return &flow.ValidationError{
					Stage:  s.Name(),
					Reason: fmt.Sprintf("abstraction %q references file index %d, have %d files", a.Name, fi, o.fileCount),
				}
			}
		}
	}
	rc.Abstractions = parsed.Abstractions
	return nil
}
