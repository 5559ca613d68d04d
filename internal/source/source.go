package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"

	t "codetutor/internal/types"
)

// Spec names what to fetch and which files to keep. Exactly one of RepoURL
// and LocalDir must be set.
type Spec struct {
	RepoURL  string
	LocalDir string
	Token    string // GitHub token, optional

	Include     []string // glob patterns; empty keeps everything
	Exclude     []string // glob patterns; exclusion wins over inclusion
	MaxFileSize int64    // bytes; files above this are skipped
}

// Fetch loads the file set described by spec, sorted by path.
func Fetch(ctx context.Context, spec Spec) ([]t.File, error) {
	switch {
	case spec.RepoURL != "" && spec.LocalDir != "":
		return nil, fmt.Errorf("source: repo URL and local dir are mutually exclusive")
	case spec.RepoURL != "":
		return NewGitHubFetcher(spec.Token).Fetch(ctx, spec)
	case spec.LocalDir != "":
		return FetchLocal(spec)
	default:
		return nil, fmt.Errorf("source: either a repo URL or a local dir is required")
	}
}

// ProjectName derives a default project name from the spec.
func ProjectName(spec Spec) string {
	if spec.RepoURL != "" {
		s := strings.TrimSuffix(strings.TrimRight(spec.RepoURL, "/"), ".git")
		if i := strings.LastIndex(s, "/"); i >= 0 {
			s = s[i+1:]
		}
		return s
	}
	base := path.Base(strings.ReplaceAll(strings.TrimRight(spec.LocalDir, "/\\"), "\\", "/"))
	if base == "." || base == "" {
		return "project"
	}
	return base
}

// keep decides whether a file at rel (forward slashes) with the given size
// passes the spec's filters. Exclusion beats inclusion.
func keep(rel string, size int64, spec Spec) bool {
	if spec.MaxFileSize > 0 && size > spec.MaxFileSize {
		return false
	}
	if matchAny(spec.Exclude, rel) {
		return false
	}
	if len(spec.Include) == 0 {
		return true
	}
	return matchAny(spec.Include, rel)
}

// matchAny matches rel against each glob. Patterns without a slash also
// match on the basename, so "*.md" catches docs at any depth.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, err := doublestar.Match(p, path.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
