package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tutorial is the artifact set for one finished run.
type Tutorial struct {
	Project  string
	Index    string
	Chapters []File
}

// File is one named text artifact.
type File struct {
	Name    string
	Content string
}

// Write materializes the tutorial under dir/<project>/ and returns that
// directory. Filenames are stable across runs for the same input, so a
// re-run overwrites rather than accumulates.
func Write(dir string, tut Tutorial) (string, error) {
	if tut.Project == "" {
		return "", fmt.Errorf("output: project name is required")
	}
	out := filepath.Join(dir, Slug(tut.Project))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(out, "index.md"), []byte(tut.Index), 0o644); err != nil {
		return "", err
	}
	for _, ch := range tut.Chapters {
		if err := os.WriteFile(filepath.Join(out, ch.Name), []byte(ch.Content), 0o644); err != nil {
			return "", err
		}
	}
	return out, nil
}

// ChapterFilename builds the stable filename for chapter ordinal n.
func ChapterFilename(n int, name string) string {
	return fmt.Sprintf("%02d_%s.md", n, Slug(name))
}

// Slug lowercases name and maps runs of non-alphanumerics to single
// underscores, keeping filenames portable and collision-free per ordinal.
func Slug(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
