package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"
	"unicode/utf8"

	t "codetutor/internal/types"
)

// GitHubFetcher downloads a repository's file tree over the REST API,
// without requiring git on the host.
type GitHubFetcher struct {
	BaseURL string // override for tests; default https://api.github.com
	Token   string
	HTTP    *http.Client
}

func NewGitHubFetcher(token string) *GitHubFetcher {
	return &GitHubFetcher{
		BaseURL: "https://api.github.com",
		Token:   token,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

var repoURLRe = regexp.MustCompile(`github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/tree/([^/]+))?/?$`)

// parseRepoURL splits a GitHub URL into owner, repo and optional ref.
func parseRepoURL(repoURL string) (owner, repo, ref string, err error) {
	m := repoURLRe.FindStringSubmatch(repoURL)
	if m == nil {
		return "", "", "", fmt.Errorf("source: unrecognized GitHub URL %q", repoURL)
	}
	return m[1], m[2], m[3], nil
}

// Fetch lists the tree at the requested ref (or the default branch) and
// downloads every file that passes the spec's filters.
func (g *GitHubFetcher) Fetch(ctx context.Context, spec Spec) ([]t.File, error) {
	owner, repo, ref, err := parseRepoURL(spec.RepoURL)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref, err = g.defaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
	}
	entries, err := g.tree(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}

	var files []t.File
	for _, e := range entries {
		if e.Type != "blob" || !keep(e.Path, e.Size, spec) {
			continue
		}
		content, err := g.blob(ctx, owner, repo, e.Path, ref)
		if err != nil {
			return nil, err
		}
		if !utf8.ValidString(content) {
			continue
		}
		files = append(files, t.File{Path: e.Path, Content: content})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("source: no files matched in %s/%s@%s", owner, repo, ref)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (g *GitHubFetcher) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	body, err := g.get(ctx, fmt.Sprintf("%s/repos/%s/%s", g.BaseURL, owner, repo), "")
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("source: repo metadata: %w", err)
	}
	if meta.DefaultBranch == "" {
		return "", fmt.Errorf("source: %s/%s has no default branch", owner, repo)
	}
	return meta.DefaultBranch, nil
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

func (g *GitHubFetcher) tree(ctx context.Context, owner, repo, ref string) ([]treeEntry, error) {
	var tree struct {
		Entries   []treeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", g.BaseURL, owner, repo, url.PathEscape(ref))
	body, err := g.get(ctx, u, "")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("source: tree listing: %w", err)
	}
	return tree.Entries, nil
}

func (g *GitHubFetcher) blob(ctx context.Context, owner, repo, path, ref string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", g.BaseURL, owner, repo, path, url.QueryEscape(ref))
	body, err := g.get(ctx, u, "application/vnd.github.v3.raw")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (g *GitHubFetcher) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "token "+g.Token)
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: GET %s: %s", u, resp.Status)
	}
	return body, nil
}
