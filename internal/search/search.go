package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	t "codetutor/internal/types"
)

// Client queries the GitHub search API for repositories worth documenting.
type Client struct {
	BaseURL string // override for tests; default https://api.github.com
	Token   string
	HTTP    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		BaseURL: "https://api.github.com",
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Filters narrows a repository search.
type Filters struct {
	MinStars     int
	MinForks     int
	Language     string
	SortBy       string // stars, forks or updated; default stars
	UpdatedSince string // YYYY-MM-DD
}

// Repos searches repositories matching the keywords and filters, ranked by
// the requested sort, at most ten results.
func (c *Client) Repos(ctx context.Context, keywords []string, f Filters) ([]t.RepoMetadata, error) {
	parts := []string{strings.Join(keywords, " ")}
	if f.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", f.MinStars))
	}
	if f.MinForks > 0 {
		parts = append(parts, fmt.Sprintf("forks:>=%d", f.MinForks))
	}
	if f.Language != "" {
		parts = append(parts, "language:"+f.Language)
	}
	if f.UpdatedSince != "" {
		parts = append(parts, "pushed:>"+f.UpdatedSince)
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "stars"
	}

	q := url.Values{}
	q.Set("q", strings.Join(parts, " "))
	q.Set("sort", sortBy)
	q.Set("order", "desc")
	q.Set("per_page", "10")

	body, err := c.get(ctx, c.BaseURL+"/search/repositories?"+q.Encode(), "")
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Items []t.RepoMetadata `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return parsed.Items, nil
}

// Readme fetches a repository's README as raw markdown.
func (c *Client) Readme(ctx context.Context, fullName string) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/readme", c.BaseURL, fullName), "application/vnd.github.v3.raw")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: GET %s: %s", u, resp.Status)
	}
	return body, nil
}
