package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"default_branch": "main"}`)
	})
	mux.HandleFunc("/repos/acme/widget/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"tree": [
			{"path": "main.go", "type": "blob", "size": 12},
			{"path": "internal", "type": "tree", "size": 0},
			{"path": "big.go", "type": "blob", "size": 9999}
		]}`)
	})
	mux.HandleFunc("/repos/acme/widget/contents/main.go", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/vnd.github.v3.raw", r.Header.Get("Accept"))
		require.Equal(t, "token sekrit", r.Header.Get("Authorization"))
		require.Equal(t, "main", r.URL.Query().Get("ref"))
		fmt.Fprint(w, "package main")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubFetch(t *testing.T) {
	srv := fakeGitHub(t)
	g := &GitHubFetcher{
		BaseURL: srv.URL,
		Token:   "sekrit",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}

	files, err := g.Fetch(context.Background(), Spec{
		RepoURL:     "https://github.com/acme/widget",
		MaxFileSize: 1000,
	})
	require.NoError(t, err)
	require.Len(t, files, 1, "trees and oversized blobs are skipped")
	require.Equal(t, "main.go", files[0].Path)
	require.Equal(t, "package main", files[0].Content)
}

func TestGitHubFetchExplicitRef(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget/git/trees/v2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tree": [{"path": "a.go", "type": "blob", "size": 5}]}`)
	})
	mux.HandleFunc("/repos/acme/widget/contents/a.go", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "v2", r.URL.Query().Get("ref"))
		fmt.Fprint(w, "package a")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := &GitHubFetcher{BaseURL: srv.URL, HTTP: srv.Client()}
	files, err := g.Fetch(context.Background(), Spec{
		RepoURL:     "https://github.com/acme/widget/tree/v2",
		MaxFileSize: 1000,
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "package a", files[0].Content)
}

func TestGitHubFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	g := &GitHubFetcher{BaseURL: srv.URL, HTTP: srv.Client()}
	_, err := g.Fetch(context.Background(), Spec{RepoURL: "https://github.com/acme/widget"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}
