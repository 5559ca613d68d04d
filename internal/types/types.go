package types

// File is one source file handed to the pipeline. Path is relative to the
// repository root and uses forward slashes.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Abstraction is a named concept identified in the codebase, with the
// indices of the files that best exemplify it.
type Abstraction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FileIndices []int  `json:"file_indices"`
}

// Relationship is a directed labeled edge between two abstraction indices.
type Relationship struct {
	From  int    `json:"from_abstraction"`
	To    int    `json:"to_abstraction"`
	Label string `json:"label"`
}

// RelationshipSet is a project summary plus the edges between abstractions.
type RelationshipSet struct {
	Summary string         `json:"summary"`
	Edges   []Relationship `json:"relationships"`
}

// Chapter is one rendered tutorial chapter, aligned with the chapter order.
type Chapter struct {
	Number      int    // 1-based position in the tutorial
	Abstraction int    // index into the abstraction list
	Title       string
	Filename    string
	Content     string
	Failed      bool // draft exhausted its retries; Content is a placeholder
}

// RepoMetadata describes one repository returned by the search API.
type RepoMetadata struct {
	FullName    string `json:"full_name"`
	URL         string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Language    string `json:"language"`
	UpdatedAt   string `json:"updated_at"`
}
