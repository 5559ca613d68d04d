package flow

import (
	t "codetutor/internal/types"
)

// Context is the shared state threaded through every stage of one run.
// Each field is written by exactly one stage and read only by later ones;
// a zero value means "not produced yet". The context lives for exactly
// one run.
type Context struct {
	ProjectName string
	OutputDir   string

	// Files is supplied at run start by a source provider.
	Files []t.File
	// Abstractions is written by the identification stage.
	Abstractions []t.Abstraction
	// Relationships is written by the analysis stage.
	Relationships *t.RelationshipSet
	// ChapterOrder is a permutation of abstraction indices, written by the
	// ordering stage.
	ChapterOrder []int
	// Chapters is aligned 1:1 with ChapterOrder, written by the drafting
	// stage. Failed drafts carry placeholder content.
	Chapters []t.Chapter
	// FinalOutputDir is where the materialized artifacts ended up.
	FinalOutputDir string
}
