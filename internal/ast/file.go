package ast

import "ember/internal/source"

// File is everything the parser produced for one source file.
type File struct {
	ID           source.FileID
	Imports      *Imports
	Functions    []*Function
	Structures   []*Structure
	Implementors []*Implementor
}

// Decls counts the top-level declarations of the file.
func (f *File) Decls() int {
	return len(f.Functions) + len(f.Structures) + len(f.Implementors)
}
