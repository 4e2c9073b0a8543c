package ast

import "ember/internal/source"

// Attribute описывает атрибут вида `#[name("arg")]`.
type Attribute struct {
	Name   string
	Arg    string
	HasArg bool
	Span   source.Span
}

type Attributes []Attribute

// Find returns the first attribute with the given name.
func (as Attributes) Find(name string) (Attribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Operator returns the operator pattern of an `#[operator("...")]` function.
func (as Attributes) Operator() (string, bool) {
	a, ok := as.Find("operator")
	if !ok || !a.HasArg {
		return "", false
	}
	return a.Arg, true
}
