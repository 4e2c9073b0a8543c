package sema

import "ember/internal/types"

// Scope maps variable names to types. Inner frames shadow outer ones.
type Scope struct {
	frames []map[string]*types.Type
}

func NewScope() *Scope {
	return &Scope{frames: []map[string]*types.Type{{}}}
}

func (s *Scope) Push() { s.frames = append(s.frames, map[string]*types.Type{}) }

func (s *Scope) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Define binds name in the innermost frame.
func (s *Scope) Define(name string, t *types.Type) {
	s.frames[len(s.frames)-1][name] = t
}

func (s *Scope) Lookup(name string) (*types.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}
