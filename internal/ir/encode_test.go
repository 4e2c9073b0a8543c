package ir

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"ember/internal/types"
)

type sym string

func (s sym) QualifiedName() string { return string(s) }
func (s sym) Arity() int            { return 0 }

func sampleProgram() *Program {
	intT := types.Basic(sym("std::prelude::Int"))
	sig := &Signature{
		Name:   "app::answer",
		Return: intT,
	}
	body := &Body{
		Stmts: []Stmt{
			&Let{Name: "x", Type: intT, Value: &Literal{ExprBase: ExprBase{T: intT}, Kind: LitInt, Text: "42"}},
			&Return{Value: &Var{ExprBase: ExprBase{T: intT}, Name: "x"}},
		},
		Returns: true,
	}
	return &Program{
		Structures: []*Structure{{Name: "app::Point", Fields: []Field{{Name: "x", Type: intT}}}},
		Functions:  []*Function{{Signature: sig, Body: body}},
	}
}

func TestEncodeProgramRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeProgram(&buf, sampleProgram()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := DecodePayload(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Functions) != 1 || p.Functions[0].Return != "std::prelude::Int" || !p.Functions[0].Returns {
		t.Fatalf("unexpected function payload %+v", p.Functions)
	}
	body := p.Functions[0].Body
	if len(body) != 2 || body[0].Op != "let" || body[1].Kids[0].Text != "x" {
		t.Fatalf("unexpected body %+v", body)
	}
	if p.Structures[0].Fields[0].Type != "std::prelude::Int" {
		t.Fatalf("unexpected struct payload %+v", p.Structures)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "prog.emir")
	if err := WriteFile(path, sampleProgram()); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := DecodePayload(f); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
