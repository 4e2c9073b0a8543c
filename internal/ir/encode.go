package ir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"ember/internal/types"
)

// Current schema version; bump when the payload layout changes.
const SchemaVersion uint16 = 1

// Payload is the msgpack form of a Program. Types are flattened to their
// canonical strings and statements to a tagged tree.
type Payload struct {
	Schema          uint16
	Structures      []StructPayload
	Functions       []FuncPayload
	Implementations []ImplPayload
}

type FieldPayload struct {
	Name string
	Type string
	Mods uint8
}

type StructPayload struct {
	Name     string
	Generics []string
	Fields   []FieldPayload
	Trait    bool
}

type FuncPayload struct {
	Name     string
	Generics []string
	Params   []FieldPayload
	Return   string
	Mods     uint8
	Operator string `msgpack:",omitempty"`
	Body     []NodePayload
	Returns  bool
}

type ImplPayload struct {
	Name    string
	Trait   string
	Target  string
	Methods []string
}

// NodePayload: универсальный узел дерева тела функции.
type NodePayload struct {
	Op   string
	Type string        `msgpack:",omitempty"`
	Text string        `msgpack:",omitempty"`
	Kids []NodePayload `msgpack:",omitempty"`
}

// EncodeProgram writes p to w.
func EncodeProgram(w io.Writer, p *Program) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(ToPayload(p)); err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	return nil
}

// DecodePayload reads a payload written by EncodeProgram.
func DecodePayload(r io.Reader) (*Payload, error) {
	var out Payload
	if err := msgpack.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if out.Schema != SchemaVersion {
		return nil, fmt.Errorf("decode program: schema %d, want %d", out.Schema, SchemaVersion)
	}
	return &out, nil
}

// WriteFile encodes p next to path and renames it into place.
func WriteFile(path string, p *Program) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := EncodeProgram(f, p); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, path)
}

func ToPayload(p *Program) *Payload {
	out := &Payload{Schema: SchemaVersion}
	if p == nil {
		return out
	}
	for _, s := range p.Structures {
		out.Structures = append(out.Structures, StructPayload{
			Name:     s.Name,
			Generics: s.GenericNames(),
			Fields:   fieldsPayload(s.Fields),
			Trait:    s.IsTrait(),
		})
	}
	for _, fn := range p.Functions {
		fp := FuncPayload{
			Name:     fn.Name,
			Params:   fieldsPayload(fn.Params),
			Return:   typeString(fn.Return),
			Mods:     uint8(fn.Mods),
			Operator: fn.Operator,
		}
		for _, g := range fn.Generics {
			fp.Generics = append(fp.Generics, g.Name)
		}
		if fn.Body != nil {
			fp.Body = stmtsPayload(fn.Body.Stmts)
			fp.Returns = fn.Body.Returns
		}
		out.Functions = append(out.Functions, fp)
	}
	for _, im := range p.Implementations {
		out.Implementations = append(out.Implementations, ImplPayload{
			Name:    im.Name,
			Trait:   typeString(im.Trait),
			Target:  typeString(im.Target),
			Methods: im.Methods,
		})
	}
	return out
}

func typeString(t *types.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func fieldsPayload(fs []Field) []FieldPayload {
	out := make([]FieldPayload, len(fs))
	for i, f := range fs {
		out[i] = FieldPayload{Name: f.Name, Type: typeString(f.Type), Mods: uint8(f.Mods)}
	}
	return out
}

func stmtsPayload(stmts []Stmt) []NodePayload {
	out := make([]NodePayload, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, stmtPayload(s))
	}
	return out
}

func bodyNode(op string, b *Body) NodePayload {
	n := NodePayload{Op: op}
	if b != nil {
		n.Kids = stmtsPayload(b.Stmts)
	}
	return n
}

func stmtPayload(s Stmt) NodePayload {
	switch s := s.(type) {
	case *Let:
		return NodePayload{Op: "let", Text: s.Name, Type: typeString(s.Type), Kids: []NodePayload{exprPayload(s.Value)}}
	case *Return:
		n := NodePayload{Op: "return"}
		if s.Value != nil {
			n.Kids = []NodePayload{exprPayload(s.Value)}
		}
		return n
	case *If:
		n := NodePayload{Op: "if", Kids: []NodePayload{exprPayload(s.Cond), bodyNode("then", s.Then)}}
		if s.Else != nil {
			n.Kids = append(n.Kids, bodyNode("else", s.Else))
		}
		return n
	case *While:
		return NodePayload{Op: "while", Kids: []NodePayload{exprPayload(s.Cond), bodyNode("body", s.Body)}}
	case *Block:
		return bodyNode("block", s.Body)
	case *ExprStmt:
		return NodePayload{Op: "expr", Kids: []NodePayload{exprPayload(s.X)}}
	}
	return NodePayload{Op: "?"}
}

func exprsPayload(es []Expr) []NodePayload {
	out := make([]NodePayload, len(es))
	for i, e := range es {
		out[i] = exprPayload(e)
	}
	return out
}

func exprPayload(e Expr) NodePayload {
	if e == nil {
		return NodePayload{Op: "nil"}
	}
	n := NodePayload{Type: typeString(e.Type())}
	switch e := e.(type) {
	case *Literal:
		n.Op, n.Text = "lit", e.Text
	case *Var:
		n.Op, n.Text = "var", e.Name
	case *Call:
		n.Op, n.Text, n.Kids = "call", e.Func, exprsPayload(e.Args)
	case *FieldGet:
		n.Op, n.Text, n.Kids = "field", e.Name, []NodePayload{exprPayload(e.X)}
	case *New:
		n.Op = "new"
		for _, in := range e.Inits {
			kid := exprPayload(in.Value)
			kid.Text = in.Name + "=" + kid.Text
			n.Kids = append(n.Kids, kid)
		}
	case *Borrow:
		n.Op, n.Kids = "borrow", []NodePayload{exprPayload(e.X)}
	case *Copy:
		n.Op, n.Kids = "copy", []NodePayload{exprPayload(e.X)}
	case *Array:
		n.Op, n.Kids = "array", exprsPayload(e.Elems)
	case *Assign:
		n.Op, n.Kids = "assign", []NodePayload{exprPayload(e.Target), exprPayload(e.Value)}
	default:
		n.Op = "?"
	}
	return n
}
