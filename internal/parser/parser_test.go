package parser

import (
	"fmt"
	"strings"
	"testing"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/lexer"
	"ember/internal/source"
	"ember/internal/testkit"
)

type recordingSink struct {
	events    []string
	functions map[string]*ast.Function
	structs   map[string]*ast.Structure
	impls     []*ast.Implementor
	malformed map[string]*diag.Error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		functions: map[string]*ast.Function{},
		structs:   map[string]*ast.Structure{},
		malformed: map[string]*diag.Error{},
	}
}

func (s *recordingSink) Function(fn *ast.Function) {
	s.events = append(s.events, "fn "+fn.QName)
	s.functions[fn.QName] = fn
}

func (s *recordingSink) Structure(st *ast.Structure) {
	s.events = append(s.events, "struct "+st.QName)
	s.structs[st.QName] = st
}

func (s *recordingSink) Implementor(im *ast.Implementor) {
	s.events = append(s.events, "impl "+im.Target.String())
	s.impls = append(s.impls, im)
}

func (s *recordingSink) Malformed(qname string, err *diag.Error) {
	s.events = append(s.events, "malformed "+qname)
	s.malformed[qname] = err
}

func diagnosticsSummary(bag *diag.Bag) string {
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parse(t *testing.T, module, src string) (*recordingSink, Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(module+".em", module, []byte(src))
	file := fs.Get(id)
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	sink := newRecordingSink()
	res := ParseFile(file, lexer.New(file, lexer.Options{Reporter: rep}), Options{
		Reporter: rep,
		Prelude:  map[string]struct{}{"Int": {}, "Bool": {}},
	}, sink)
	if bag.Len() == 0 {
		if err := testkit.CheckSpanInvariants(res.File, file); err != nil {
			t.Fatalf("span invariants: %v", err)
		}
	}
	return sink, res, bag
}

func TestParseDeclarations(t *testing.T) {
	src := `
import geo::shapes;
import geo::shapes::Circle as C;

pub struct Pair<A, B: Show> { first: A; second: B; }

trait Show {
	fn show(x: Any) -> Str;
	fn twice(x: Any) -> Str { return show(x); }
}

impl<T> Show for Pair<T, T> {
	fn show(x: Any) -> Str { return "pair"; }
}

#[operator("{}+{}")]
internal fn add(a: Int, b: Int) -> Int;

fn area(c: &C) -> [Int] { return [1, 2]; }
`
	sink, res, bag := parse(t, "app", src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	want := []string{
		"struct app::Pair",
		"struct app::Show", "fn app::Show::show", "fn app::Show::twice",
		"impl Pair<T, T>",
		"fn app::add",
		"fn app::area",
	}
	if strings.Join(sink.events, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}

	pair := sink.structs["app::Pair"]
	if len(pair.Fields) != 2 || pair.Generics[1].Bound.Name != "Show" || !pair.Mods.Has(ast.ModPub) {
		t.Fatalf("bad struct %+v", pair)
	}
	show := sink.structs["app::Show"]
	if !show.IsTrait() || len(show.Members) != 2 || !show.Members[0].Mods.Has(ast.ModTrait) {
		t.Fatalf("bad trait %+v", show)
	}
	im := sink.impls[0]
	if im.Base.Name != "Show" || len(im.Generics) != 1 || im.Members[0].QName != "app::Pair::show" {
		t.Fatalf("bad impl %+v", im)
	}
	if im.Members[0].Generics[0].Name != "T" {
		t.Fatalf("impl generics not inherited: %+v", im.Members[0].Generics)
	}
	add := sink.functions["app::add"]
	if op, ok := add.Attrs.Operator(); !ok || op != "{}+{}" || !add.Bodiless() {
		t.Fatalf("bad operator fn %+v", add)
	}
	area := sink.functions["app::area"]
	if !area.Params[0].Type.Ref || area.Return.String() != "[Int]" {
		t.Fatalf("bad area signature %+v", area)
	}
	if got := res.File.Imports.Qualify("C"); got != "geo::shapes::Circle" {
		t.Fatalf("alias import: %q", got)
	}
	if got := res.File.Imports.Qualify("shapes::Square"); got != "geo::shapes::Square" {
		t.Fatalf("module import: %q", got)
	}
	if got := res.File.Imports.Qualify("Pair"); got != "app::Pair" {
		t.Fatalf("local: %q", got)
	}
}

func TestOperationsFoldFlat(t *testing.T) {
	sink, _, bag := parse(t, "m", `fn f() { x = a + b * -c == d; y = 1, 2, 3; g(a + b, c); }`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	stmts := sink.functions["m::f"].Body.Stmts
	op := stmts[0].(*ast.ExprStmt).X.(*ast.Operation)
	if op.Op != "{}={}+{}*{}=={}" || len(op.Operands) != 5 || op.Arity() != 5 {
		t.Fatalf("op = %q with %d operands", op.Op, len(op.Operands))
	}
	if neg, ok := op.Operands[3].(*ast.Operation); !ok || neg.Op != "-{}" {
		t.Fatalf("prefix minus not parsed: %#v", op.Operands[3])
	}

	list := stmts[1].(*ast.ExprStmt).X.(*ast.Operation)
	arr, ok := list.Operands[1].(*ast.ArrayLit)
	if list.Op != "{}={}" || !ok || len(arr.Elems) != 3 {
		t.Fatalf("implicit array not collapsed: %#v", list)
	}

	call := stmts[2].(*ast.ExprStmt).X.(*ast.Call)
	if len(call.Args) != 2 {
		t.Fatalf("commas inside call arguments must not collapse: %d args", len(call.Args))
	}
}

func TestStatements(t *testing.T) {
	src := `fn f(n: Int) -> Int {
	let p: Point = new Point { x: 1, y: n };
	if n > 0 { return p.x; } else if n < 0 { return p.norm(); } else { }
	while true { n = n - 1; }
	{ return &p.y; }
}`
	sink, _, bag := parse(t, "m", src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	body := sink.functions["m::f"].Body
	if len(body.Stmts) != 4 {
		t.Fatalf("got %d statements", len(body.Stmts))
	}
	let := body.Stmts[0].(*ast.LetStmt)
	if n, ok := let.Value.(*ast.New); !ok || len(n.Inits) != 2 || let.Type.Name != "Point" {
		t.Fatalf("bad let %#v", let)
	}
	ifs := body.Stmts[1].(*ast.IfStmt)
	elif, ok := ifs.Else.(*ast.IfStmt)
	if !ok || elif.Else == nil {
		t.Fatalf("else-if chain lost: %#v", ifs.Else)
	}
	ret := elif.Then.Stmts[0].(*ast.ReturnStmt)
	if mc, ok := ret.Value.(*ast.MethodCall); !ok || mc.Name != "norm" {
		t.Fatalf("method call: %#v", ret.Value)
	}
	if _, ok := body.Stmts[2].(*ast.WhileStmt); !ok {
		t.Fatalf("expected while")
	}
	inner := body.Stmts[3].(*ast.Block).Stmts[0].(*ast.ReturnStmt)
	if b, ok := inner.Value.(*ast.Borrow); !ok {
		t.Fatalf("expected borrow, got %#v", inner.Value)
	} else if fa, ok := b.X.(*ast.FieldAccess); !ok || fa.Name != "y" {
		t.Fatalf("borrow of field: %#v", b.X)
	}
}

func TestMalformedDeclarationsArePoisoned(t *testing.T) {
	src := `
fn broken(a: ) -> Int { return 1; }
fn fine() {}
fn body_error() { let = 3; return; }
trait T { fn m(x: Int) -> ; }
struct S { a Int; }
`
	sink, _, bag := parse(t, "m", src)
	if !bag.HasErrors() {
		t.Fatalf("expected syntax errors")
	}
	for _, name := range []string{"m::broken", "m::body_error", "m::T", "m::T::m", "m::S"} {
		err, ok := sink.malformed[name]
		if !ok {
			t.Fatalf("%s not poisoned; events %v", name, sink.events)
		}
		if err.Code() != diag.SynMalformedDeclaration || err.Diag.Severity != diag.SevInfo {
			t.Fatalf("%s poisoned with %v", name, err)
		}
	}
	if _, ok := sink.functions["m::fine"]; !ok {
		t.Fatalf("valid function after a broken one was lost: %v", sink.events)
	}
}

func TestUnexpectedTopLevel(t *testing.T) {
	sink, _, bag := parse(t, "m", `let x = 1; fn ok() {}`)
	if bag.Len() == 0 || bag.Items()[0].Code != diag.SynUnexpectedTopLevel {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(bag))
	}
	if _, ok := sink.functions["m::ok"]; !ok {
		t.Fatalf("parser did not recover: %v", sink.events)
	}
}

func TestMissingSemicolonCarriesFix(t *testing.T) {
	src := "fn f() -> Int { return 1 }"
	_, _, bag := parse(t, "app", src)
	var found *diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == diag.SynExpectSemicolon {
			found = &d
			break
		}
	}
	if found == nil {
		t.Fatalf("no semicolon diagnostic: %s", diagnosticsSummary(bag))
	}
	if len(found.Fixes) != 1 || len(found.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes: %+v", found.Fixes)
	}
	edit := found.Fixes[0].Edits[0]
	at := uint32(strings.Index(src, "1 }") + 1)
	if edit.NewText != ";" || edit.Span.Start != at || edit.Span.End != at {
		t.Fatalf("edit %+v, want ';' at %d", edit, at)
	}
}
