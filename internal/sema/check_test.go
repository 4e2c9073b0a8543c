package sema

import (
	"testing"

	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/symbols"
)

const shapes = `
struct Point { x: Int; y: Int; }

trait Show {
	fn show(p: Self) -> Str;
	fn twice(p: Self) -> Str { return p.show() + p.show(); }
}

impl Show for Point {
	fn show(p: Self) -> Str { return "point"; }
}

impl Point {
	fn sum(p: Self) -> Int { return p.x + p.y; }
}

fn describe<T: Show>(v: T) -> Str { return v.show(); }
`

func TestImplementorsAndMethods(t *testing.T) {
	w := compile(t, unit{"app", shapes + `
fn main() -> Str {
	let p = new Point { x: 1, y: 2 };
	let s = p.sum();
	return describe(p) + p.twice();
}
`})
	w.expectClean()

	_, sym, _ := w.reg.Lookup(MarkerName("app::Point", "app::Show"))
	impl, ok := sym.(*symbols.Implementation)
	if !ok {
		t.Fatalf("marker is %s", symbols.KindName(sym))
	}
	if len(impl.Impl.Methods) != 2 {
		t.Fatalf("methods: %v", impl.Impl.Methods)
	}

	// default method cloned into the target, arguments by reference
	twice := w.fn("app::Point::twice")
	if got := twice.Params[0].Type.String(); got != "&app::Point" {
		t.Fatalf("twice takes %s", got)
	}
	show := w.fn("app::Point::show")
	if !show.Params[0].Type.IsReference() {
		t.Fatalf("trait implementation must take its argument by reference")
	}
	// inherent methods keep their convention
	if w.fn("app::Point::sum").Params[0].Type.IsReference() {
		t.Fatalf("inherent method must take its argument by value")
	}

	main := w.fn("app::main")
	let := main.Body.Stmts[1].(*ir.Let)
	if let.Type.String() != "std::prelude::Int" {
		t.Fatalf("p.sum() has type %s", let.Type)
	}
	ret := main.Body.Stmts[2].(*ir.Return).Value.(*ir.Call)
	if ret.Op != "{}+{}" || ret.Func != "std::prelude::str_concat" {
		t.Fatalf("got %s via %q", ret.Func, ret.Op)
	}
	if recv, ok := ret.Args[1].(*ir.Call); !ok || recv.Func != "app::Point::twice" {
		t.Fatalf("second operand is %#v", ret.Args[1])
	} else if _, ok := recv.Args[0].(*ir.Borrow); !ok {
		t.Fatalf("receiver must be borrowed implicitly, got %T", recv.Args[0])
	}
}

func TestBoundNotSatisfied(t *testing.T) {
	w := compile(t, unit{"app", shapes + `
fn wrong() -> Str { return describe(1); }
`})
	if err := w.poison("app::wrong"); err.Code() != diag.SemaBoundNotSatisfied {
		t.Fatalf("got %v, want BoundNotSatisfied", err)
	}
	w.fn("app::describe")
	if got := len(w.roots()); got != 1 {
		t.Fatalf("got %d root errors: %v", got, w.roots())
	}
}

func TestMissingTraitMethod(t *testing.T) {
	w := compile(t, unit{"app", `
struct Point { x: Int; }
trait Show {
	fn show(p: Self) -> Str;
	fn twice(p: Self) -> Str { return "twice"; }
}
impl Show for Point {}
`})
	err := w.poison(MarkerName("app::Point", "app::Show"))
	if err.Code() != diag.SemaMissingTraitMethod {
		t.Fatalf("got %v, want MissingTraitMethod", err)
	}
	// defaults are still provided
	w.fn("app::Point::twice")
}

func TestImplementorOfUnknownTrait(t *testing.T) {
	w := compile(t, unit{"app", `
struct Point { x: Int; }
impl Nope for Point { fn show(p: Self) -> Str { return "p"; } }
`})
	if err := w.poison("app::Nope"); err.Code() != diag.SemaUnresolvedSymbol {
		t.Fatalf("Nope: %v", err)
	}
	if err := w.poison("app::Point::show"); err.Code() != diag.SemaPoisonedDependency {
		t.Fatalf("member: %v", err)
	}
}

func TestOperatorsFoldLeftToRight(t *testing.T) {
	w := compile(t, unit{"app", `fn calc() -> Int { return 1 + 2 * 3; }`})
	w.expectClean()
	ret := w.fn("app::calc").Body.Stmts[0].(*ir.Return)
	mul := ret.Value.(*ir.Call)
	if mul.Func != "std::prelude::int_mul" {
		t.Fatalf("outer call is %s", mul.Func)
	}
	if add, ok := mul.Args[0].(*ir.Call); !ok || add.Func != "std::prelude::int_add" {
		t.Fatalf("left operand is %#v", mul.Args[0])
	}
}

func TestOverloadTieBreaking(t *testing.T) {
	w := compile(t,
		unit{"a", `
#[operator("{}<>{}")] fn first(x: Int, y: Int) -> Int { return x; }
#[operator("{}<>{}")] fn second(x: Int, y: Int) -> Int { return y; }
#[operator("{}<>{}")] fn loose<T>(x: T, y: T) -> T { return x; }
fn use_it() -> Int { return 1 <> 2; }
fn use_str() -> Str { return "a" <> "b"; }
`},
	)
	w.expectClean()
	call := w.fn("a::use_it").Body.Stmts[0].(*ir.Return).Value.(*ir.Call)
	if call.Func != "a::first" {
		t.Fatalf("same-file tie went to %s", call.Func)
	}
	if got := w.fn("a::use_str").Body.Stmts[0].(*ir.Return).Value.(*ir.Call); got.Func != "a::loose" {
		t.Fatalf("generic candidate not used: %s", got.Func)
	}
}

func TestOverloadAmbiguousAcrossFiles(t *testing.T) {
	w := compile(t,
		unit{"a", `#[operator("{}<>{}")] fn combine(x: Int, y: Int) -> Int { return x; }`},
		unit{"b", `#[operator("{}<>{}")] fn combine(x: Int, y: Int) -> Int { return y; }`},
		unit{"c", `fn use_it() -> Int { return 1 <> 2; }`},
	)
	err := w.poison("c::use_it")
	if err.Code() != diag.SemaAmbiguousOverload {
		t.Fatalf("got %v, want AmbiguousOverload", err)
	}
	if len(err.Diag.Notes) != 2 {
		t.Fatalf("candidates: %v", err.Diag.Notes)
	}
}

func TestNoOverload(t *testing.T) {
	w := compile(t, unit{"app", `fn f() -> Int { return 1 + "s"; }`})
	if err := w.poison("app::f"); err.Code() != diag.SemaNoOverload {
		t.Fatalf("got %v", err)
	}
}

func TestAssignment(t *testing.T) {
	w := compile(t, unit{"app", `
struct Cell { v: Int; }
fn update(c: &Cell) {
	let x = 1;
	x = x + 1;
	c.v = x;
	let xs: [Int] = [1];
	xs = 2, 3;
}
fn bad() { let x = 1; x = "s"; }
`})
	body := w.fn("app::update").Body
	as, ok := body.Stmts[1].(*ir.ExprStmt).X.(*ir.Assign)
	if !ok {
		t.Fatalf("x = x + 1 lowered to %#v", body.Stmts[1])
	}
	if call, ok := as.Value.(*ir.Call); !ok || call.Func != "std::prelude::int_add" {
		t.Fatalf("value is %#v", as.Value)
	}
	arr := body.Stmts[4].(*ir.ExprStmt).X.(*ir.Assign)
	if a, ok := arr.Value.(*ir.Array); !ok || len(a.Elems) != 2 {
		t.Fatalf("implicit array lowered to %#v", arr.Value)
	}
	if err := w.poison("app::bad"); err.Code() != diag.SemaTypeMismatch {
		t.Fatalf("got %v", err)
	}
}

func TestNewExpression(t *testing.T) {
	w := compile(t, unit{"app", `
struct Point { x: Int; y: Int; }
fn missing() -> Point { return new Point { x: 1 }; }
fn unknown() -> Point { return new Point { x: 1, y: 2, z: 3 }; }
fn twice() -> Point { return new Point { x: 1, x: 2, y: 3 }; }
fn wrong() -> Point { return new Point { x: 1, y: "2" }; }
`})
	cases := map[string]diag.Code{
		"app::missing": diag.SemaTypeMismatch,
		"app::unknown": diag.SemaUnknownField,
		"app::twice":   diag.SemaDuplicateSymbol,
		"app::wrong":   diag.SemaTypeMismatch,
	}
	for name, code := range cases {
		if err := w.poison(name); err.Code() != code {
			t.Fatalf("%s: got %v, want %s", name, err, code.ID())
		}
	}
}

func TestUnknownVariableAndField(t *testing.T) {
	w := compile(t, unit{"app", `
struct Point { x: Int; }
fn a() -> Int { return y; }
fn b(p: Point) -> Int { return p.z; }
fn c() -> Int { return Point(); }
`})
	if err := w.poison("app::a"); err.Code() != diag.SemaUnknownVariable {
		t.Fatalf("a: %v", err)
	}
	if err := w.poison("app::b"); err.Code() != diag.SemaUnknownField {
		t.Fatalf("b: %v", err)
	}
	if err := w.poison("app::c"); err.Code() != diag.SemaNotCallable {
		t.Fatalf("c: %v", err)
	}
}
