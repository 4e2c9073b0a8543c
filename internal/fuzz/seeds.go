package fuzztests

import (
	"testing"

	"ember/internal/prelude"
)

const maxFuzzInput = 1 << 16 // 64 KiB

var languageSeeds = []string{
	"",
	"fn main() -> Int { return 0; }\n",
	"struct Point { x: Int; y: Int; }\nfn norm(p: Point) -> Int { return p.x * p.x + p.y * p.y; }\n",
	"trait Show { fn show(p: Self) -> Str; }\nstruct P { v: Int; }\nimpl Show for P { fn show(p: Self) -> Str { return \"p\"; } }\n",
	"import b::pong;\nfn ping(n: Int) -> Int { if n > 0 { return pong(n - 1); } return 0; }\n",
	"struct Node<T> { value: T; next: &Node<T>; }\n",
	"fn f() -> Int { let x = 1\nreturn x; }\n",
	"fn g() -> Missing { return nowhere(); }\n",
	"#[operator(\"{}+{}\")] internal fn add(a: Int, b: Int) -> Int;\n",
	"fn arr() -> [Int] { return [1, 2, 3]; }\n",
	"fn f() { { { { } } } }",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	f.Add(clampSeed(prelude.Source()))
}

func clampSeed(src []byte) []byte {
	if len(src) > maxFuzzInput {
		src = src[:maxFuzzInput]
	}
	return append([]byte(nil), src...)
}

func truncateForLog(data []byte, limit int) []byte {
	if len(data) <= limit {
		return data
	}
	return data[:limit]
}
