package fuzztests

import (
	"context"
	"testing"
	"time"

	"ember/internal/driver"
)

const compileTimeout = 10 * time.Second

// FuzzCompileSettles compiles two modules that may import each other. Every
// compilation must finish, and no request may be left waiting on the
// registry.
func FuzzCompileSettles(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)
		ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
		defer cancel()

		units := []driver.Source{
			{Path: "a.em", Module: "a", Content: input},
			{Path: "b.em", Module: "b", Content: []byte("import a::ping;\nfn pong(n: Int) -> Int { return n; }\n")},
		}
		done := make(chan struct{})
		var (
			res *driver.Result
			err error
		)
		go func() {
			defer close(done)
			res, err = driver.CompileSources(ctx, units, driver.Options{MaxDiagnostics: 256})
		}()
		select {
		case <-done:
		case <-time.After(compileTimeout + time.Second):
			t.Fatalf("compilation did not settle\ninput: %q", truncateForLog(input, 200))
		}
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("compilation timed out\ninput: %q", truncateForLog(input, 200))
			}
			t.Fatalf("compile: %v", err)
		}
		if res.Stats.Pending != 0 {
			t.Fatalf("requests left waiting: %s\ninput: %q", res.Stats, truncateForLog(input, 200))
		}
	})
}
