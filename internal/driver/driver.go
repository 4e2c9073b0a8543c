package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/lexer"
	"ember/internal/observ"
	"ember/internal/parser"
	"ember/internal/prelude"
	"ember/internal/sema"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/trace"
)

// Options control one compilation.
type Options struct {
	// Jobs bounds concurrent parsing; <=0 means GOMAXPROCS. Symbol tasks are
	// not bounded: a blocked task must never hold a slot.
	Jobs           int
	MaxDiagnostics int
	Observer       PhaseObserver
	// Heartbeat interval for registry stats in the trace; 0 disables it.
	Heartbeat time.Duration
	Timer     *observ.Timer
}

// Result is everything a compilation produced. Program lists only finalized
// symbols; Bag holds every diagnostic, dependents included.
type Result struct {
	Files    *source.FileSet
	Bag      *diag.Bag
	Program  *ir.Program
	Registry *symbols.Registry
	Stats    symbols.Stats
	Timings  observ.Report
}

// Source is an in-memory compilation unit.
type Source struct {
	Path    string
	Module  string
	Content []byte
}

type compilation struct {
	opts  Options
	fs    *source.FileSet
	files []source.FileID
	bag   *diag.Bag
	rep   diag.Reporter
	reg   *symbols.Registry
	timer *observ.Timer
}

// Compile loads paths under root and compiles them together with the
// prelude. Files that cannot be read become IOLoadFileError diagnostics.
func Compile(ctx context.Context, root string, paths []string, opts Options) (*Result, error) {
	c := newCompilation(source.NewFileSetWithBase(root), opts)
	done := c.phase("load")
	for _, path := range paths {
		id, err := c.fs.Load(path)
		if err != nil {
			diag.ReportError(c.rep, diag.IOLoadFileError, source.Span{}, fmt.Sprintf("failed to load file: %v", err)).Emit()
			c.opts.Observer.emit(PhaseEvent{Name: "parse", File: path, Status: PhaseEnd, Err: err})
			continue
		}
		c.files = append(c.files, id)
	}
	done(fmt.Sprintf("%d files", len(c.files)))
	return c.run(ctx)
}

// CompileSources compiles in-memory units, each under its own module name.
func CompileSources(ctx context.Context, units []Source, opts Options) (*Result, error) {
	c := newCompilation(source.NewFileSet(), opts)
	for _, u := range units {
		c.files = append(c.files, c.fs.AddVirtual(u.Path, u.Module, u.Content))
	}
	return c.run(ctx)
}

func newCompilation(fs *source.FileSet, opts Options) *compilation {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	return &compilation{
		opts:  opts,
		fs:    fs,
		bag:   bag,
		rep:   diag.NewLockedReporter(diag.NewDedupReporter(diag.BagReporter{Bag: bag})),
		timer: timer,
	}
}

func (c *compilation) run(ctx context.Context) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	preludeID := prelude.Add(c.fs)
	c.reg = symbols.NewRegistry(symbols.Options{Tracer: tracer})
	eng := sema.New(c.reg)

	g, gctx := errgroup.WithContext(ctx)
	decl := &sema.Declarer{Engine: eng, Spawn: c.spawner(g, gctx), Reporter: c.rep}

	hb := trace.StartHeartbeat(tracer, c.opts.Heartbeat, func() string {
		return c.reg.Stats().String()
	})
	defer hb.Stop()

	// токен разбора держит реестр от зачистки, пока файлы ещё объявляют имена
	parsing := c.reg.BeginTask()
	done := c.phase("parse+resolve")
	units := append([]source.FileID{preludeID}, c.files...)
	parseErr := c.parseAll(gctx, units, decl)
	c.reg.Seal()
	parsing()
	waitErr := g.Wait()
	done(c.reg.Stats().String())

	if err := errors.Join(parseErr, waitErr); err != nil {
		span.End("canceled")
		return nil, err
	}

	done = c.phase("sweep")
	sweeps := c.reg.Sweep()
	done(fmt.Sprintf("%d names", sweeps))

	done = c.phase("collect")
	prog := Collect(c.reg)
	c.reportPoisons()
	c.bag.Sort()
	done(fmt.Sprintf("%d functions", len(prog.Functions)))

	c.reportFiles()
	stats := c.reg.Stats()
	span.WithExtra("files", fmt.Sprint(len(c.files))).End(stats.String())
	return &Result{
		Files:    c.fs,
		Bag:      c.bag,
		Program:  prog,
		Registry: c.reg,
		Stats:    stats,
		Timings:  c.timer.Report(),
	}, nil
}

// spawner runs every symbol task on g. Task errors that are diagnostics are
// already recorded as poison; anything else cancels the compilation.
func (c *compilation) spawner(g *errgroup.Group, ctx context.Context) sema.Spawner {
	tracer := trace.FromContext(ctx)
	parent := trace.ParentSpan(ctx)
	return func(name string, run func(ctx context.Context) error) {
		done := c.reg.BeginTask()
		g.Go(func() error {
			defer done()
			span := trace.Begin(tracer, trace.ScopeNode, name, parent)
			err := run(trace.WithSpan(ctx, span))
			var de *diag.Error
			if errors.As(err, &de) {
				span.End(de.Code().ID())
				return nil
			}
			span.End("")
			return err
		})
	}
}

// parseAll parses files concurrently; each file hands its declarations to
// the registry as soon as it is parsed.
func (c *compilation) parseAll(ctx context.Context, files []source.FileID, sink parser.Sink) error {
	sem := semaphore.NewWeighted(int64(c.opts.Jobs))
	pg, pctx := errgroup.WithContext(ctx)
	names := prelude.Names()
	for _, id := range files {
		if err := sem.Acquire(pctx, 1); err != nil {
			break
		}
		pg.Go(func() error {
			defer sem.Release(1)
			file := c.fs.Get(id)
			span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, file.Path, trace.ParentSpan(ctx))
			c.opts.Observer.emit(PhaseEvent{Name: "parse", File: file.Path, Status: PhaseStart})
			started := time.Now()

			lx := lexer.New(file, lexer.Options{Reporter: c.rep})
			res := parser.ParseFile(file, lx, parser.Options{
				MaxErrors: uint(max(c.opts.MaxDiagnostics, 0)),
				Reporter:  c.rep,
				Prelude:   names,
			}, sink)

			var perr error
			if res.Errors > 0 {
				perr = fmt.Errorf("%d syntax errors", res.Errors)
			}
			c.opts.Observer.emit(PhaseEvent{Name: "parse", File: file.Path, Status: PhaseEnd, Elapsed: time.Since(started), Err: perr})
			span.End(fmt.Sprintf("errors=%d", res.Errors))
			return pctx.Err()
		})
	}
	return pg.Wait()
}

// reportPoisons moves every poison into the bag. Roots go first so a bag
// limit drops dependents rather than causes.
func (c *compilation) reportPoisons() {
	var rest []diag.Diagnostic
	for _, ent := range c.reg.Entries() {
		err, ok := ent.Poison()
		if !ok {
			continue
		}
		if err.Diag.Severity < diag.SevError {
			rest = append(rest, err.Diag)
			continue
		}
		diag.Emit(c.rep, err.Diag)
	}
	for _, d := range rest {
		diag.Emit(c.rep, d)
	}
}

// reportFiles sends the per-file verdict to the observer.
func (c *compilation) reportFiles() {
	if c.opts.Observer == nil {
		return
	}
	errs := make(map[source.FileID]int)
	for _, d := range c.bag.Items() {
		if d.Severity >= diag.SevError && d.Code != diag.IOLoadFileError {
			errs[d.Primary.File]++
		}
	}
	for _, id := range c.files {
		var err error
		if n := errs[id]; n > 0 {
			err = fmt.Errorf("%d errors", n)
		}
		c.opts.Observer.emit(PhaseEvent{Name: "check", File: c.fs.Get(id).Path, Status: PhaseEnd, Err: err})
	}
}
