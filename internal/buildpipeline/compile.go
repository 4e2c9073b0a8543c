package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ember/internal/driver"
	"ember/internal/ir"
	"ember/internal/observ"
	"ember/internal/trace"
)

// ErrDiagnostics is returned when the compilation reported errors and the
// request does not allow them.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// CompileRequest configures one run of the pipeline.
type CompileRequest struct {
	// BaseDir is the root module names are derived from.
	BaseDir        string
	Files          []string
	Jobs           int
	MaxDiagnostics int
	Heartbeat      time.Duration
	Progress       ProgressSink
	Timer          *observ.Timer
	// EmitPath, when set, receives the msgpack program after a clean check.
	EmitPath              string
	AllowDiagnosticsError bool
}

// CompileResult captures the driver result and stage timings.
type CompileResult struct {
	Driver  *driver.Result
	Timings Timings
}

// Compile checks req.Files and optionally emits the program.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no source files")
	}

	display := DisplayFiles(req.Files, req.BaseDir)
	emitQueued(req.Progress, display)
	obs := &phaseObserver{sink: req.Progress, baseDir: req.BaseDir}

	checkStart := time.Now()
	res, err := driver.Compile(ctx, req.BaseDir, req.Files, driver.Options{
		Jobs:           req.Jobs,
		MaxDiagnostics: req.MaxDiagnostics,
		Observer:       obs.OnPhase,
		Heartbeat:      req.Heartbeat,
		Timer:          req.Timer,
	})
	result.Driver = res
	if err != nil {
		emitStage(req.Progress, display, StageCheck, StatusError, err, 0)
		return result, err
	}
	result.Timings.Set(StageCheck, time.Since(checkStart))

	if res.Bag.HasErrors() {
		emitOverall(req.Progress, StageCheck, StatusError, ErrDiagnostics, time.Since(checkStart))
		if !req.AllowDiagnosticsError {
			return result, ErrDiagnostics
		}
	} else {
		emitOverall(req.Progress, StageCheck, StatusDone, nil, time.Since(checkStart))
	}

	if req.EmitPath == "" || res.Bag.HasErrors() {
		return result, nil
	}
	emitOverall(req.Progress, StageEmit, StatusWorking, nil, 0)
	emitStart := time.Now()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "emit", trace.ParentSpan(ctx))
	err = ir.WriteFile(req.EmitPath, res.Program)
	span.End(req.EmitPath)
	elapsed := time.Since(emitStart)
	result.Timings.Set(StageEmit, elapsed)
	if err != nil {
		err = fmt.Errorf("emit %s: %w", req.EmitPath, err)
		emitOverall(req.Progress, StageEmit, StatusError, err, elapsed)
		return result, err
	}
	emitOverall(req.Progress, StageEmit, StatusDone, nil, elapsed)
	return result, nil
}

// phaseObserver turns driver phase events into per-file progress events.
type phaseObserver struct {
	sink    ProgressSink
	baseDir string
}

// OnPhase updates the progress UI based on compiler phase events.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	if p == nil || p.sink == nil {
		return
	}
	if ev.File == "" {
		if ev.Name == "parse+resolve" && ev.Status == driver.PhaseStart {
			emitOverall(p.sink, StageCheck, StatusWorking, nil, 0)
		}
		return
	}
	file := displayPath(ev.File, p.baseDir)
	stage := StageParse
	if ev.Name == "check" {
		stage = StageCheck
	}
	status := StatusDone
	switch {
	case ev.Status == driver.PhaseStart:
		status = StatusWorking
	case ev.Err != nil:
		status = StatusError
	}
	p.sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: ev.Err, Elapsed: ev.Elapsed})
	if stage == StageParse && status == StatusDone {
		// файл разобран, дальше он ждёт разрешения имён
		p.sink.OnEvent(Event{File: file, Stage: StageCheck, Status: StatusWorking})
	}
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitOverall(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
