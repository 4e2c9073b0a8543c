package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ember/internal/trace"
)

type tracing struct {
	tracer    trace.Tracer
	heartbeat time.Duration
	// ring-only tracers are written out by dump after a failure
	ringOutput string
	format     trace.Format
}

// setupTracing inspects trace-related flags and initializes the tracer.
// fallbackLevel comes from ember.toml and applies when --trace-level is not
// given.
func setupTracing(cmd *cobra.Command, fallbackLevel string) (*tracing, error) {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if !flags.Changed("trace-level") && fallbackLevel != "" {
		levelStr = fallbackLevel
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	heartbeat, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		return &tracing{tracer: trace.Nop}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
		Heartbeat:  heartbeat,
	}.Effective()
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	t := &tracing{tracer: tracer, heartbeat: heartbeat, format: cfg.Format}
	if cfg.Mode == trace.ModeRing {
		t.ringOutput = output
	}
	return t, nil
}

func (t *tracing) close() {
	if err := t.tracer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
	}
	if err := t.tracer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
	}
}

// dump writes the ring buffer after an internal failure. Stream tracers
// already wrote everything.
func (t *tracing) dump() {
	ring, ok := t.tracer.(*trace.RingTracer)
	if !ok {
		return
	}
	out := os.Stderr
	if t.ringOutput != "" && t.ringOutput != "-" {
		f, err := os.Create(t.ringOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "trace: %v\n", err)
			return
		}
		defer f.Close()
		out = f
	}
	if err := ring.Dump(out, t.format); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
