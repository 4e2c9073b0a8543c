package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ember/internal/buildpipeline"
	"ember/internal/diag"
	"ember/internal/diagfmt"
	"ember/internal/observ"
	"ember/internal/source"
	"ember/internal/trace"
	"ember/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path]",
	Short: "Resolve and type-check Ember sources",
	Long: `Check declares every symbol of the given file or directory, resolves
names across modules and finalizes functions, structures and implementations.
Without a path the current project is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addCompileFlags(checkCmd)
	checkCmd.Flags().Bool("watch", false, "re-check whenever a source file changes")
}

// addCompileFlags registers the flags shared by commands that compile.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().Int("jobs", 0, "files parsed in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("verbose", false, "also show informational diagnostics about dependents")
	cmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|basename)")
}

type compileOptions struct {
	format   string
	ui       uiMode
	verbose  bool
	pathMode diagfmt.PathMode
	quiet    bool
	timings  bool
	emitPath string
	title    string
}

func readCompileOptions(cmd *cobra.Command) (compileOptions, error) {
	var opts compileOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return opts, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	modeValue, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	switch strings.ToLower(modeValue) {
	case "auto":
		opts.pathMode = diagfmt.PathModeAuto
	case "absolute":
		opts.pathMode = diagfmt.PathModeAbsolute
	case "basename":
		opts.pathMode = diagfmt.PathModeBasename
	default:
		return opts, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|basename)", modeValue)
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	opts.title = "ember " + cmd.Name()
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCompileOptions(cmd)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}
	settings, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	tr, err := setupTracing(cmd, settings.traceLevel)
	if err != nil {
		return err
	}
	defer tr.close()

	if watch {
		return runWatch(cmd, args, opts, tr)
	}
	res, err := compileOnce(cmd.Context(), settings, tr, opts)
	if err != nil {
		return err
	}
	return reportResult(cmd, settings, res, opts)
}

// compileOnce runs the pipeline, with the progress view on stderr when
// enabled.
func compileOnce(ctx context.Context, s *buildSettings, tr *tracing, opts compileOptions) (*buildpipeline.CompileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = trace.WithTracer(ctx, tr.tracer)
	timer := observ.NewTimer()
	req := &buildpipeline.CompileRequest{
		BaseDir:               s.root,
		Files:                 s.files,
		Jobs:                  s.jobs,
		MaxDiagnostics:        s.maxDiagnostics,
		Heartbeat:             tr.heartbeat,
		Timer:                 timer,
		EmitPath:              opts.emitPath,
		AllowDiagnosticsError: true,
	}

	var (
		res buildpipeline.CompileResult
		err error
	)
	if !opts.quiet && opts.format == "pretty" && shouldUseTUI(opts.ui) {
		events := make(chan buildpipeline.Event, 256)
		req.Progress = buildpipeline.ChannelSink{Ch: events}
		go func() {
			defer close(events)
			res, err = buildpipeline.Compile(ctx, req)
		}()
		if uiErr := ui.Run(os.Stderr, opts.title, buildpipeline.DisplayFiles(s.files, s.root), events); uiErr != nil {
			fmt.Fprintf(os.Stderr, "progress view failed: %v\n", uiErr)
		}
		// дочитываем канал, чтобы компиляция не встала
		for range events {
		}
	} else {
		res, err = buildpipeline.Compile(ctx, req)
	}
	if err != nil {
		tr.dump()
		return nil, err
	}
	if opts.timings {
		printTimings(os.Stderr, timer, res.Timings)
	}
	return &res, nil
}

// reportResult prints diagnostics and a one-line summary. It returns
// errReported when the bag holds errors.
func reportResult(cmd *cobra.Command, s *buildSettings, res *buildpipeline.CompileResult, opts compileOptions) error {
	drv := res.Driver
	out := cmd.OutOrStdout()
	if err := printDiagnostics(cmd, out, drv.Bag, drv.Files, opts); err != nil {
		return err
	}
	if drv.Bag.HasErrors() {
		if !opts.quiet && opts.format == "pretty" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d errors in %d files\n", drv.Bag.Count(diag.SevError), len(s.files))
		}
		return errReported
	}
	if !opts.quiet && opts.format == "pretty" {
		p := drv.Program
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d files: %d functions, %d structures, %d implementations\n",
			len(s.files), len(p.Functions), len(p.Structures), len(p.Implementations))
	}
	return nil
}

func printDiagnostics(cmd *cobra.Command, out io.Writer, bag *diag.Bag, fs *source.FileSet, opts compileOptions) error {
	if opts.format == "json" {
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			IncludeNotes:     true,
			IncludeFixes:     true,
		})
	}
	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	minSev := diag.SevWarning
	if opts.verbose {
		minSev = diag.SevInfo
	}
	diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
		Color:       colored,
		PathMode:    opts.pathMode,
		MinSeverity: minSev,
		ShowNotes:   true,
		ShowFixes:   opts.verbose,
	})
	return nil
}
