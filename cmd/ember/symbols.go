package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ember/internal/ast"
	"ember/internal/source"
	"ember/internal/symbols"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] [path]",
	Short: "List the registry after a check",
	Long: `Symbols checks the sources and prints every registered name with the
stage it reached. Poisoned names show the code of their failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	symbolsCmd.Flags().Bool("prelude", false, "include std::prelude symbols")
	symbolsCmd.Flags().Int("jobs", 0, "files parsed in parallel (0 = GOMAXPROCS)")
}

type symbolRow struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Stage  string `json:"stage"`
	Arity  int    `json:"arity,omitempty"`
	File   string `json:"file,omitempty"`
	Line   uint32 `json:"line,omitempty"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runSymbols(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	withPrelude, err := cmd.Flags().GetBool("prelude")
	if err != nil {
		return fmt.Errorf("failed to get prelude flag: %w", err)
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

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	res, err := compileOnce(cmd.Context(), settings, tr, compileOptions{format: "json", quiet: true, timings: timings, ui: uiModeOff})
	if err != nil {
		return err
	}
	drv := res.Driver
	rows := symbolRows(drv.Registry.Entries(), drv.Files, withPrelude)

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return err
		}
	} else {
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		printSymbolTable(out, rows, colored)
		fmt.Fprintln(out, drv.Stats.String())
	}
	if drv.Bag.HasErrors() {
		return errReported
	}
	return nil
}

func symbolRows(entries []*symbols.Entry, fs *source.FileSet, withPrelude bool) []symbolRow {
	rows := make([]symbolRow, 0, len(entries))
	for _, e := range entries {
		name := e.QualifiedName()
		if !withPrelude && strings.HasPrefix(name, ast.PreludeModule+"::") {
			continue
		}
		sym := e.Symbol()
		row := symbolRow{
			Name:  name,
			Kind:  symbols.KindName(sym),
			Stage: sym.Stage().String(),
			Arity: e.Arity(),
		}
		if f := fs.Get(e.Span().File); f != nil {
			start, _ := fs.Resolve(e.Span())
			row.File = f.DisplayPath(fs.BaseDir())
			row.Line = start.Line
		}
		if perr, ok := e.Poison(); ok {
			row.Stage = "poisoned"
			row.Code = perr.Diag.Code.ID()
			root := perr
			for root.Cause != nil {
				root = root.Cause
			}
			row.Reason = root.Diag.Message
		}
		rows = append(rows, row)
	}
	return rows
}

func printSymbolTable(out io.Writer, rows []symbolRow, colored bool) {
	nameWidth, kindWidth := len("NAME"), len("KIND")
	for _, r := range rows {
		nameWidth = max(nameWidth, runewidth.StringWidth(r.Name))
		kindWidth = max(kindWidth, runewidth.StringWidth(r.Kind))
	}
	bad := color.New(color.FgRed)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{bad, dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	fmt.Fprintf(out, "%s  %s  %-9s  %s\n", runewidth.FillRight("NAME", nameWidth), runewidth.FillRight("KIND", kindWidth), "STAGE", "SOURCE")
	for _, r := range rows {
		where := ""
		if r.File != "" {
			where = fmt.Sprintf("%s:%d", r.File, r.Line)
		}
		stage := fmt.Sprintf("%-9s", r.Stage)
		if r.Code != "" {
			stage = bad.Sprint(stage)
			where = strings.TrimSpace(where + " " + dim.Sprintf("%s %s", r.Code, r.Reason))
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n", runewidth.FillRight(r.Name, nameWidth), runewidth.FillRight(r.Kind, kindWidth), stage, where)
	}
}

