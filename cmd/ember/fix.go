package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [path]",
	Short: "Apply suggested fixes to source files",
	Long: `Fix checks the sources and applies every suggested edit that does not
overlap another one, such as inserting a missing ';'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "show what would change without writing files")
	fixCmd.Flags().Int("jobs", 0, "files parsed in parallel (0 = GOMAXPROCS)")
}

func runFix(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
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

	res, err := compileOnce(cmd.Context(), settings, tr, compileOptions{format: "json", quiet: true, ui: uiModeOff})
	if err != nil {
		return err
	}
	drv := res.Driver
	out := cmd.OutOrStdout()

	result, err := fix.Apply(drv.Files, drv.Bag.Items(), fix.Options{DryRun: dryRun})
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(out, "no fixes to apply")
		return nil
	}
	if err != nil {
		return err
	}
	verb := "fixed"
	if dryRun {
		verb = "would fix"
	}
	for _, a := range result.Applied {
		fmt.Fprintf(out, "%s %s:%d: %s (%s)\n", verb, a.Path, a.Line, a.Title, a.Code.ID())
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(out, "skipped %s: %s: %s\n", s.Path, s.Title, s.Reason)
	}
	if dryRun {
		for _, f := range result.Files {
			fmt.Fprintf(out, "--- %s (%d edits)\n%s", f.Path, f.Edits, f.Content)
		}
	}
	return nil
}
