package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] [path]",
	Short: "Check sources and write the finalized program",
	Long: `Emit runs a check and, when it reports no errors, writes every finalized
function, structure and implementation as a msgpack program for the back end.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmit,
}

func init() {
	addCompileFlags(emitCmd)
	emitCmd.Flags().StringP("output", "o", "", "output path (default <package>.emp)")
}

func runEmit(cmd *cobra.Command, args []string) error {
	opts, err := readCompileOptions(cmd)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if output == "" {
		output = defaultEmitPath(settings)
	}
	opts.emitPath = output

	tr, err := setupTracing(cmd, settings.traceLevel)
	if err != nil {
		return err
	}
	defer tr.close()

	res, err := compileOnce(cmd.Context(), settings, tr, opts)
	if err != nil {
		return err
	}
	if err := reportResult(cmd, settings, res, opts); err != nil {
		return err
	}
	if !opts.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
	}
	return nil
}

func defaultEmitPath(s *buildSettings) string {
	if s.manifest != nil {
		return filepath.Join(s.manifest.Root, s.manifest.Config.Package.Name+".emp")
	}
	name := filepath.Base(s.root)
	if name == "." || name == string(filepath.Separator) {
		name = "program"
	}
	return name + ".emp"
}
