package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ember/internal/driver"
	"ember/internal/project"
	"ember/internal/version"
)

// buildSettings is what a command compiles: the files, the root module
// names are derived from, and limits merged from ember.toml and flags.
type buildSettings struct {
	manifest       *project.Manifest
	root           string
	files          []string
	jobs           int
	maxDiagnostics int
	traceLevel     string
}

// resolveSettings finds the files for the target in args. Inside a project
// the source root of ember.toml names modules; otherwise the target
// directory does. Flags given explicitly win over the manifest.
func resolveSettings(cmd *cobra.Command, args []string) (*buildSettings, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", target, err)
	}
	searchDir := target
	if !info.IsDir() {
		searchDir = filepath.Dir(target)
	}

	s := &buildSettings{root: searchDir}
	m, ok, err := project.Load(searchDir)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := m.CheckCompiler(version.Version); err != nil {
			return nil, err
		}
		s.manifest = m
		s.root = m.SourceRoot()
		s.jobs = m.Config.Build.Jobs
		s.maxDiagnostics = m.Config.Build.MaxDiagnostics
		s.traceLevel = m.Config.Build.TraceLevel
		// корень проекта означает все исходники проекта
		if info.IsDir() && sameDir(target, m.Root) {
			target = s.root
		}
	}

	s.files, err = driver.ListFiles(target)
	if err != nil {
		return nil, err
	}
	if len(s.files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", driver.Ext, target)
	}

	if f := cmd.Flags().Lookup("jobs"); f != nil && (f.Changed || s.jobs == 0) {
		if s.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("max-diagnostics") || s.maxDiagnostics == 0 {
		if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	return s, nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
