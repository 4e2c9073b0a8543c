package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"ember/internal/driver"
)

const watchDebounce = 150 * time.Millisecond

// runWatch re-checks the target after every change to an .em file. Each run
// is a fresh compilation with its own registry.
func runWatch(cmd *cobra.Command, args []string, opts compileOptions, tr *tracing) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts.ui = uiModeOff

	settings, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()
	dir := watchRoot(settings)
	if err := addDirs(w, dir); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	check := func() {
		s, err := resolveSettings(cmd, args)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return
		}
		res, err := compileOnce(ctx, s, tr, opts)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return
		}
		if err := reportResult(cmd, s, res, opts); err != nil && !errors.Is(err, errReported) {
			fmt.Fprintln(errOut, "error:", err)
		}
	}

	check()
	fmt.Fprintf(errOut, "watching %s for changes (ctrl-c to stop)\n", dir)

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addDirs(w, ev.Name)
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, driver.Ext) || ev.Op == fsnotify.Chmod {
				continue
			}
			debounce.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(errOut, "watch:", err)
		case <-debounce.C:
			fmt.Fprintln(errOut, "change detected, re-checking")
			check()
		}
	}
}

func watchRoot(s *buildSettings) string {
	if s.manifest != nil {
		return s.manifest.Root
	}
	return s.root
}

// addDirs watches dir and every non-hidden directory below it; fsnotify
// watches are not recursive.
func addDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
