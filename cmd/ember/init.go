package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ember/internal/project"
	"ember/internal/version"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new Ember project",
	Long: `Initialize a new Ember project by creating a project manifest (ember.toml)
and a hello-world module (main.em). If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const helloSource = `struct Greeting {
	text: Str;
}

fn greet(name: Str) -> Greeting {
	return new Greeting { text: "hello, " + name };
}

fn main() -> Int {
	let g = greet("ember");
	return 0;
}
`

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// имя пакета берём из каталога, невалидные символы заменяем
	name := sanitizePackageName(filepath.Base(target))
	manifestPath, err := project.Init(target, name, version.Version)
	if err != nil {
		return err
	}

	mainPath := filepath.Join(target, "main.em")
	created := []string{manifestPath}
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte(helloSource), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", mainPath, err)
		}
		created = append(created, mainPath)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "initialized project %s\n", name)
	for _, path := range created {
		fmt.Fprintf(out, "  created %s\n", path)
	}
	return nil
}

func sanitizePackageName(base string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(base) {
		switch {
		case r == '_' || (r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if !project.IsValidModuleIdent(name) {
		return "ember_project"
	}
	return name
}
