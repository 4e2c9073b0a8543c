package project

import (
	"os"
	"path/filepath"
	"testing"

	"ember/internal/diag"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "shapes"
compiler = ">= 0.1.0-0"

[build]
root = "src"
jobs = 2
trace_level = "phase"
`)
	nested := filepath.Join(root, "src", "geo")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if m.Config.Package.Name != "shapes" || m.Config.Build.Jobs != 2 {
		t.Fatalf("config: %+v", m.Config)
	}
	if got, want := m.SourceRoot(), filepath.Join(root, "src"); got != want {
		t.Fatalf("source root %s, want %s", got, want)
	}
	if err := m.CheckCompiler("0.1.0-dev"); err != nil {
		t.Fatalf("0.1.0-dev must satisfy the constraint: %v", err)
	}
	if err := m.CheckCompiler("0.0.9"); !diag.IsCode(err, diag.ProjCompilerVersion) {
		t.Fatalf("got %v, want ProjCompilerVersion", err)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestInvalidManifests(t *testing.T) {
	cases := map[string]string{
		"no package":   "[build]\njobs = 1\n",
		"no name":      "[package]\ncompiler = \"1\"\n",
		"bad name":     "[package]\nname = \"my-pkg\"\n",
		"bad toml":     "[package\nname = \"x\"\n",
		"unknown key":  "[package]\nname = \"x\"\nmain = \"y\"\n",
		"bad level":    "[package]\nname = \"x\"\n[build]\ntrace_level = \"loud\"\n",
		"bad semver":   "[package]\nname = \"x\"\ncompiler = \"not a range\"\n",
		"negative job": "[package]\nname = \"x\"\n[build]\njobs = -1\n",
	}
	for name, content := range cases {
		path := writeManifest(t, t.TempDir(), content)
		if _, err := LoadConfig(path); !diag.IsCode(err, diag.ProjManifest) {
			t.Errorf("%s: got %v, want ProjManifest", name, err)
		}
	}
}

func TestInitWritesLoadableManifest(t *testing.T) {
	dir := t.TempDir()
	path, err := Init(dir, "demo", "0.3.1-dev")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Package.Name != "demo" || cfg.Package.Compiler != ">= 0.3.0-0" {
		t.Fatalf("config: %+v", cfg)
	}
	if _, err := Init(dir, "demo", "0.3.1"); err == nil {
		t.Fatalf("init must not overwrite an existing manifest")
	}
	if _, err := Init(t.TempDir(), "9lives", "0.3.1"); err == nil {
		t.Fatalf("invalid package names must be rejected")
	}
}
