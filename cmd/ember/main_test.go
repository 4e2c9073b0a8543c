package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ember/internal/ir"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestInitCheckEmit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	if _, _, err := execute(t, "init", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ember.toml")); err != nil {
		t.Fatalf("manifest: %v", err)
	}

	if out, errOut, err := execute(t, "check", "--ui", "off", dir); err != nil {
		t.Fatalf("check: %v\n%s%s", err, out, errOut)
	}

	target := filepath.Join(t.TempDir(), "demo.emp")
	if out, errOut, err := execute(t, "emit", "--ui", "off", "-o", target, dir); err != nil {
		t.Fatalf("emit: %v\n%s%s", err, out, errOut)
	}
	f, err := os.Open(target)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	payload, err := ir.DecodePayload(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := make([]string, 0, len(payload.Functions))
	for _, fn := range payload.Functions {
		names = append(names, fn.Name)
	}
	if !strings.Contains(strings.Join(names, ","), "main::greet") {
		t.Fatalf("functions: %v", names)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	dir := t.TempDir()
	src := "fn f() -> Int {\n\treturn nowhere();\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.em"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "check", "--ui", "off", "--format", "json", dir)
	if !errors.Is(err, errReported) {
		t.Fatalf("got %v, want errReported", err)
	}
	var payload struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if payload.Count == 0 || !strings.HasPrefix(payload.Diagnostics[0].Code, "SEM") {
		t.Fatalf("diagnostics: %s", out)
	}
}

func TestSymbolsListsPoison(t *testing.T) {
	dir := t.TempDir()
	src := "fn ok() -> Int { return 1; }\nfn broken() -> Missing { return 1; }\nfn user() -> Int { broken(); return ok(); }\n"
	if err := os.WriteFile(filepath.Join(dir, "app.em"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "symbols", "--format", "json", dir)
	if !errors.Is(err, errReported) {
		t.Fatalf("got %v, want errReported", err)
	}
	var rows []symbolRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	stages := make(map[string]string, len(rows))
	for _, r := range rows {
		if strings.HasPrefix(r.Name, "std::prelude::") {
			t.Fatalf("prelude must be hidden by default: %s", r.Name)
		}
		stages[r.Name] = r.Stage
	}
	if stages["app::ok"] != "finalized" || stages["app::broken"] != "poisoned" || stages["app::user"] != "poisoned" {
		t.Fatalf("stages: %v", stages)
	}
}

func TestSanitizePackageName(t *testing.T) {
	for in, want := range map[string]string{
		"demo":   "demo",
		"my-app": "my_app",
		"9lives": "_9lives",
		"":       "ember_project",
	} {
		if got := sanitizePackageName(in); got != want {
			t.Errorf("sanitizePackageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFixInsertsSemicolon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.em")
	if err := os.WriteFile(path, []byte("fn one() -> Int {\n\treturn 1\n}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "fix", dir)
	if err != nil {
		t.Fatalf("fix: %v\n%s", err, out)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fn one() -> Int {\n\treturn 1;\n}\n" {
		t.Fatalf("content %q\n%s", got, out)
	}
	if _, _, err := execute(t, "check", "--ui", "off", dir); err != nil {
		t.Fatalf("fixed file must check: %v", err)
	}
}
