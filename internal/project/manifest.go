package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/trace"
)

// Manifest is a decoded ember.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Compiler is a semver constraint on the compiler version, e.g. ">= 0.1".
	Compiler string `toml:"compiler,omitempty"`
}

type BuildConfig struct {
	// Root is the source directory relative to the manifest; module names
	// are derived from paths below it.
	Root           string `toml:"root,omitempty"`
	Jobs           int    `toml:"jobs,omitempty"`
	MaxDiagnostics int    `toml:"max_diagnostics,omitempty"`
	TraceLevel     string `toml:"trace_level,omitempty"`
}

// Load finds and decodes the manifest above startDir. ok is false when no
// manifest exists; a manifest that exists but is invalid is an error.
func Load(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one manifest file. Validation failures
// are ProjManifest diagnostics.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: failed to parse TOML: %v", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: missing [package]", path)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if !meta.IsDefined("package", "name") || name == "" {
		return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: missing [package].name", path)
	}
	if !IsValidModuleIdent(name) {
		return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: invalid package name %q", path, name)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Build.Jobs < 0 || cfg.Build.MaxDiagnostics < 0 {
		return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: [build] limits must not be negative", path)
	}
	if cfg.Build.TraceLevel != "" {
		if _, err := trace.ParseLevel(cfg.Build.TraceLevel); err != nil {
			return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: [build].trace_level: %v", path, err)
		}
	}
	if cfg.Package.Compiler != "" {
		if _, err := semver.NewConstraint(cfg.Package.Compiler); err != nil {
			return Config{}, diag.Failf(diag.ProjManifest, source.Span{}, "%s: [package].compiler: %v", path, err)
		}
	}
	return cfg, nil
}

// SourceRoot is the directory sources are collected from.
func (m *Manifest) SourceRoot() string {
	if m.Config.Build.Root == "" {
		return m.Root
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.Root))
}

// CheckCompiler reports a ProjCompilerVersion diagnostic when version does
// not satisfy [package].compiler. Pre-release versions match a constraint
// like ">= 0.1.0-0" only, as semver prescribes.
func (m *Manifest) CheckCompiler(version string) error {
	if m == nil || m.Config.Package.Compiler == "" {
		return nil
	}
	c, err := semver.NewConstraint(m.Config.Package.Compiler)
	if err != nil {
		return diag.Failf(diag.ProjManifest, source.Span{}, "%s: [package].compiler: %v", m.Path, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return diag.Failf(diag.ProjCompilerVersion, source.Span{}, "compiler version %q is not semantic: %v", version, err)
	}
	if ok, reasons := c.Validate(v); !ok {
		msg := fmt.Sprintf("%s requires compiler %s, this is %s", m.Path, m.Config.Package.Compiler, v)
		if len(reasons) > 0 {
			msg += ": " + reasons[0].Error()
		}
		return diag.Failf(diag.ProjCompilerVersion, source.Span{}, "%s", msg)
	}
	return nil
}

// Init writes a fresh manifest for package name into dir. An existing
// manifest is never overwritten.
func Init(dir, name, compilerVersion string) (string, error) {
	if !IsValidModuleIdent(name) {
		return "", fmt.Errorf("invalid package name %q", name)
	}
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	cfg := Config{Package: PackageConfig{Name: name}}
	if v, err := semver.NewVersion(compilerVersion); err == nil {
		cfg.Package.Compiler = fmt.Sprintf(">= %d.%d.0-0", v.Major(), v.Minor())
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// IsValidModuleIdent reports whether name is an ASCII identifier.
func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
