package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "pycheck.toml", `
package_root = "src"
scan_paths = ["src", "tools"]

[exclude]
dirs = [".git", "build"]
files = ["*_pb2.py"]

[rules]
disable = ["environ-assignment"]

[parser]
workers = 4
cache_capacity = 128
memory_limit_mb = 256

[watch]
debounce = "750ms"

[history]
enabled = true
path = "runs.db"

[output]
format = "json"
file = "report.json"

[observability]
enabled = true
addr = "127.0.0.1:9300"
otlp_endpoint = "127.0.0.1:4317"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PackageRoot != "src" {
		t.Errorf("PackageRoot = %q", cfg.PackageRoot)
	}
	if len(cfg.ScanPaths) != 2 || cfg.ScanPaths[1] != "tools" {
		t.Errorf("ScanPaths = %v", cfg.ScanPaths)
	}
	if len(cfg.Exclude.Dirs) != 2 || cfg.Exclude.Dirs[1] != "build" {
		t.Errorf("Exclude.Dirs = %v", cfg.Exclude.Dirs)
	}
	if cfg.Parser.Workers != 4 || cfg.Parser.CacheCapacity != 128 || cfg.Parser.MemoryLimitMB != 256 {
		t.Errorf("Parser = %+v", cfg.Parser)
	}
	if cfg.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
	if !cfg.History.Enabled || cfg.History.Path != "runs.db" {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.Output.Format != "json" || cfg.Output.File != "report.json" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !cfg.Observability.Enabled || cfg.Observability.OTLPEndpoint != "127.0.0.1:4317" {
		t.Errorf("Observability = %+v", cfg.Observability)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "pycheck.yaml", `
package_root: lib
rules:
  enable:
    - cyclic-import
    - return-in-init
output:
  format: sarif
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PackageRoot != "lib" {
		t.Errorf("PackageRoot = %q", cfg.PackageRoot)
	}
	if len(cfg.Rules.Enable) != 2 || cfg.Rules.Enable[0] != "cyclic-import" {
		t.Errorf("Rules.Enable = %v", cfg.Rules.Enable)
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("Output.Format = %q", cfg.Output.Format)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pycheck.toml", ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d", cfg.Version)
	}
	if len(cfg.ScanPaths) != 1 || cfg.ScanPaths[0] != "." {
		t.Errorf("ScanPaths = %v", cfg.ScanPaths)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q", cfg.Output.Format)
	}
	if cfg.Parser.Workers <= 0 || cfg.Parser.CacheCapacity != 512 {
		t.Errorf("Parser = %+v", cfg.Parser)
	}
	found := false
	for _, dir := range cfg.Exclude.Dirs {
		if dir == "__pycache__" {
			found = true
		}
	}
	if !found {
		t.Errorf("Exclude.Dirs = %v, want __pycache__ present", cfg.Exclude.Dirs)
	}
}

func TestLoad_UnknownRuleSuggestion(t *testing.T) {
	_, err := Load(writeConfig(t, "pycheck.toml", `
[rules]
disable = ["cyclic-imprt"]
`))
	if err == nil {
		t.Fatal("expected error for unknown rule name")
	}
	if !strings.Contains(err.Error(), `did you mean "cyclic-import"`) {
		t.Errorf("error = %v, want a cyclic-import suggestion", err)
	}
}

func TestLoad_EnableDisableConflict(t *testing.T) {
	_, err := Load(writeConfig(t, "pycheck.toml", `
[rules]
enable = ["cyclic-import"]
disable = ["return-in-init"]
`))
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %v, want mutual-exclusion failure", err)
	}
}

func TestLoad_RejectsExcludeWithSeparator(t *testing.T) {
	_, err := Load(writeConfig(t, "pycheck.toml", `
[exclude]
dirs = ["build/output"]
`))
	if err == nil || !strings.Contains(err.Error(), "path separator") {
		t.Errorf("error = %v, want path-separator failure", err)
	}
}

func TestLoad_RejectsBadOutputFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "pycheck.toml", `
[output]
format = "xml"
`))
	if err == nil || !strings.Contains(err.Error(), "output.format") {
		t.Errorf("error = %v, want output.format failure", err)
	}
}

func TestLoad_RejectsUnknownExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "pycheck.json", `{}`))
	if err == nil || !strings.Contains(err.Error(), "unsupported config format") {
		t.Errorf("error = %v, want unsupported-format failure", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pycheck.toml"), []byte("package_root = \"src\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if path != filepath.Join(dir, "pycheck.toml") {
		t.Errorf("path = %q", path)
	}
	if cfg.PackageRoot != "src" {
		t.Errorf("PackageRoot = %q", cfg.PackageRoot)
	}

	cfg, path, err = Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover without file: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for defaults", path)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("defaults not applied: %+v", cfg.Output)
	}
}

func TestEnabledRules(t *testing.T) {
	cfg := Default()
	enabled := cfg.EnabledRules()
	if len(enabled) != 4 {
		t.Fatalf("default enabled = %v, want the full catalog", enabled)
	}

	cfg.Rules.Disable = []string{"environ-assignment"}
	enabled = cfg.EnabledRules()
	if enabled["environ-assignment"] {
		t.Error("disabled rule still enabled")
	}
	if !enabled["cyclic-import"] {
		t.Error("unrelated rule dropped")
	}

	cfg = Default()
	cfg.Rules.Enable = []string{"return-in-init"}
	enabled = cfg.EnabledRules()
	if len(enabled) != 1 || !enabled["return-in-init"] {
		t.Errorf("narrowed enabled = %v", enabled)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PYCHECK_PACKAGE_ROOT", "override/src")
	t.Setenv("PYCHECK_PARSER_WORKERS", "2")
	t.Setenv("PYCHECK_WATCH_DEBOUNCE", "2s")
	t.Setenv("PYCHECK_HISTORY_ENABLED", "true")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.PackageRoot != "override/src" {
		t.Errorf("PackageRoot = %q", cfg.PackageRoot)
	}
	if cfg.Parser.Workers != 2 {
		t.Errorf("Workers = %d", cfg.Parser.Workers)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled not overridden")
	}
}
