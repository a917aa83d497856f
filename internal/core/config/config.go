package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"pycheck/internal/engine/rules"
	"pycheck/internal/shared/util"

	"github.com/agnivade/levenshtein"
)

type Config struct {
	Version       int           `toml:"version" yaml:"version"`
	Paths         Paths         `toml:"paths" yaml:"paths"`
	PackageRoot   string        `toml:"package_root" yaml:"package_root"`
	ScanPaths     []string      `toml:"scan_paths" yaml:"scan_paths"`
	Exclude       Exclude       `toml:"exclude" yaml:"exclude"`
	Rules         Rules         `toml:"rules" yaml:"rules"`
	Parser        Parser        `toml:"parser" yaml:"parser"`
	Watch         Watch         `toml:"watch" yaml:"watch"`
	History       History       `toml:"history" yaml:"history"`
	Output        Output        `toml:"output" yaml:"output"`
	Observability Observability `toml:"observability" yaml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root" yaml:"project_root"`
	StateDir    string `toml:"state_dir" yaml:"state_dir"`
	CacheDir    string `toml:"cache_dir" yaml:"cache_dir"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs" yaml:"dirs"`
	Files []string `toml:"files" yaml:"files"`
}

// Rules selects the checks for a run. Enable narrows to the named rules;
// Disable subtracts from the full catalog. Setting both is a config error.
type Rules struct {
	Enable  []string `toml:"enable" yaml:"enable"`
	Disable []string `toml:"disable" yaml:"disable"`
}

type Parser struct {
	Workers       int     `toml:"workers" yaml:"workers"`
	CacheCapacity int     `toml:"cache_capacity" yaml:"cache_capacity"`
	MemoryLimitMB uint64  `toml:"memory_limit_mb" yaml:"memory_limit_mb"`
	RatePerSecond float64 `toml:"rate_per_second" yaml:"rate_per_second"`
	RateBurst     int     `toml:"rate_burst" yaml:"rate_burst"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce" yaml:"debounce"`
}

type History struct {
	Enabled     bool          `toml:"enabled" yaml:"enabled"`
	Path        string        `toml:"path" yaml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout" yaml:"busy_timeout"`
}

type Output struct {
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
	Color  *bool  `toml:"color" yaml:"color"`
}

type Observability struct {
	Enabled      bool   `toml:"enabled" yaml:"enabled"`
	Addr         string `toml:"addr" yaml:"addr"`
	OTLPEndpoint string `toml:"otlp_endpoint" yaml:"otlp_endpoint"`
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = "data/cache"
	}

	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{
			".git", "__pycache__", ".venv", "venv", ".tox", ".mypy_cache", "node_modules",
		}
	}

	if cfg.Parser.Workers <= 0 {
		cfg.Parser.Workers = runtime.NumCPU()
	}
	if cfg.Parser.CacheCapacity <= 0 {
		cfg.Parser.CacheCapacity = 512
	}
	if cfg.Parser.RatePerSecond > 0 && cfg.Parser.RateBurst <= 0 {
		cfg.Parser.RateBurst = cfg.Parser.Workers
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "history.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}

	if strings.TrimSpace(cfg.Observability.Addr) == "" {
		cfg.Observability.Addr = "127.0.0.1:9090"
	}
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	if err := validateRules(cfg); err != nil {
		return err
	}
	if err := validateExcludes(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	if cfg.Observability.Enabled && strings.TrimSpace(cfg.Observability.Addr) == "" {
		return fmt.Errorf("observability.addr must not be empty when observability.enabled=true")
	}
	if cfg.Parser.RatePerSecond < 0 {
		return fmt.Errorf("parser.rate_per_second must not be negative")
	}
	return nil
}

func validateRules(cfg *Config) error {
	if len(cfg.Rules.Enable) > 0 && len(cfg.Rules.Disable) > 0 {
		return fmt.Errorf("rules.enable and rules.disable are mutually exclusive")
	}
	known := make(map[string]bool)
	for _, name := range rules.Catalog() {
		known[name] = true
	}
	for _, list := range [][]string{cfg.Rules.Enable, cfg.Rules.Disable} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("rule names must not be empty")
			}
			if known[name] {
				continue
			}
			if suggestion := suggestRuleName(name); suggestion != "" {
				return fmt.Errorf("unknown rule %q; did you mean %q?", name, suggestion)
			}
			return fmt.Errorf("unknown rule %q", name)
		}
	}
	return nil
}

// Exclude patterns match single path components, so a pattern carrying a
// separator can never match anything.
func validateExcludes(cfg *Config) error {
	for _, pat := range cfg.Exclude.Dirs {
		if util.ContainsPathSeparator(pat) {
			return fmt.Errorf("exclude.dirs pattern %q contains a path separator; patterns match directory names", pat)
		}
	}
	for _, pat := range cfg.Exclude.Files {
		if util.ContainsPathSeparator(pat) {
			return fmt.Errorf("exclude.files pattern %q contains a path separator; patterns match file names", pat)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	format := strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	switch format {
	case "text", "json", "sarif", "dot":
		return nil
	default:
		return fmt.Errorf("output.format must be one of: text, json, sarif, dot")
	}
}

// suggestRuleName returns the catalog name closest to unknown, or "" when
// nothing is close enough to be a plausible typo.
func suggestRuleName(unknown string) string {
	const maxDistance = 6
	best, bestDist := "", maxDistance
	for _, name := range rules.Catalog() {
		if d := levenshtein.ComputeDistance(unknown, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// EnabledRules resolves the enable/disable lists against the catalog into
// the effective rule-name set for this run.
func (c *Config) EnabledRules() map[string]bool {
	enabled := make(map[string]bool)
	if len(c.Rules.Enable) > 0 {
		for _, name := range c.Rules.Enable {
			enabled[strings.TrimSpace(name)] = true
		}
		return enabled
	}
	for _, name := range rules.Catalog() {
		enabled[name] = true
	}
	for _, name := range c.Rules.Disable {
		delete(enabled, strings.TrimSpace(name))
	}
	return enabled
}
