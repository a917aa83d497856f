package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Markers that identify the top of a Python project.
var rootMarkers = []string{
	"pyproject.toml",
	"setup.py",
	"setup.cfg",
	".git",
	"pycheck.toml",
}

type ResolvedPaths struct {
	ProjectRoot string
	PackageRoot string // "" when dotted-module resolution is off
	StateDir    string
	CacheDir    string
	HistoryPath string
	LockPath    string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot, err := projectRootFor(cfg, cwd)
	if err != nil {
		return ResolvedPaths{}, err
	}

	stateDir := ResolveRelative(projectRoot, cfg.Paths.StateDir)
	historyPath := historyPathFor(cfg, stateDir)

	packageRoot := strings.TrimSpace(cfg.PackageRoot)
	if packageRoot != "" {
		packageRoot = ResolveRelative(projectRoot, packageRoot)
	}

	return ResolvedPaths{
		ProjectRoot: filepath.Clean(projectRoot),
		PackageRoot: packageRoot,
		StateDir:    filepath.Clean(stateDir),
		CacheDir:    filepath.Clean(ResolveRelative(projectRoot, cfg.Paths.CacheDir)),
		HistoryPath: historyPath,
		LockPath:    historyPath + ".lock",
	}, nil
}

// projectRootFor returns the configured root resolved against cwd, or walks
// the scan paths looking for a marker when none is configured.
func projectRootFor(cfg *Config, cwd string) (string, error) {
	if explicit := strings.TrimSpace(cfg.Paths.ProjectRoot); explicit != "" {
		return ResolveRelative(cwd, explicit), nil
	}
	candidates := append(append([]string(nil), cfg.ScanPaths...), cwd)
	return DetectProjectRoot(candidates)
}

// historyPathFor anchors a relative history path under the state directory.
func historyPathFor(cfg *Config, stateDir string) string {
	p := strings.TrimSpace(cfg.History.Path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(stateDir, p))
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	switch {
	case raw == "":
		return filepath.Clean(base)
	case filepath.IsAbs(raw):
		return filepath.Clean(raw)
	default:
		return filepath.Clean(filepath.Join(base, raw))
	}
}

// DetectProjectRoot walks up from each candidate looking for a Python
// project marker, falling back to the current directory.
func DetectProjectRoot(candidates []string) (string, error) {
	for _, candidate := range candidates {
		start, ok := candidateDir(candidate)
		if !ok {
			continue
		}
		if root, found := ascendToMarker(start); found {
			return root, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}

// candidateDir turns a candidate into an absolute directory, using the
// parent when the candidate names a file.
func candidateDir(candidate string) (string, bool) {
	if strings.TrimSpace(candidate) == "" {
		return "", false
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs), true
	}
	return abs, true
}

func ascendToMarker(dir string) (string, bool) {
	for {
		if hasRootMarker(dir) {
			return filepath.Clean(dir), true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func hasRootMarker(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
