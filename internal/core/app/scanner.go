package app

import (
	"io/fs"
	"path/filepath"
	"sort"

	"pycheck/internal/core/config"
	"pycheck/internal/shared/util"
)

// ScanFiles walks the configured scan paths and returns every Python file
// that survives the exclude patterns, sorted by path.
func (a *App) ScanFiles() ([]string, error) {
	var files []string
	for _, root := range a.scanRoots() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return err
			case d.IsDir():
				if a.excludedDir(path) {
					return filepath.SkipDir
				}
			case a.wantFile(path):
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *App) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (a *App) wantFile(path string) bool {
	if !a.parser.Supports(path) {
		return false
	}
	base := filepath.Base(path)
	for _, g := range a.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	return true
}

// scanRoots resolves the configured scan paths against the project root and
// collapses duplicates and nested roots so no file is walked twice.
func (a *App) scanRoots() []string {
	resolved := make([]string, 0, len(a.Config.ScanPaths))
	for _, p := range a.Config.ScanPaths {
		resolved = append(resolved, config.ResolveRelative(a.Paths.ProjectRoot, p))
	}
	sort.Strings(resolved)

	var roots []string
	for _, p := range resolved {
		covered := false
		for _, root := range roots {
			if util.HasPathPrefix(p, root) {
				covered = true
				break
			}
		}
		if !covered {
			roots = append(roots, p)
		}
	}
	return roots
}
