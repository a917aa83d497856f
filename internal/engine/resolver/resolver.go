package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"pycheck/internal/engine/parser"
)

// Resolver maps Python file paths to dotted module names under a package
// root, and expands import statements into project-module targets. A
// Resolver with an empty root resolves nothing: every path is outside the
// project.
type Resolver struct {
	root string
}

func New(packageRoot string) *Resolver {
	return &Resolver{root: packageRoot}
}

func (r *Resolver) Enabled() bool {
	return r.root != ""
}

func (r *Resolver) Root() string {
	return r.root
}

// ModuleName returns the dotted module name for filePath, or "" when the
// path lies outside the package root or no root is configured. Leading
// directories without an __init__.py are treated as filesystem prefix, not
// package structure.
func (r *Resolver) ModuleName(filePath string) string {
	if r.root == "" {
		return ""
	}
	rel, err := filepath.Rel(r.root, filePath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}

	parts := strings.Split(rel, string(os.PathSeparator))

	packageStart := 0
	for i := 0; i < len(parts)-1; i++ {
		checkPath := filepath.Join(r.root, filepath.Join(parts[:i+1]...), "__init__.py")
		if _, err := os.Stat(checkPath); os.IsNotExist(err) {
			packageStart = i + 1
		} else {
			break
		}
	}
	parts = parts[packageStart:]

	parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], ".py")

	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}

	return strings.Join(parts, ".")
}

// IsPackageInit reports whether filePath names a package __init__ module.
func IsPackageInit(filePath string) bool {
	return filepath.Base(filePath) == "__init__.py"
}

// ImportTargets expands an import parsed in fromModule into the dotted
// module names it pulls in. known reports whether a dotted name is a module
// of the project: a from-import item naming a known submodule becomes its
// own target, any other item resolves to the base module. Relative levels
// walk up from the importing module's package; isInit marks fromModule as a
// package __init__, whose package is the module itself.
func (r *Resolver) ImportTargets(imp parser.Import, fromModule string, isInit bool, known func(string) bool) []string {
	if !imp.IsRelative && len(imp.Items) == 0 {
		if imp.Module == "" {
			return nil
		}
		return []string{imp.Module}
	}

	base := imp.Module
	if imp.IsRelative {
		pkg := fromModule
		if !isInit {
			pkg = parentModule(pkg)
		}
		for l := imp.Level; l > 1 && pkg != ""; l-- {
			pkg = parentModule(pkg)
		}
		base = joinDotted(pkg, imp.Module)
	}

	if len(imp.Items) == 0 {
		if base == "" {
			return nil
		}
		return []string{base}
	}

	var out []string
	seen := make(map[string]bool, len(imp.Items))
	for _, item := range imp.Items {
		target := base
		if item != "*" {
			if cand := joinDotted(base, item); known != nil && known(cand) {
				target = cand
			}
		}
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}

func parentModule(module string) string {
	if i := strings.LastIndex(module, "."); i >= 0 {
		return module[:i]
	}
	return ""
}

func joinDotted(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "." + b
	}
}
