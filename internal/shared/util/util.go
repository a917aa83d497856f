package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePatternPath brings a user-supplied path into slash form with
// redundant segments collapsed. The empty result means the path named the
// current directory.
func NormalizePatternPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\`, "/")
	if cleaned := path.Clean(s); cleaned != "." {
		return cleaned
	}
	return ""
}

// HasPathPrefix reports whether p names the same path as prefix or lies
// below it. Both sides are normalized first, so separator style and
// redundant segments do not matter.
func HasPathPrefix(p, prefix string) bool {
	p = NormalizePatternPath(p)
	prefix = NormalizePatternPath(prefix)
	switch {
	case p == prefix:
		return true
	case p == "" || prefix == "":
		return false
	default:
		return strings.HasPrefix(p, prefix+"/")
	}
}

// ContainsPathSeparator reports whether value names more than a single
// path component, whichever separator convention it uses.
func ContainsPathSeparator(value string) bool {
	return strings.ContainsAny(value, `/\`)
}

// SortedStringKeys returns m's keys in ascending order, for deterministic
// iteration.
func SortedStringKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs writes data to name, creating missing parent
// directories with 0755.
func WriteFileWithDirs(name string, data []byte, perm fs.FileMode) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(name, data, perm)
}
