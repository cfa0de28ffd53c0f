// Package loader implements the module host / file loader collaborator
// spec.md §1 treats as external: resolving a module specifier (the path in
// a `use a.b.c` declaration, or a `zena:`-prefixed built-in) to source text.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BuiltinPrefix marks a module specifier as resolving to source bundled with
// the compiler itself, per spec.md §6 ("a specifier beginning with a
// reserved prefix... resolves to a built-in source").
const BuiltinPrefix = "zena:"

// Loader resolves a module specifier to its source text and a display name
// used for diagnostic spans.
type Loader interface {
	Load(specifier string) (source, filename string, err error)
}

// FS resolves non-builtin specifiers against a list of filesystem search
// roots, trying each in order, and builtin specifiers against the bundled
// sources in builtins.go.
type FS struct {
	SearchPaths []string
}

// NewFS returns a loader rooted at the given search paths; an empty list
// falls back to the current working directory.
func NewFS(searchPaths []string) *FS {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	return &FS{SearchPaths: searchPaths}
}

// Load implements Loader. Specifier segments are joined with a path
// separator and ".zena" is appended if the bare name doesn't already resolve.
func (f *FS) Load(specifier string) (string, string, error) {
	if strings.HasPrefix(specifier, BuiltinPrefix) {
		return loadBuiltin(specifier)
	}

	rel := strings.ReplaceAll(specifier, ".", string(filepath.Separator))
	candidates := []string{rel, rel + ".zena"}

	var lastErr error
	for _, root := range f.SearchPaths {
		for _, c := range candidates {
			path := filepath.Join(root, c)
			data, err := os.ReadFile(path)
			if err == nil {
				return string(data), path, nil
			}
			lastErr = err
		}
	}
	return "", "", fmt.Errorf("module %q not found in search paths %v: %w", specifier, f.SearchPaths, lastErr)
}

func loadBuiltin(specifier string) (string, string, error) {
	src, ok := builtins[specifier]
	if !ok {
		return "", "", fmt.Errorf("unknown built-in module %q", specifier)
	}
	return src, specifier, nil
}
