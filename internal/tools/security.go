// Package tools implements the file and search primitives available to
// agents through the read/write/edit/grep/glob/ls action variants.
package tools

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath resolves path relative to workspace and validates it.
// When restrict is true, it resolves symlinks to canonical form and rejects
// any path that would escape the workspace boundary. Defense against a
// local attacker sharing the execution environment (TOCTOU symlink rebinds,
// hardlinks) is out of scope here: spec.md assumes sandboxing and privilege
// separation are supplied by the execution backend, not this layer.
func ResolvePath(path, workspace string, restrict bool) (string, error) {
	var resolved string
	if filepath.IsAbs(path) {
		resolved = filepath.Clean(path)
	} else {
		resolved = filepath.Clean(filepath.Join(workspace, path))
	}

	if !restrict {
		return resolved, nil
	}

	absWorkspace, _ := filepath.Abs(workspace)
	wsReal, err := filepath.EvalSymlinks(absWorkspace)
	if err != nil {
		wsReal = absWorkspace
	}

	absResolved, _ := filepath.Abs(resolved)
	real, err := filepath.EvalSymlinks(absResolved)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("security.path_resolve_failed", "path", path, "error", err)
			return "", fmt.Errorf("access denied: cannot resolve path")
		}
		// Target doesn't exist yet (e.g. a write destination) — canonicalize
		// the deepest existing ancestor and re-append the rest.
		existing := absResolved
		rest := []string{}
		for {
			parent := filepath.Dir(existing)
			rest = append([]string{filepath.Base(existing)}, rest...)
			parentReal, parentErr := filepath.EvalSymlinks(parent)
			if parentErr == nil {
				real = filepath.Join(append([]string{parentReal}, rest...)...)
				break
			}
			if !os.IsNotExist(parentErr) || parent == existing {
				return "", fmt.Errorf("access denied: cannot resolve path")
			}
			existing = parent
		}
	}

	if !isPathInside(real, wsReal) {
		slog.Warn("security.path_escape", "path", path, "resolved", real, "workspace", wsReal)
		return "", fmt.Errorf("access denied: path outside workspace")
	}

	return real, nil
}

// isPathInside checks whether child is inside or equal to parent directory.
func isPathInside(child, parent string) bool {
	if child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}
