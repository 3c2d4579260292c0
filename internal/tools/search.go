package tools

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const searchResultLimit = 100

// Search implements grep/glob/ls, rooted at a single workspace directory.
type Search struct {
	Workspace string
	Restrict  bool
}

func NewSearch(workspace string, restrict bool) *Search {
	return &Search{Workspace: workspace, Restrict: restrict}
}

func (s *Search) resolve(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return ResolvePath(path, s.Workspace, s.Restrict)
}

// Grep searches file contents under path (default: workspace root) with a
// regular expression, optionally restricted to files matching an include
// glob (e.g. "*.go").
func (s *Search) Grep(pattern, path, include string) (string, bool) {
	root, err := s.resolve(path)
	if err != nil {
		return err.Error(), true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Sprintf("Error during search: invalid pattern: %v", err), true
	}

	var matches []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if include != "" {
			if ok, _ := filepath.Match(include, d.Name()); !ok {
				return nil
			}
		}
		if len(matches) >= searchResultLimit {
			return fs.SkipAll
		}
		f, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for sc.Scan() {
			lineNo++
			if re.MatchString(sc.Text()) {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", p, lineNo, sc.Text()))
				if len(matches) >= searchResultLimit {
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Sprintf("Error during search: %v", walkErr), true
	}

	if len(matches) == 0 {
		return "No matches found", false
	}
	result := strings.Join(matches, "\n")
	if len(matches) == searchResultLimit {
		result += "\n\n[Output truncated to 100 matches]"
	}
	return result, false
}

// Glob finds files by base-name pattern (e.g. "*.go", "**/*_test.go") under
// path, recursively. Patterns are matched against each path's base name
// using filepath.Match; a leading "**/ " is treated as "match anywhere".
func (s *Search) Glob(pattern, path string) (string, bool) {
	root, err := s.resolve(path)
	if err != nil {
		return err.Error(), true
	}
	namePattern := strings.TrimPrefix(pattern, "**/")

	var found []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(namePattern, d.Name()); ok {
			found = append(found, p)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Sprintf("Error during file search: %v", walkErr), true
	}

	if len(found) == 0 {
		return "No files found matching pattern", false
	}
	sort.Strings(found)
	truncated := false
	if len(found) > searchResultLimit {
		found = found[:searchResultLimit]
		truncated = true
	}
	result := strings.Join(found, "\n")
	if truncated {
		result += "\n\n[Output truncated to 100 files]"
	}
	return result, false
}

// LS lists a directory's immediate entries, filtering any whose name matches
// an ignore pattern (prefix match via "name*", suffix match via "*name", or
// plain substring).
func (s *Search) LS(path string, ignore []string) (string, bool) {
	resolved, err := s.resolve(path)
	if err != nil {
		return err.Error(), true
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Sprintf("Path not found: %s", path), true
	}
	if !info.IsDir() {
		return fmt.Sprintf("Path is not a directory: %s", path), true
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return fmt.Sprintf("Error listing directory: %v", err), true
	}

	var lines []string
	for _, e := range entries {
		if matchesIgnore(e.Name(), ignore) {
			continue
		}
		suffix := ""
		if e.IsDir() {
			suffix = "/"
		}
		lines = append(lines, e.Name()+suffix)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), false
}

func matchesIgnore(name string, patterns []string) bool {
	for _, pattern := range patterns {
		switch {
		case strings.HasPrefix(pattern, "*"):
			if strings.HasSuffix(name, pattern[1:]) {
				return true
			}
		case strings.HasSuffix(pattern, "*"):
			if strings.HasPrefix(name, pattern[:len(pattern)-1]) {
				return true
			}
		case strings.Contains(name, pattern):
			return true
		}
	}
	return false
}
