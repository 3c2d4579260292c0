package tools

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Files implements the read/write/edit/metadata primitives, rooted at a
// single workspace directory.
type Files struct {
	Workspace string
	Restrict  bool
}

func NewFiles(workspace string, restrict bool) *Files {
	return &Files{Workspace: workspace, Restrict: restrict}
}

func (f *Files) resolve(path string) (string, error) {
	return ResolvePath(path, f.Workspace, f.Restrict)
}

// Read returns the file's content, line-numbered, windowed by offset/limit.
// offset is the 1-based starting line (matching "tail -n +offset"); limit
// caps the number of lines returned.
func (f *Files) Read(path string, offset, limit *int) (string, bool) {
	resolved, err := f.resolve(path)
	if err != nil {
		return err.Error(), true
	}

	file, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("File not found: %s", path), true
		}
		return fmt.Sprintf("Error reading file: %v", err), true
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Sprintf("Error reading file: %v", err), true
	}

	start := 0
	if offset != nil {
		start = *offset - 1
		if start < 0 {
			start = 0
		}
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := len(lines)
	if limit != nil && start+*limit < end {
		end = start + *limit
	}

	var out strings.Builder
	lineNo := start + 1
	if offset == nil {
		lineNo = 1
	}
	for _, line := range lines[start:end] {
		fmt.Fprintf(&out, "%6d\t%s\n", lineNo, line)
		lineNo++
	}
	return strings.TrimRight(out.String(), "\n"), false
}

// Write creates parent directories as needed and overwrites path with content.
func (f *Files) Write(path, content string) (string, bool) {
	resolved, err := f.resolve(path)
	if err != nil {
		return err.Error(), true
	}

	if dir := filepath.Dir(resolved); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Sprintf("Error writing file: %v", err), true
		}
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error writing file: %v", err), true
	}
	return fmt.Sprintf("Successfully wrote to %s", path), false
}

// Edit replaces occurrences of oldString with newString in path. A `.bak`
// backup is created before the mutation and removed afterward on a
// best-effort basis — failures to back up or clean up are logged, never
// surfaced as the edit's result.
func (f *Files) Edit(path, oldString, newString string, replaceAll bool) (string, bool) {
	resolved, err := f.resolve(path)
	if err != nil {
		return err.Error(), true
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("File not found: %s", path), true
		}
		return fmt.Sprintf("Error editing file: %v", err), true
	}

	backupPath := resolved + ".bak"
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		logBackupFailure("create", backupPath, err)
	}
	defer func() {
		if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
			logBackupFailure("remove", backupPath, err)
		}
	}()

	content := string(data)
	n := 1
	if replaceAll {
		n = -1
	}
	content = strings.Replace(content, oldString, newString, n)

	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error editing file: %v", err), true
	}

	which := "first occurrence"
	if replaceAll {
		which = "all occurrences"
	}
	return fmt.Sprintf("Successfully replaced %s in %s", which, path), false
}

// MultiEdit applies a sequence of edits in order, aborting on the first hard
// error (a missing file — not "no matches", which the underlying Edit never
// reports as an error).
func (f *Files) MultiEdit(path string, edits []EditSpec) (string, bool) {
	var results []string
	for i, e := range edits {
		result, isError := f.Edit(path, e.OldString, e.NewString, e.ReplaceAll)
		if isError {
			return fmt.Sprintf("Error on edit %d: %s", i+1, result), true
		}
		results = append(results, fmt.Sprintf("Edit %d: %s", i+1, result))
	}
	return strings.Join(results, "\n"), false
}

// EditSpec is one entry in a multi-edit sequence.
type EditSpec struct {
	OldString  string
	NewString  string
	ReplaceAll bool
}

// Metadata reports size/mtime/type/owner/permissions for up to 10 files.
func (f *Files) Metadata(paths []string) (string, bool) {
	if len(paths) > 10 {
		paths = paths[:10]
	}

	var blocks []string
	for _, path := range paths {
		resolved, err := f.resolve(path)
		if err != nil {
			blocks = append(blocks, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		info, err := os.Lstat(resolved)
		if err != nil {
			blocks = append(blocks, fmt.Sprintf("%s: Not found", path))
			continue
		}

		owner := "unknown"
		if stat, ok := info.Sys().(*syscall.Stat_t); ok {
			if u, err := user.LookupId(strconv.Itoa(int(stat.Uid))); err == nil {
				owner = u.Username
			}
		}

		fileType := "directory"
		if !info.IsDir() {
			fileType = detectFileType(resolved)
		}

		blocks = append(blocks, fmt.Sprintf(
			"%s:\n  Size: %d bytes\n  Modified: %s\n  Type: %s\n  Owner: %s\n  Permissions: %s",
			path, info.Size(), info.ModTime().Format(time.RFC3339), fileType, owner, info.Mode().Perm(),
		))
	}
	return strings.Join(blocks, "\n\n"), false
}

func detectFileType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "unknown"
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return http.DetectContentType(buf[:n])
}

func logBackupFailure(op, path string, err error) {
	slog.Debug("edit: backup step failed", "op", op, "path", path, "error", err)
}
