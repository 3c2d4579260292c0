package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	resp, isErr := f.Write("notes.txt", "line one\nline two\nline three")
	if isErr {
		t.Fatalf("unexpected error: %s", resp)
	}

	content, isErr := f.Read("notes.txt", nil, nil)
	if isErr {
		t.Fatalf("unexpected error: %s", content)
	}
	if !strings.Contains(content, "line one") || !strings.Contains(content, "line three") {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestFilesReadMissingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	_, isErr := f.Read("missing.txt", nil, nil)
	if !isErr {
		t.Error("expected error reading a missing file")
	}
}

func TestFilesReadWithOffsetAndLimit(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)
	f.Write("lines.txt", "a\nb\nc\nd\ne")

	offset, limit := 2, 2
	content, isErr := f.Read("lines.txt", &offset, &limit)
	if isErr {
		t.Fatalf("unexpected error: %s", content)
	}
	lines := strings.Split(content, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected exactly 2 lines in the window, got %d: %q", len(lines), content)
	}
	if !strings.HasSuffix(lines[0], "b") || !strings.HasSuffix(lines[1], "c") {
		t.Errorf("expected lines b and c, got %q", content)
	}
}

func TestFilesWriteCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	_, isErr := f.Write("nested/sub/file.txt", "hello")
	if isErr {
		t.Fatal("expected write to succeed, creating parent dirs")
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "sub", "file.txt")); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestFilesEditReplacesFirstOccurrenceByDefault(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)
	f.Write("a.txt", "foo foo foo")

	_, isErr := f.Edit("a.txt", "foo", "bar", false)
	if isErr {
		t.Fatal("unexpected error")
	}
	content, _ := f.Read("a.txt", nil, nil)
	if !strings.Contains(content, "bar foo foo") {
		t.Errorf("expected only first occurrence replaced, got %q", content)
	}
}

func TestFilesEditReplaceAll(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)
	f.Write("a.txt", "foo foo foo")

	f.Edit("a.txt", "foo", "bar", true)
	content, _ := f.Read("a.txt", nil, nil)
	if strings.Contains(content, "foo") {
		t.Errorf("expected all occurrences replaced, got %q", content)
	}
}

func TestFilesEditMissingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	_, isErr := f.Edit("nope.txt", "a", "b", false)
	if !isErr {
		t.Error("expected error editing a missing file")
	}
}

func TestFilesEditCleansUpBackupFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)
	f.Write("a.txt", "hello")
	f.Edit("a.txt", "hello", "world", false)

	if _, err := os.Stat(filepath.Join(dir, "a.txt.bak")); !os.IsNotExist(err) {
		t.Error("expected .bak file to be cleaned up after a successful edit")
	}
}

func TestFilesMultiEditAppliesInOrder(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)
	f.Write("a.txt", "one two three")

	_, isErr := f.MultiEdit("a.txt", []EditSpec{
		{OldString: "one", NewString: "1"},
		{OldString: "two", NewString: "2"},
	})
	if isErr {
		t.Fatal("unexpected error")
	}
	content, _ := f.Read("a.txt", nil, nil)
	if !strings.Contains(content, "1 2 three") {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestFilesMultiEditAbortsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	_, isErr := f.MultiEdit("missing.txt", []EditSpec{{OldString: "a", NewString: "b"}})
	if !isErr {
		t.Error("expected error for missing file")
	}
}

func TestFilesMetadataReportsSize(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)
	f.Write("a.txt", "hello world")

	content, isErr := f.Metadata([]string{"a.txt"})
	if isErr {
		t.Fatalf("unexpected error: %s", content)
	}
	if !strings.Contains(content, "Size: 11 bytes") {
		t.Errorf("unexpected metadata: %q", content)
	}
}

func TestFilesMetadataMissingFileReportsNotFound(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	content, _ := f.Metadata([]string{"missing.txt"})
	if !strings.Contains(content, "Not found") {
		t.Errorf("expected not-found message, got %q", content)
	}
}

func TestFilesRestrictRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, true)

	_, isErr := f.Read("../../../etc/passwd", nil, nil)
	if !isErr {
		t.Error("expected escape attempt to be rejected")
	}
}

func TestFilesUnrestrictedAllowsAbsolutePaths(t *testing.T) {
	outsideDir := t.TempDir()
	outsidePath := filepath.Join(outsideDir, "outside.txt")
	os.WriteFile(outsidePath, []byte("secret"), 0o644)

	f := NewFiles(t.TempDir(), false)
	content, isErr := f.Read(outsidePath, nil, nil)
	if isErr {
		t.Fatalf("unexpected error: %s", content)
	}
	if !strings.Contains(content, "secret") {
		t.Errorf("expected file content read, got %q", content)
	}
}
