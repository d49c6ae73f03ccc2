package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteTextFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := WriteTextFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteTextFileAtomic: %v", err)
	}
	if err := WriteTextFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteTextFileAtomic overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwrite to win, got %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	if FileExists(path) {
		t.Fatal("expected missing file to report false")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Fatal("expected existing file to report true")
	}
	if FileExists(dir) {
		t.Fatal("expected directory to report false")
	}
}
