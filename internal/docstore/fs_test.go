package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFS_Read(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "policy_doc_1.txt"), []byte("Report weekly."), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFS(dir)
	data, err := s.Read(context.Background(), "policy_doc_1.txt")
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if string(data) != "Report weekly." {
		t.Errorf("Read() = %q, want %q", data, "Report weekly.")
	}
}

func TestFS_ReadNotFound(t *testing.T) {
	s := NewFS(t.TempDir())
	_, err := s.Read(context.Background(), "missing.txt")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read(missing) = %v, want ErrNotFound", err)
	}
}

func TestFS_RejectsTraversal(t *testing.T) {
	s := NewFS(t.TempDir())
	for _, key := range []string{"../etc/passwd", "/etc/passwd", "a/../../b"} {
		if _, err := s.Read(context.Background(), key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Read(%q) = %v, want ErrNotFound", key, err)
		}
	}
}

func TestFS_SubdirectoryKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "metrics"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metrics", "sales.csv"), []byte("a,b\n1,2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFS(dir)
	if _, err := s.Read(context.Background(), "metrics/sales.csv"); err != nil {
		t.Fatalf("Read(metrics/sales.csv) = %v", err)
	}
}
