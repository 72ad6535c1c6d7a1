package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/sunc/internal/apperr"
)

func tempWorkspace(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

const sheet = "basis:\n  - t[1,2,3]\n"

func TestWriteAndRead(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Write("qq.yaml", []byte(sheet)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("qq.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != sheet {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempWorkspace(t)
	if err := s.Write("a/b/c.yml", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.yml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestRejectsNonWorksheets(t *testing.T) {
	s := tempWorkspace(t)
	for _, p := range []string{"notes.md", "config", ".hidden.yaml"} {
		if err := s.Write(p, []byte("x")); !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("Write(%q) err = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestReadMissing(t *testing.T) {
	s := tempWorkspace(t)
	if _, err := s.Read("none.yaml"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Read err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("none.yaml"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("del.yaml", []byte("bye"))
	if err := s.Delete("del.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("old.yaml", []byte("data"))
	_ = s.Write("taken.yaml", []byte("other"))
	if err := s.Move("old.yaml", "taken.yaml"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("move onto existing: err = %v", err)
	}
	if err := s.Move("old.yaml", "sub/new.yaml"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.yaml")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.yaml"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("a.yaml", []byte("a"))
	_ = s.Write("sub/b.yml", []byte("b"))
	if err := os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	paths := map[string]bool{}
	for _, it := range items {
		paths[it.Path] = true
		if it.Checksum == "" {
			t.Errorf("%s has no checksum", it.Path)
		}
	}
	if !paths["a.yaml"] || !paths["sub/b.yml"] {
		t.Errorf("paths = %v", paths)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWorkspace(t)
	for _, p := range []string{"../../etc/passwd.yaml", "../outside.yaml", "/etc/shadow.yaml"} {
		if _, err := s.Read(p); !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("Read(%q) err = %v, want ErrInvalidPath", p, err)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("atomic.yaml", []byte("original"))
	if err := s.Write("atomic.yaml", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.yaml")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, tempPattern))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_Errors(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
	f, err := os.CreateTemp(t.TempDir(), "sunc-test-*")
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestIsWorksheet(t *testing.T) {
	cases := map[string]bool{
		"a.yaml":            true,
		"dir/b.YML":         true,
		"c.md":              false,
		".sunc-tmp-123":     false,
		"dir/.hidden.yaml":  false,
	}
	for name, want := range cases {
		if got := IsWorksheet(name); got != want {
			t.Errorf("IsWorksheet(%q) = %v", name, got)
		}
	}
}
