package loader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zena-lang/zenac/internal/loader"
)

func TestFSLoadsBuiltin(t *testing.T) {
	ld := loader.NewFS(nil)
	src, filename, err := ld.Load("zena:iterator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "zena:iterator" {
		t.Fatalf("expected filename to echo the specifier, got %q", filename)
	}
	if !strings.Contains(src, "interface Iterator") {
		t.Fatalf("expected the builtin iterator source to declare Iterator, got:\n%s", src)
	}
}

func TestFSLoadsFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shapes.zena"), []byte("package shapes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ld := loader.NewFS([]string{dir})
	src, filename, err := ld.Load("shapes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(src, "package shapes") {
		t.Fatalf("unexpected source: %q", src)
	}
	if filepath.Base(filename) != "shapes.zena" {
		t.Fatalf("expected resolved filename to end in shapes.zena, got %q", filename)
	}
}

func TestFSLoadsDottedPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "b", "c.zena"), []byte("package c\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ld := loader.NewFS([]string{dir})
	src, _, err := ld.Load("a.b.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(src, "package c") {
		t.Fatalf("unexpected source: %q", src)
	}
}

func TestFSUnknownModule(t *testing.T) {
	ld := loader.NewFS([]string{t.TempDir()})
	if _, _, err := ld.Load("does.not.exist"); err == nil {
		t.Fatalf("expected an error for a missing module")
	}
}

func TestFSUnknownBuiltin(t *testing.T) {
	ld := loader.NewFS(nil)
	if _, _, err := ld.Load("zena:nonexistent"); err == nil {
		t.Fatalf("expected an error for an unknown builtin specifier")
	}
}
