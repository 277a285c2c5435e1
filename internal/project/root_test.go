package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRootFromNestedFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version = 1\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	nested := filepath.Join(root, "docs", "guides")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("creating dirs: %v", err)
	}
	doc := filepath.Join(nested, "intro.md")
	if err := os.WriteFile(doc, []byte("# intro\n"), 0o644); err != nil {
		t.Fatalf("writing doc: %v", err)
	}

	found, ok := FindRoot(doc)
	if !ok {
		t.Fatal("expected to find a project root")
	}
	wantRoot, _ := filepath.Abs(root)
	if found != wantRoot {
		t.Errorf("FindRoot = %q, want %q", found, wantRoot)
	}
}

func TestFindRootFromDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version = 1\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	found, ok := FindRoot(root)
	if !ok {
		t.Fatal("expected to find a project root")
	}
	wantRoot, _ := filepath.Abs(root)
	if found != wantRoot {
		t.Errorf("FindRoot = %q, want %q", found, wantRoot)
	}
}

func TestFindRootPrefersNearestAncestor(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "sub")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatalf("creating dirs: %v", err)
	}
	for _, dir := range []string{outer, inner} {
		if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version = 1\n"), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
	}
	doc := filepath.Join(inner, "note.md")
	if err := os.WriteFile(doc, nil, 0o644); err != nil {
		t.Fatalf("writing doc: %v", err)
	}

	found, ok := FindRoot(doc)
	if !ok {
		t.Fatal("expected to find a project root")
	}
	wantRoot, _ := filepath.Abs(inner)
	if found != wantRoot {
		t.Errorf("FindRoot = %q, want nearest root %q", found, wantRoot)
	}
}

func TestFindRootMissing(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "orphan.md")
	if err := os.WriteFile(doc, nil, 0o644); err != nil {
		t.Fatalf("writing doc: %v", err)
	}

	if _, ok := FindRoot(doc); ok {
		t.Error("expected no project root for a document without a config ancestor")
	}
}
