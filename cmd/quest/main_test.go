package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "quest.yml")
	if err := os.WriteFile(manifest, []byte("name: demo\nentry: main.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := findManifest(nested)
	if err != nil {
		t.Fatalf("findManifest: %v", err)
	}
	if found != manifest {
		t.Fatalf("expected %s, got %s", manifest, found)
	}
}

func TestFindManifestMissing(t *testing.T) {
	_, err := findManifest(t.TempDir())
	if !errors.Is(err, errManifestNotFound) {
		t.Fatalf("expected errManifestNotFound, got %v", err)
	}
}

func TestIsModuleDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "prog.json")
	if err := os.WriteFile(doc, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !isModuleDocument(doc) {
		t.Fatalf("existing .json file should be a module document")
	}
	if isModuleDocument(filepath.Join(dir, "missing.yaml")) {
		t.Fatalf("missing file is not a module document")
	}
	if isModuleDocument(dir) {
		t.Fatalf("a directory is not a module document")
	}
	if isModuleDocument(filepath.Join(dir, "prog.txt")) {
		t.Fatalf("unknown extension is not a module document")
	}
}
