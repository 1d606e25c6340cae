package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListModules_CountsActiveChanges(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "modules", "006_widgets"))
	mustWrite(t, filepath.Join(dir, "modules", "006_widgets", "module.md"), "# Widgets\n")

	mustMkdir(t, filepath.Join(dir, "changes", "006-01_a"))
	mustWrite(t, filepath.Join(dir, "changes", "006-01_a", "proposal.md"), "x")
	mustMkdir(t, filepath.Join(dir, "changes", "006-02_b"))

	modules, err := ListModules(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
	if modules[0].ActiveChanges != 1 {
		t.Fatalf("expected 1 active change (has proposal.md), got %d", modules[0].ActiveChanges)
	}
}

func TestListChanges_ExcludesArchive(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "changes", "001-01_a"))
	mustMkdir(t, filepath.Join(dir, "changes", "archive"))

	changes, err := ListChanges(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
}

func TestResolveChange_ExactMatchWinsOverParsed(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "changes", "001-01_a"))

	c, err := ResolveChange(dir, "001-01_a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DirName != "001-01_a" {
		t.Fatalf("expected exact match, got %q", c.DirName)
	}
}

func TestResolveChange_FlexibleNumericMatch(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "changes", "001-01_a"))

	c, err := ResolveChange(dir, "1-1_a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DirName != "001-01_a" {
		t.Fatalf("expected flexible resolution to find 001-01_a, got %q", c.DirName)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
