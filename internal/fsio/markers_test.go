package fsio

import (
	"path/filepath"
	"strings"
	"testing"
)

const (
	testStart = "<!-- SPOOL:START -->"
	testEnd   = "<!-- SPOOL:END -->"
)

func TestMarkerMustBeOnOwnLine(t *testing.T) {
	content := "prefix " + testStart + " suffix\n" + testEnd + "\n"
	_, err := UpdateContentWithMarkers(content, testStart, testEnd, "new", "f.md")
	if err == nil {
		t.Fatal("expected error because start marker is not on its own line")
	}
}

func TestReplacesExistingBlockPreservingUnmanagedContent(t *testing.T) {
	content := "before\n" + testStart + "\nold block\n" + testEnd + "\nafter\n"
	got, err := UpdateContentWithMarkers(content, testStart, testEnd, "new block", "f.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "before\n") || !strings.Contains(got, "after\n") {
		t.Fatalf("unmanaged content not preserved: %q", got)
	}
	if strings.Contains(got, "old block") {
		t.Fatalf("old block should be replaced: %q", got)
	}
	if !strings.Contains(got, "new block") {
		t.Fatalf("new block missing: %q", got)
	}
}

func TestInsertsBlockWhenMissing(t *testing.T) {
	content := "existing content\n"
	got, err := UpdateContentWithMarkers(content, testStart, testEnd, "new block", "f.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, testStart) {
		t.Fatalf("expected new block prepended, got: %q", got)
	}
	if !strings.Contains(got, "existing content") {
		t.Fatalf("expected existing content preserved, got: %q", got)
	}
}

func TestErrorsWhenOnlyOneMarkerFound(t *testing.T) {
	content := testStart + "\nno end marker here\n"
	_, err := UpdateContentWithMarkers(content, testStart, testEnd, "new", "f.md")
	if err == nil {
		t.Fatal("expected error for missing end marker")
	}
	me, ok := err.(*MarkerError)
	if !ok {
		t.Fatalf("expected *MarkerError, got %T", err)
	}
	if !me.FoundStart || me.FoundEnd {
		t.Fatalf("unexpected marker error state: %+v", me)
	}
}

func TestUpdatesFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")

	if err := UpdateFileWithMarkers(path, testStart, testEnd, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok, err := ReadOptional(path)
	if err != nil || !ok {
		t.Fatalf("expected file to exist: err=%v ok=%v", err, ok)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected content written, got: %q", data)
	}
}

func TestIdempotentWhenApplyingSameContentTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")

	if err := UpdateFileWithMarkers(path, testStart, testEnd, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _, err := ReadOptional(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := UpdateFileWithMarkers(path, testStart, testEnd, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := ReadOptional(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected idempotent output:\nfirst:  %q\nsecond: %q", first, second)
	}
}
