package workflow

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleSchema() SchemaYaml {
	return SchemaYaml{
		Name: "spec-driven",
		Artifacts: []ArtifactYaml{
			{ID: "proposal", Generates: "proposal.md", Template: "proposal.md.tmpl"},
			{ID: "design", Generates: "design.md", Template: "design.md.tmpl", Requires: []string{"proposal"}},
			{ID: "specs", Generates: "specs/**/*.md", Template: "spec.md.tmpl", Requires: []string{"proposal"}},
			{ID: "tasks", Generates: "tasks.md", Template: "tasks.md.tmpl", Requires: []string{"design", "specs"}},
		},
		Apply: &ApplyYaml{
			Tracks: "tasks.md",
		},
	}
}

func TestBuildOrder_Deterministic(t *testing.T) {
	schema := sampleSchema()
	order, err := BuildOrder(schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"proposal", "design", "specs", "tasks"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestArtifactDone_ExactAndGlob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "proposal.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !ArtifactDone(dir, "proposal.md") {
		t.Fatal("expected proposal.md to be done")
	}
	if ArtifactDone(dir, "design.md") {
		t.Fatal("expected design.md to be missing")
	}

	specsDir := filepath.Join(dir, "specs", "001-widgets")
	if err := os.MkdirAll(specsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(specsDir, "spec.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !ArtifactDone(dir, "specs/**/*.md") {
		t.Fatal("expected glob match to find specs/*/spec.md")
	}
}

func TestComputeChangeStatus(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "proposal.md"), []byte("x"), 0o644)

	status, err := ComputeChangeStatus("001-01_test", "spec-driven", sampleSchema(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.IsComplete {
		t.Fatal("expected incomplete status")
	}
	byID := map[string]ArtifactStatus{}
	for _, a := range status.Artifacts {
		byID[a.ID] = a
	}
	if byID["proposal"].Status != "done" {
		t.Fatalf("expected proposal done, got %+v", byID["proposal"])
	}
	if byID["design"].Status != "ready" {
		t.Fatalf("expected design ready, got %+v", byID["design"])
	}
	if byID["tasks"].Status != "blocked" {
		t.Fatalf("expected tasks blocked, got %+v", byID["tasks"])
	}
}

func TestComputeApplyInstructions_Blocked(t *testing.T) {
	dir := t.TempDir()
	schema := sampleSchema()
	schema.Apply.Requires = []string{"proposal", "tasks"}

	resolved := ResolvedSchema{Schema: schema, SchemaDir: dir}
	resp, err := ComputeApplyInstructions("001-01_test", resolved, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.State != StateBlocked {
		t.Fatalf("expected blocked state, got %v", resp.State)
	}
	if len(resp.MissingArtifacts) != 2 || resp.MissingArtifacts[0] != "proposal" {
		t.Fatalf("expected missing [proposal tasks], got %v", resp.MissingArtifacts)
	}
	if resp.Instruction == "" || resp.Instruction[:len("Cannot apply this change yet")] != "Cannot apply this change yet" {
		t.Fatalf("expected blocked instruction prefix, got %q", resp.Instruction)
	}
}

func TestComputeApplyInstructions_AllDone(t *testing.T) {
	dir := t.TempDir()
	schema := sampleSchema()
	for _, f := range []string{"proposal.md", "design.md"} {
		os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644)
	}
	os.MkdirAll(filepath.Join(dir, "specs", "001-widgets"), 0o755)
	os.WriteFile(filepath.Join(dir, "specs", "001-widgets", "spec.md"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "tasks.md"), []byte("- [x] one\n- [x] two\n"), 0o644)

	resolved := ResolvedSchema{Schema: schema, SchemaDir: dir}
	resp, err := ComputeApplyInstructions("001-01_test", resolved, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.State != StateAllDone {
		t.Fatalf("expected all_done state, got %v", resp.State)
	}
	if resp.Progress.Total != 2 || resp.Progress.Complete != 2 || resp.Progress.Remaining != 0 {
		t.Fatalf("unexpected progress: %+v", resp.Progress)
	}
}
