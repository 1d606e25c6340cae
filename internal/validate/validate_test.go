package validate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateModule_ShortPurposeFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "module.md")
	os.WriteFile(path, []byte("## Purpose\n\ntoo short\n\n## Scope\n\nsome scope\n"), 0o644)

	issues := ValidateModule(path)
	if len(issues) == 0 {
		t.Fatal("expected issues for short purpose")
	}
}

func TestValidateModule_Passes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "module.md")
	content := "## Purpose\n\nThis module groups all widget-related work for the team.\n\n## Scope\n\nWidgets only.\n"
	os.WriteFile(path, []byte(content), 0o644)

	issues := ValidateModule(path)
	if computeValid(issues, false) != true {
		t.Fatalf("expected valid module, got issues: %+v", issues)
	}
}

func TestValidateSpec_RequiresRequirementAndScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.md")
	content := `## Purpose

Widgets must spin reliably under load for long periods of operation, every day.

## Requirements

### Requirement: Widgets SHALL spin

#### Scenario: Power applied

Widget spins.
`
	os.WriteFile(path, []byte(content), 0o644)
	issues := ValidateSpec(path)
	if !computeValid(issues, false) {
		t.Fatalf("expected valid spec, got issues: %+v", issues)
	}
}

func TestValidateSpec_MissingScenarioFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.md")
	content := `## Purpose

Widgets must spin reliably under load for long periods of operation, every day.

## Requirements

### Requirement: Widgets SHALL spin

no scenario here
`
	os.WriteFile(path, []byte(content), 0o644)
	issues := ValidateSpec(path)
	if computeValid(issues, false) {
		t.Fatal("expected invalid spec due to missing scenario")
	}
}

func TestDuplicateChangeIDs(t *testing.T) {
	issues := DuplicateChangeIDs("", []string{"001-01_a", "001-1_b"})
	if len(issues) != 1 {
		t.Fatalf("expected 1 duplicate issue, got %d: %+v", len(issues), issues)
	}
}

func TestStrictMode_UpgradesWarnings(t *testing.T) {
	issues := []Issue{{Level: LevelWarning, Message: "short purpose"}}
	if !computeValid(issues, false) {
		t.Fatal("expected valid in non-strict mode")
	}
	if computeValid(issues, true) {
		t.Fatal("expected invalid in strict mode")
	}
}
