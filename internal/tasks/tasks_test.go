package tasks

import (
	"strings"
	"testing"
	"time"
)

const enhancedSample = `# Tasks

## Wave 1
- **Depends On**: None

### Task 1.1: First task
- **Files**: ` + "`a.go`" + `
- **Dependencies**: None
- **Action**: do the thing
- **Verify**: it works
- **Done When**: tests pass
- **Updated At**: 2026-01-01
- **Status**: [x] complete

### Task 1.2: Second task
- **Dependencies**: None
- **Updated At**: 2026-01-01
- **Status**: [ ] pending

## Wave 2
- **Depends On**: Wave 1

### Task 2.1: Third task
- **Dependencies**: None
- **Updated At**: 2026-01-01
- **Status**: [ ] pending
`

func TestDetectFormat_Enhanced(t *testing.T) {
	if DetectFormat(enhancedSample) != FormatEnhanced {
		t.Fatal("expected enhanced format")
	}
}

func TestDetectFormat_Checkbox(t *testing.T) {
	content := "- [ ] one\n- [x] two\n"
	if DetectFormat(content) != FormatCheckbox {
		t.Fatal("expected checkbox format")
	}
}

func TestParseCheckbox(t *testing.T) {
	content := "- [ ] one\n- [x] two\n- [~] three\n"
	result := parseCheckbox(content)
	if len(result.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(result.Tasks))
	}
	if result.Tasks[0].Status != StatusPending || result.Tasks[1].Status != StatusComplete || result.Tasks[2].Status != StatusInProgress {
		t.Fatalf("unexpected statuses: %+v", result.Tasks)
	}
}

func TestParseEnhanced_WavesAndTasks(t *testing.T) {
	result := parseEnhanced(enhancedSample)
	if len(result.Waves) != 2 {
		t.Fatalf("expected 2 waves, got %d", len(result.Waves))
	}
	if len(result.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(result.Tasks))
	}
	if result.Tasks[0].Status != StatusComplete {
		t.Fatalf("expected task 1.1 complete, got %v", result.Tasks[0].Status)
	}
	if len(result.Waves[1].DependsOn) != 1 || result.Waves[1].DependsOn[0] != 1 {
		t.Fatalf("expected wave 2 to depend on wave 1, got %+v", result.Waves[1])
	}
}

func TestComputeReadyBlocked_Enhanced(t *testing.T) {
	result := parseEnhanced(enhancedSample)
	ready, blocked := ComputeReadyBlocked(result)

	if len(ready) != 1 || ready[0].ID != "1.2" {
		t.Fatalf("expected [1.2] ready, got %+v", ready)
	}
	if len(blocked) != 1 || blocked[0].Task.ID != "2.1" {
		t.Fatalf("expected 2.1 blocked, got %+v", blocked)
	}
	found := false
	for _, b := range blocked[0].Blockers {
		if b == "Blocked by Wave 1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'Blocked by Wave 1' blocker, got %+v", blocked[0].Blockers)
	}
}

func TestValidate_ShelvedDependency(t *testing.T) {
	content := `## Wave 1
- **Depends On**: None

### Task 1.1: shelved task
- **Dependencies**: None
- **Updated At**: 2026-01-01
- **Status**: [-] shelved

### Task 1.2: depends on shelved
- **Dependencies**: 1.1
- **Updated At**: 2026-01-01
- **Status**: [ ] pending
`
	result := parseEnhanced(content)
	diags, err := Validate(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "shelved") && d.TaskID == "1.2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected shelved-dependency diagnostic, got %+v", diags)
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	content := `## Wave 1
- **Depends On**: None

### Task 1.1: a
- **Dependencies**: 1.2
- **Updated At**: 2026-01-01
- **Status**: [ ] pending

### Task 1.2: b
- **Dependencies**: 1.1
- **Updated At**: 2026-01-01
- **Status**: [ ] pending
`
	result := parseEnhanced(content)
	diags, err := Validate(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "cycle") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cycle diagnostic, got %+v", diags)
	}
}

func TestSetStatus(t *testing.T) {
	today := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	got, err := SetStatus(enhancedSample, "1.2", StatusComplete, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "- **Status**: [x] complete") {
		t.Fatalf("expected rewritten status bullet, got:\n%s", got)
	}
	if !strings.Contains(got, "- **Updated At**: 2026-07-30") {
		t.Fatalf("expected rewritten Updated At, got:\n%s", got)
	}

	reparsed := parseEnhanced(got)
	for _, task := range reparsed.Tasks {
		if task.ID == "1.2" && task.Status != StatusComplete {
			t.Fatalf("expected task 1.2 complete after mutation, got %v", task.Status)
		}
	}
}
