// Package tasks implements the tasks engine: format detection, the
// enhanced/checkbox parsers, relational integrity validation, progress and
// ready/blocked computation, and status mutation.
//
// Grounded on spool-domain/src/tasks/{parse,relational,compute}.rs.
package tasks

// TaskStatus is the tagged status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusInProgress
	StatusComplete
	StatusShelved
)

func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in-progress"
	case StatusComplete:
		return "complete"
	case StatusShelved:
		return "shelved"
	default:
		return "unknown"
	}
}

// IsDone reports whether a task in this status counts as finished for
// wave-completeness purposes (complete or shelved both unblock a wave).
func (s TaskStatus) IsDone() bool {
	return s == StatusComplete || s == StatusShelved
}

// EnhancedLabel returns the label used in "- **Status**: [x] <label>" text.
func (s TaskStatus) EnhancedLabel() string {
	return s.String()
}

// StatusFromEnhancedLabel parses the label half of a Status bullet.
func StatusFromEnhancedLabel(label string) (TaskStatus, bool) {
	switch label {
	case "pending":
		return StatusPending, true
	case "in-progress":
		return StatusInProgress, true
	case "complete":
		return StatusComplete, true
	case "shelved":
		return StatusShelved, true
	default:
		return 0, false
	}
}

// MarkerForStatus returns the canonical bracket marker for a status.
func MarkerForStatus(s TaskStatus) string {
	switch s {
	case StatusComplete:
		return "x"
	case StatusShelved:
		return "-"
	default:
		return " "
	}
}

// StatusFromMarker maps a checkbox/status bracket marker rune to a status.
// Used by both the checkbox parser and the enhanced marker-consistency
// check.
func StatusFromMarker(marker byte) (TaskStatus, bool) {
	switch marker {
	case 'x', 'X':
		return StatusComplete, true
	case ' ':
		return StatusPending, true
	case '~', '>':
		return StatusInProgress, true
	case 's', 'S', '-':
		return StatusShelved, true
	default:
		return 0, false
	}
}

// TasksFormat is the detected document shape.
type TasksFormat int

const (
	FormatCheckbox TasksFormat = iota
	FormatEnhanced
)

// TaskKind distinguishes ordinary tasks from checkpoint tasks declared
// under "## Checkpoints".
type TaskKind int

const (
	KindNormal TaskKind = iota
	KindCheckpoint
)

// DiagnosticLevel is the severity of a TaskDiagnostic.
type DiagnosticLevel int

const (
	LevelError DiagnosticLevel = iota
	LevelWarning
)

func (l DiagnosticLevel) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// TaskDiagnostic is one relational or parse-level finding.
type TaskDiagnostic struct {
	Level   DiagnosticLevel
	Message string
	TaskID  string // optional
	Line    int    // optional, 0 if unknown
}

// TaskItem is a single parsed task, enhanced or checkbox.
type TaskItem struct {
	ID              string
	Name            string
	Wave            int  // 0 if none (checkbox or checkpoint-like)
	HasWave         bool
	Status          TaskStatus
	UpdatedAt       string
	Dependencies    []string
	Files           []string
	Action          string
	Verify          string
	DoneWhen        string
	Kind            TaskKind
	HeaderLineIndex int
}

// WaveInfo is a parsed "## Wave N" block.
type WaveInfo struct {
	Wave              int
	DependsOn         []int
	HeaderLineIndex   int
	DependsOnLineIndex int
	HasDependsOnLine  bool
}

// ProgressInfo summarizes task completion counts.
type ProgressInfo struct {
	Total      int
	Complete   int
	Shelved    int
	InProgress int
	Pending    int
	Remaining  int
}

// ComputeProgress derives a ProgressInfo from a task list.
func ComputeProgress(items []TaskItem) ProgressInfo {
	p := ProgressInfo{Total: len(items)}
	for _, t := range items {
		switch t.Status {
		case StatusComplete:
			p.Complete++
		case StatusShelved:
			p.Shelved++
		case StatusInProgress:
			p.InProgress++
		case StatusPending:
			p.Pending++
		}
	}
	p.Remaining = p.Total - p.Complete - p.Shelved
	return p
}

// TasksParseResult is the full output of parsing a tasks.md file.
type TasksParseResult struct {
	Format      TasksFormat
	Tasks       []TaskItem
	Waves       []WaveInfo
	Diagnostics []TaskDiagnostic
}
