package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/withakay/spool-go/internal/tasks"
)

// ApplyState is the tagged high-level readiness of a change's
// implementation phase.
type ApplyState int

const (
	StateBlocked ApplyState = iota
	StateReady
	StateAllDone
)

func (s ApplyState) String() string {
	switch s {
	case StateBlocked:
		return "blocked"
	case StateAllDone:
		return "all_done"
	default:
		return "ready"
	}
}

// ApplyInstructionsResponse is the full computed apply-state payload.
type ApplyInstructionsResponse struct {
	ChangeName        string
	ChangeDir         string
	SchemaName        string
	TracksPath        string
	TracksFile        bool
	TracksFormat      string
	TracksDiagnostics []tasks.TaskDiagnostic
	State             ApplyState
	ContextFiles      map[string]string
	Progress          tasks.ProgressInfo
	Tasks             []tasks.TaskItem
	MissingArtifacts  []string
	Instruction       string
}

// ComputeApplyInstructions implements §4.6 "Apply state": it determines
// whether a change is blocked (missing artifacts, missing/empty tracking
// file), ready, or all done, and assembles the context files and task
// progress an agent needs to proceed.
func ComputeApplyInstructions(changeName string, resolved ResolvedSchema, changeDir string) (ApplyInstructionsResponse, error) {
	schema := resolved.Schema
	done := ComputeDoneByID(schema, changeDir)

	requiredIDs := allArtifactIDs(schema)
	schemaInstruction := ""
	tracksName := ""
	if schema.Apply != nil {
		if len(schema.Apply.Requires) > 0 {
			requiredIDs = schema.Apply.Requires
		}
		schemaInstruction = schema.Apply.Instruction
		tracksName = schema.Apply.Tracks
	}

	var missing []string
	for _, id := range requiredIDs {
		if !done[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)

	contextFiles := map[string]string{}
	for _, a := range schema.Artifacts {
		if done[a.ID] {
			contextFiles[a.ID] = a.Generates
		}
	}

	resp := ApplyInstructionsResponse{
		ChangeName:   changeName,
		ChangeDir:    changeDir,
		SchemaName:   schema.Name,
		ContextFiles: contextFiles,
		MissingArtifacts: missing,
	}

	if len(missing) > 0 {
		resp.State = StateBlocked
		resp.Instruction = fmt.Sprintf(
			"Cannot apply this change yet. Missing artifacts: %s\nUse the spool-continue-change skill to generate them first.",
			strings.Join(missing, ", "))
		return resp, nil
	}

	if tracksName == "" {
		resp.State = StateReady
		if schemaInstruction != "" {
			resp.Instruction = schemaInstruction
		} else {
			resp.Instruction = "All required artifacts complete. Proceed with implementation."
		}
		return resp, nil
	}

	tracksPath := filepath.Join(changeDir, tracksName)
	resp.TracksPath = tracksPath

	data, err := os.ReadFile(tracksPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return ApplyInstructionsResponse{}, fmt.Errorf("reading tracks file %s: %w", tracksPath, err)
		}
		resp.TracksFile = false
		resp.State = StateBlocked
		resp.Instruction = fmt.Sprintf("The %s file is missing and must be created before this change can be applied.", tracksName)
		return resp, nil
	}
	resp.TracksFile = true

	parsed := tasks.Parse(string(data))
	resp.TracksFormat = formatName(parsed.Format)
	resp.TracksDiagnostics = parsed.Diagnostics
	resp.Tasks = parsed.Tasks
	progress := tasks.ComputeProgress(parsed.Tasks)
	resp.Progress = progress

	switch {
	case progress.Total == 0:
		resp.State = StateBlocked
		resp.Instruction = fmt.Sprintf("The %s file contains no tasks.", tracksName)
	case progress.Remaining == 0:
		resp.State = StateAllDone
		resp.Instruction = "All tasks are complete! Consider archiving this change."
	default:
		resp.State = StateReady
		if schemaInstruction != "" {
			resp.Instruction = schemaInstruction
		} else {
			resp.Instruction = "Read context files, work through pending tasks in order, and update their status as you go."
		}
	}

	return resp, nil
}

func formatName(f tasks.TasksFormat) string {
	if f == tasks.FormatEnhanced {
		return "enhanced"
	}
	return "checkbox"
}
