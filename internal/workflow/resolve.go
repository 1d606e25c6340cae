package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BuildOrder computes a deterministic topological sort of a schema's
// artifacts using Kahn's algorithm: roots are taken in sorted-ID order,
// and each batch of newly-ready nodes is sorted by ID before being
// appended to the queue. The result is a stable total order consistent
// with the "requires" DAG.
func BuildOrder(schema SchemaYaml) ([]string, error) {
	inDegree := map[string]int{}
	dependents := map[string][]string{}
	ids := make([]string, 0, len(schema.Artifacts))

	for _, a := range schema.Artifacts {
		ids = append(ids, a.ID)
		if _, ok := inDegree[a.ID]; !ok {
			inDegree[a.ID] = 0
		}
	}
	for _, a := range schema.Artifacts {
		for _, dep := range a.Requires {
			inDegree[a.ID]++
			dependents[dep] = append(dependents[dep], a.ID)
		}
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newlyReady []string
		deps := append([]string{}, dependents[node]...)
		sort.Strings(deps)
		for _, next := range deps {
			inDegree[next]--
			if inDegree[next] == 0 {
				newlyReady = append(newlyReady, next)
			}
		}
		sort.Strings(newlyReady)
		queue = append(queue, newlyReady...)
	}

	if len(order) != len(ids) {
		return nil, fmt.Errorf("artifact graph has a cycle")
	}
	return order, nil
}

// ArtifactDone checks whether an artifact's "generates" pattern is
// satisfied under changeDir: exact paths are checked for existence; glob
// patterns ("dir/**/*.ext", "dir/*.suffix", "**/*.ext") are resolved to a
// base directory and a filename suffix, then matched recursively.
func ArtifactDone(changeDir, generates string) bool {
	if !strings.Contains(generates, "*") {
		_, err := os.Stat(filepath.Join(changeDir, generates))
		return err == nil
	}
	dir, suffix, ok := splitGlobPattern(generates)
	if !ok {
		return false
	}
	searchDir := filepath.Join(changeDir, dir)
	return dirContainsFilenameSuffix(searchDir, suffix)
}

// splitGlobPattern splits a "dir/**/*.ext", "dir/*.suffix" or "**/*.ext"
// pattern into a base directory (relative to the change dir, "" for the
// change dir root) and a filename suffix to match.
func splitGlobPattern(pattern string) (dir string, suffix string, ok bool) {
	p := strings.TrimPrefix(pattern, "./")

	idx := strings.LastIndex(p, "/")
	var dirPart, filePart string
	if idx < 0 {
		dirPart = ""
		filePart = p
	} else {
		dirPart = p[:idx]
		filePart = p[idx+1:]
	}

	if !strings.HasPrefix(filePart, "*") {
		return "", "", false
	}
	suffix = strings.TrimPrefix(filePart, "*")

	dirPart = strings.TrimSuffix(dirPart, "/**")
	dirPart = strings.TrimSuffix(dirPart, "**")
	if strings.Contains(dirPart, "*") {
		dirPart = ""
	}
	return dirPart, suffix, true
}

// dirContainsFilenameSuffix recursively walks dir and reports whether any
// regular file's name ends with suffix.
func dirContainsFilenameSuffix(dir, suffix string) bool {
	found := false
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			found = true
		}
		return nil
	})
	return found
}

// ArtifactStatus is the computed done/missing state of one artifact.
type ArtifactStatus struct {
	ID          string
	OutputPath  string
	Status      string // "done" | "ready" | "blocked"
	MissingDeps []string
}

// ChangeStatus is the computed status of every artifact in a change.
type ChangeStatus struct {
	ChangeName    string
	SchemaName    string
	IsComplete    bool
	ApplyRequires []string
	Artifacts     []ArtifactStatus
}

// ComputeDoneByID computes a done/not-done map for every artifact in the
// schema.
func ComputeDoneByID(schema SchemaYaml, changeDir string) map[string]bool {
	done := map[string]bool{}
	for _, a := range schema.Artifacts {
		done[a.ID] = ArtifactDone(changeDir, a.Generates)
	}
	return done
}

// ComputeChangeStatus walks the build order and reports, for each
// artifact, whether it is done, ready (all its dependencies are done) or
// blocked (listing the missing dependencies).
func ComputeChangeStatus(changeName, schemaName string, schema SchemaYaml, changeDir string) (ChangeStatus, error) {
	order, err := BuildOrder(schema)
	if err != nil {
		return ChangeStatus{}, err
	}

	done := ComputeDoneByID(schema, changeDir)

	applyRequires := allArtifactIDs(schema)
	if schema.Apply != nil && len(schema.Apply.Requires) > 0 {
		applyRequires = schema.Apply.Requires
	}

	var statuses []ArtifactStatus
	allDone := true
	for _, id := range order {
		artifact, _ := schema.ArtifactByID(id)
		var missing []string
		for _, dep := range artifact.Requires {
			if !done[dep] {
				missing = append(missing, dep)
			}
		}

		status := "blocked"
		switch {
		case done[id]:
			status = "done"
		case len(missing) == 0:
			status = "ready"
		}
		if status != "done" {
			allDone = false
		}

		statuses = append(statuses, ArtifactStatus{
			ID:          id,
			OutputPath:  artifact.Generates,
			Status:      status,
			MissingDeps: missing,
		})
	}

	return ChangeStatus{
		ChangeName:    changeName,
		SchemaName:    schemaName,
		IsComplete:    allDone,
		ApplyRequires: applyRequires,
		Artifacts:     statuses,
	}, nil
}

func allArtifactIDs(schema SchemaYaml) []string {
	ids := make([]string, 0, len(schema.Artifacts))
	for _, a := range schema.Artifacts {
		ids = append(ids, a.ID)
	}
	return ids
}

// DependencyInfo is one dependency entry returned alongside per-artifact
// instructions.
type DependencyInfo struct {
	ID          string
	Done        bool
	Path        string
	Description string
}

// InstructionsResponse is the full per-artifact instruction payload.
type InstructionsResponse struct {
	ChangeName   string
	ArtifactID   string
	SchemaName   string
	ChangeDir    string
	OutputPath   string
	Description  string
	Instruction  string
	Template     string
	Dependencies []DependencyInfo
	Unlocks      []string
}

// ResolveInstructions assembles the instruction payload for a single
// artifact: its dependency list (each annotated done/path/description),
// the artifacts it unlocks (those whose requires includes it), its
// instruction text, and the raw template contents.
func ResolveInstructions(changeName string, resolved ResolvedSchema, changeDir, artifactID string) (InstructionsResponse, error) {
	schema := resolved.Schema
	artifact, ok := schema.ArtifactByID(artifactID)
	if !ok {
		return InstructionsResponse{}, fmt.Errorf("unknown artifact %q in schema %q", artifactID, schema.Name)
	}

	done := ComputeDoneByID(schema, changeDir)

	var deps []DependencyInfo
	for _, depID := range artifact.Requires {
		depArtifact, _ := schema.ArtifactByID(depID)
		deps = append(deps, DependencyInfo{
			ID:          depID,
			Done:        done[depID],
			Path:        depArtifact.Generates,
			Description: depArtifact.Description,
		})
	}

	var unlocks []string
	for _, a := range schema.Artifacts {
		for _, req := range a.Requires {
			if req == artifactID {
				unlocks = append(unlocks, a.ID)
			}
		}
	}
	sort.Strings(unlocks)

	templateText := ""
	if artifact.Template != "" {
		data, err := os.ReadFile(filepath.Join(resolved.SchemaDir, "templates", artifact.Template))
		if err == nil {
			templateText = string(data)
		}
	}

	return InstructionsResponse{
		ChangeName:   changeName,
		ArtifactID:   artifactID,
		SchemaName:   schema.Name,
		ChangeDir:    changeDir,
		OutputPath:   artifact.Generates,
		Description:  artifact.Description,
		Instruction:  artifact.Instruction,
		Template:     templateText,
		Dependencies: deps,
		Unlocks:      unlocks,
	}, nil
}
