// Package catalog lists and summarizes the entity types (modules, changes,
// specs) and resolves flexible identifiers against on-disk directories.
//
// Generalized from the teacher's internal/feature package's directory
// listing and phase-by-position logic, extended to the three-entity model
// and the flexible change-ID resolution rule of spec.md §4.1.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/withakay/spool-go/internal/docsec"
	"github.com/withakay/spool-go/internal/fsio"
	"github.com/withakay/spool-go/internal/ids"
	"github.com/withakay/spool-go/internal/tasks"
)

// Module is a listed module entry.
type Module struct {
	Number       string
	Slug         string
	DirName      string
	Path         string
	ActiveChanges int
}

var moduleDirRe = regexp.MustCompile(`^(\d{3})_(.+)$`)

// ListModules enumerates modules/<NNN>_<name>/ directories that contain a
// module.md, and counts active (non-archived) changes bound to each.
func ListModules(spoolDir string) ([]Module, error) {
	modulesDir := filepath.Join(spoolDir, "modules")
	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading modules dir: %w", err)
	}

	changesDir := filepath.Join(spoolDir, "changes")
	changeEntries, _ := os.ReadDir(changesDir)

	var modules []Module
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := moduleDirRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		moduleMd := filepath.Join(modulesDir, e.Name(), "module.md")
		if !fsio.Exists(moduleMd) {
			continue
		}

		active := 0
		prefix := m[1] + "-"
		for _, ce := range changeEntries {
			if !ce.IsDir() || ce.Name() == "archive" || !strings.HasPrefix(ce.Name(), prefix) {
				continue
			}
			if fsio.Exists(filepath.Join(changesDir, ce.Name(), "proposal.md")) {
				active++
			}
		}

		modules = append(modules, Module{
			Number:        m[1],
			Slug:          m[2],
			DirName:       e.Name(),
			Path:          filepath.Join(modulesDir, e.Name()),
			ActiveChanges: active,
		})
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Number < modules[j].Number })
	return modules, nil
}

// Change is a listed change entry.
type Change struct {
	ID           ids.ChangeID
	DirName      string
	Path         string
	TaskCount    int
	LastModified time.Time
}

// HumanLastModified renders LastModified as a human-friendly relative
// duration, e.g. "3 days ago".
func (c Change) HumanLastModified() string {
	if c.LastModified.IsZero() {
		return "never"
	}
	return humanize.Time(c.LastModified)
}

// ListChanges enumerates changes/<id>/ directories, excluding the archive
// subdirectory, counting checkbox tasks in each change's tasks.md (if any)
// and recording the recursive last-modified time.
func ListChanges(spoolDir string) ([]Change, error) {
	changesDir := filepath.Join(spoolDir, "changes")
	entries, err := os.ReadDir(changesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading changes dir: %w", err)
	}

	var changes []Change
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "archive" {
			continue
		}
		id, err := ids.ParseChangeID(e.Name())
		if err != nil {
			continue
		}
		dirPath := filepath.Join(changesDir, e.Name())

		taskCount := 0
		if data, ok, _ := fsio.ReadOptional(filepath.Join(dirPath, "tasks.md")); ok {
			taskCount = len(tasks.Parse(string(data)).Tasks)
		}

		lastMod, _ := fsio.RecursiveLastModified(dirPath)

		changes = append(changes, Change{
			ID:           id,
			DirName:      e.Name(),
			Path:         dirPath,
			TaskCount:    taskCount,
			LastModified: lastMod,
		})
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].ID.ModuleInt() != changes[j].ID.ModuleInt() {
			return changes[i].ID.ModuleInt() < changes[j].ID.ModuleInt()
		}
		return changes[i].ID.ChangeInt() < changes[j].ID.ChangeInt()
	})
	return changes, nil
}

// Spec is a listed spec entry.
type Spec struct {
	ID               string
	Path             string
	RequirementCount int
}

// ListSpecs enumerates specs/<id>/spec.md files that declare both a
// Purpose and a Requirements section, and counts their requirements.
func ListSpecs(specsDir string) ([]Spec, error) {
	entries, err := os.ReadDir(specsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading specs dir: %w", err)
	}

	var specs []Spec
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		specPath := filepath.Join(specsDir, e.Name(), "spec.md")
		data, ok, err := fsio.ReadOptional(specPath)
		if err != nil || !ok {
			continue
		}
		doc := docsec.Parse(string(data))
		if !doc.HasSection("Purpose") || !doc.HasSection("Requirements") {
			continue
		}
		specs = append(specs, Spec{
			ID:               e.Name(),
			Path:             specPath,
			RequirementCount: len(doc.Requirements()),
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs, nil
}

// ResolveChange implements the flexible change-ID resolution rule: an
// exact directory-name match takes precedence over a parsed (module,
// change-number) match against every on-disk change directory.
func ResolveChange(spoolDir, input string) (Change, error) {
	changesDir := filepath.Join(spoolDir, "changes")

	if fsio.Exists(filepath.Join(changesDir, input)) {
		changes, err := ListChanges(spoolDir)
		if err != nil {
			return Change{}, err
		}
		for _, c := range changes {
			if c.DirName == input {
				return c, nil
			}
		}
	}

	parsed, err := ids.ParseChangeID(input)
	if err != nil {
		return Change{}, fmt.Errorf("change %q not found: %w", input, err)
	}

	changes, err := ListChanges(spoolDir)
	if err != nil {
		return Change{}, err
	}
	for _, c := range changes {
		if c.ID.ModuleInt() == parsed.ModuleInt() && c.ID.ChangeInt() == parsed.ChangeInt() {
			return c, nil
		}
	}
	return Change{}, fmt.Errorf("change %q not found", input)
}
