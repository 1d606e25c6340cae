// Package validate implements the cross-entity invariant checks of
// component H: duplicate IDs, dangling module references, and the
// structural rules for modules, changes and specs.
//
// Grounded on the teacher's document.Validate() (required-section
// presence producing a structured error) generalized to the multi-entity
// rule set of spec.md §4.8.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/withakay/spool-go/internal/docsec"
	"github.com/withakay/spool-go/internal/fsio"
	"github.com/withakay/spool-go/internal/ids"
)

// Level is the severity of an Issue.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "info"
	}
}

// Issue is a single validation finding.
type Issue struct {
	Level   Level
	Path    string
	Message string
	Line    int
}

// Report is the per-entity validation result.
type Report struct {
	ID     string
	Type   string // "module" | "change" | "spec"
	Valid  bool
	Issues []Issue
}

// computeValid implements §4.8's strict-mode rule: a report is valid when
// there are no errors and, in strict mode, no warnings either.
func computeValid(issues []Issue, strict bool) bool {
	for _, i := range issues {
		if i.Level == LevelError {
			return false
		}
		if strict && i.Level == LevelWarning {
			return false
		}
	}
	return true
}

// ValidateModule checks a module.md for a sufficiently long Purpose and a
// non-empty Scope section.
func ValidateModule(path string) []Issue {
	var issues []Issue
	data, ok, err := fsio.ReadOptional(path)
	if err != nil || !ok {
		return []Issue{{Level: LevelError, Path: path, Message: "module.md not found"}}
	}
	doc := docsec.Parse(string(data))

	purpose, hasPurpose := doc.GetSection("Purpose")
	if !hasPurpose || len(strings.TrimSpace(purpose.Body)) < 20 {
		issues = append(issues, Issue{Level: LevelError, Path: path, Message: "Purpose must be at least 20 characters"})
	}
	scope, hasScope := doc.GetSection("Scope")
	if !hasScope || strings.TrimSpace(scope.Body) == "" {
		issues = append(issues, Issue{Level: LevelError, Path: path, Message: "Scope section must be present and non-empty"})
	}
	return issues
}

var shallMustRe = regexp.MustCompile(`(?i)\b(SHALL|MUST)\b`)

// ValidateSpec checks a spec.md for a Purpose, at least one requirement
// with non-empty text and at least one scenario.
func ValidateSpec(path string) []Issue {
	var issues []Issue
	data, ok, err := fsio.ReadOptional(path)
	if err != nil || !ok {
		return []Issue{{Level: LevelError, Path: path, Message: "spec.md not found"}}
	}
	doc := docsec.Parse(string(data))

	purpose, hasPurpose := doc.GetSection("Purpose")
	trimmedPurpose := strings.TrimSpace(purpose.Body)
	if !hasPurpose || trimmedPurpose == "" {
		issues = append(issues, Issue{Level: LevelError, Path: path, Message: "Purpose section must be present and non-empty"})
	} else if len(trimmedPurpose) < 50 {
		issues = append(issues, Issue{Level: LevelWarning, Path: path, Message: "Purpose is shorter than 50 characters"})
	}

	reqs := doc.Requirements()
	if len(reqs) == 0 {
		issues = append(issues, Issue{Level: LevelError, Path: path, Message: "at least one requirement is required"})
		return issues
	}
	for _, r := range reqs {
		if strings.TrimSpace(r.Body) == "" && len(r.Scenarios) == 0 {
			issues = append(issues, Issue{Level: LevelError, Path: path, Message: fmt.Sprintf("requirement %q has no text", r.Title), Line: r.Line})
		}
		if len(r.Scenarios) == 0 {
			issues = append(issues, Issue{Level: LevelError, Path: path, Message: fmt.Sprintf("requirement %q has no scenarios", r.Title), Line: r.Line})
		}
	}
	return issues
}

// ValidateChangeDirName checks that a change directory name parses as a
// canonical change ID.
func ValidateChangeDirName(dirName string) (ids.ChangeID, []Issue) {
	parsed, err := ids.ParseChangeID(dirName)
	if err != nil {
		return ids.ChangeID{}, []Issue{{Level: LevelError, Path: dirName, Message: err.Error()}}
	}
	return parsed, nil
}

// ValidateChangeModuleExists checks that a change's module number exists
// under modules/.
func ValidateChangeModuleExists(spoolDir string, parsed ids.ChangeID) []Issue {
	entries, err := os.ReadDir(filepath.Join(spoolDir, "modules"))
	if err != nil {
		return []Issue{{Level: LevelError, Message: fmt.Sprintf("module %s referenced but modules/ does not exist", parsed.ModuleNum)}}
	}
	prefix := parsed.ModuleNum + "_"
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			return nil
		}
	}
	return []Issue{{Level: LevelError, Message: fmt.Sprintf("module %s referenced by change does not exist", parsed.ModuleNum)}}
}

// ValidateChangeDeltas checks that a change has at least one spec delta
// and that each delta has a non-empty description, SHALL/MUST language,
// and at least one scenario.
func ValidateChangeDeltas(changeDir string) []Issue {
	var issues []Issue
	specsDir := filepath.Join(changeDir, "specs")
	entries, err := os.ReadDir(specsDir)
	if err != nil || len(entries) == 0 {
		return []Issue{{Level: LevelError, Path: changeDir, Message: "change must declare at least one spec delta"}}
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		specPath := filepath.Join(specsDir, e.Name(), "spec.md")
		data, ok, err := fsio.ReadOptional(specPath)
		if err != nil || !ok {
			issues = append(issues, Issue{Level: LevelError, Path: specPath, Message: "delta spec.md not found"})
			continue
		}
		doc := docsec.Parse(string(data))
		purpose, _ := doc.GetSection("Purpose")
		if strings.TrimSpace(purpose.Body) == "" {
			issues = append(issues, Issue{Level: LevelError, Path: specPath, Message: "delta must have a non-empty description"})
		}
		reqs := doc.Requirements()
		foundShallMust := false
		foundScenario := false
		for _, r := range reqs {
			if shallMustRe.MatchString(r.Body) {
				foundShallMust = true
			}
			if len(r.Scenarios) > 0 {
				foundScenario = true
			}
		}
		if !foundShallMust {
			issues = append(issues, Issue{Level: LevelError, Path: specPath, Message: "requirement text must contain SHALL or MUST"})
		}
		if !foundScenario {
			issues = append(issues, Issue{Level: LevelError, Path: specPath, Message: "at least one scenario is required"})
		}
	}
	return issues
}

// DuplicateChangeIDs scans a list of change directory names and reports
// any whose (module, change-number) pair numerically collides, even under
// different zero-padding, along with the colliding paths.
func DuplicateChangeIDs(spoolDir string, dirNames []string) []Issue {
	seen := map[string]string{}
	var issues []Issue
	sorted := append([]string{}, dirNames...)
	sort.Strings(sorted)
	for _, name := range sorted {
		parsed, err := ids.ParseChangeID(name)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%d-%d", parsed.ModuleInt(), parsed.ChangeInt())
		if other, ok := seen[key]; ok {
			issues = append(issues, Issue{
				Level:   LevelError,
				Message: fmt.Sprintf("duplicate change id %s-%s: conflicting directories %q and %q", parsed.ModuleNum, parsed.ChangeNum, other, name),
			})
			continue
		}
		seen[key] = name
	}
	return issues
}
