package validate

import (
	"os"
	"path/filepath"
	"time"

	"github.com/withakay/spool-go/internal/catalog"
)

// TypeCounts is the items/passed/failed tally for one entity type.
type TypeCounts struct {
	Items  int `json:"items"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summary aggregates totals across all validated entities, plus a
// breakdown by type, matching the bulk validate JSON envelope of
// spec.md §6.
type Summary struct {
	Totals TypeCounts            `json:"totals"`
	ByType map[string]TypeCounts `json:"byType"`
}

// ItemResult is one entity's validation outcome in the bulk envelope.
type ItemResult struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Valid      bool    `json:"valid"`
	Issues     []Issue `json:"issues"`
	DurationMs int64   `json:"durationMs"`
}

// BulkResult is the full JSON envelope returned by `spool validate`.
type BulkResult struct {
	Items   []ItemResult `json:"items"`
	Summary Summary      `json:"summary"`
	Version string       `json:"version"`
}

// RunAll validates every module, change and spec under spoolDir and
// assembles the bulk result, applying strict mode if requested.
func RunAll(spoolDir, specsDir string, strict bool) (BulkResult, error) {
	var items []ItemResult

	modules, err := catalog.ListModules(spoolDir)
	if err != nil {
		return BulkResult{}, err
	}
	for _, m := range modules {
		start := time.Now()
		issues := ValidateModule(filepath.Join(m.Path, "module.md"))
		items = append(items, ItemResult{
			ID:         m.DirName,
			Type:       "module",
			Valid:      computeValid(issues, strict),
			Issues:     issues,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}

	changes, err := catalog.ListChanges(spoolDir)
	if err != nil {
		return BulkResult{}, err
	}
	var changeDirNames []string
	for _, c := range changes {
		changeDirNames = append(changeDirNames, c.DirName)
	}
	dupIssues := DuplicateChangeIDs(spoolDir, changeDirNames)

	for _, c := range changes {
		start := time.Now()
		var issues []Issue
		_, nameIssues := ValidateChangeDirName(c.DirName)
		issues = append(issues, nameIssues...)
		issues = append(issues, ValidateChangeModuleExists(spoolDir, c.ID)...)
		issues = append(issues, ValidateChangeDeltas(c.Path)...)
		for _, d := range dupIssues {
			issues = append(issues, d)
		}
		items = append(items, ItemResult{
			ID:         c.DirName,
			Type:       "change",
			Valid:      computeValid(issues, strict),
			Issues:     issues,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}

	// catalog.ListChanges skips directories whose names do not parse;
	// report those here so the dir-name rule still applies to them.
	if entries, err := os.ReadDir(filepath.Join(spoolDir, "changes")); err == nil {
		for _, e := range entries {
			if !e.IsDir() || e.Name() == "archive" {
				continue
			}
			if _, nameIssues := ValidateChangeDirName(e.Name()); len(nameIssues) > 0 {
				items = append(items, ItemResult{ID: e.Name(), Type: "change", Valid: computeValid(nameIssues, strict), Issues: nameIssues})
			}
		}
	}

	specs, err := catalog.ListSpecs(specsDir)
	if err != nil {
		return BulkResult{}, err
	}
	for _, s := range specs {
		start := time.Now()
		issues := ValidateSpec(s.Path)
		items = append(items, ItemResult{
			ID:         s.ID,
			Type:       "spec",
			Valid:      computeValid(issues, strict),
			Issues:     issues,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}

	summary := Summary{ByType: map[string]TypeCounts{}}
	for _, item := range items {
		tc := summary.ByType[item.Type]
		tc.Items++
		if item.Valid {
			tc.Passed++
		} else {
			tc.Failed++
		}
		summary.ByType[item.Type] = tc

		summary.Totals.Items++
		if item.Valid {
			summary.Totals.Passed++
		} else {
			summary.Totals.Failed++
		}
	}

	return BulkResult{Items: items, Summary: summary, Version: "1.0"}, nil
}
