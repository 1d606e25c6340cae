package tasks

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Validate loads the parsed tasks and waves into an in-memory relational
// store and evaluates the invariants of the data model: duplicate task
// IDs, self-dependency, missing dependency, cross-wave dependency,
// shelved-dependency, and cycles in both the task and wave dependency
// graphs.
//
// Grounded on spool-domain/src/tasks/relational.rs. Existence checks
// (duplicate ID, self-dependency, missing dependency, undeclared wave) are
// cheap membership tests against the rows already in hand, done in Go
// before a row is ever inserted, so a bad edge never reaches the store.
// Cross-wave-dependency and shelved-dependency are properties of the edges
// once they're all in the store, so those two are genuine SQL JOINs over
// task_dep against task, matching the original's join-based design.
func Validate(result TasksParseResult) ([]TaskDiagnostic, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening relational store: %w", err)
	}
	defer db.Close()

	if err := createSchema(db); err != nil {
		return nil, err
	}

	var diags []TaskDiagnostic

	declaredWaves := map[int]bool{}
	for _, w := range result.Waves {
		declaredWaves[w.Wave] = true
		if _, err := db.Exec(`INSERT OR IGNORE INTO wave (num) VALUES (?)`, w.Wave); err != nil {
			return nil, fmt.Errorf("inserting wave: %w", err)
		}
	}
	for _, w := range result.Waves {
		for _, dep := range w.DependsOn {
			if dep == w.Wave {
				diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("Wave %d depends on itself", w.Wave), Line: w.HeaderLineIndex})
				continue
			}
			if !declaredWaves[dep] {
				diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("Wave %d depends on undeclared Wave %d", w.Wave, dep), Line: w.HeaderLineIndex})
				continue
			}
			if _, err := db.Exec(`INSERT INTO wave_dep (wave_num, depends_on) VALUES (?, ?)`, w.Wave, dep); err != nil {
				return nil, fmt.Errorf("inserting wave_dep: %w", err)
			}
		}
	}

	seen := map[string]bool{}
	lineByID := map[string]int{}
	for _, t := range result.Tasks {
		if seen[t.ID] {
			diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("duplicate task ID: %s", t.ID), TaskID: t.ID, Line: t.HeaderLineIndex})
			continue
		}
		seen[t.ID] = true
		lineByID[t.ID] = t.HeaderLineIndex
		wave := sql.NullInt64{}
		if t.HasWave {
			wave = sql.NullInt64{Int64: int64(t.Wave), Valid: true}
		}
		if _, err := db.Exec(`INSERT INTO task (id, wave_num, status) VALUES (?, ?, ?)`, t.ID, wave, t.Status.String()); err != nil {
			return nil, fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}

	for _, t := range result.Tasks {
		if !seen[t.ID] || lineByID[t.ID] != t.HeaderLineIndex {
			// a later duplicate of this ID was dropped above; only the
			// first occurrence's dependencies are evaluated.
			continue
		}
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("task %s depends on itself", t.ID), TaskID: t.ID, Line: t.HeaderLineIndex})
				continue
			}
			if !seen[dep] {
				diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("missing dependency: %s", dep), TaskID: t.ID, Line: t.HeaderLineIndex})
				continue
			}
			if _, err := db.Exec(`INSERT INTO task_dep (task_id, depends_on) VALUES (?, ?)`, t.ID, dep); err != nil {
				return nil, fmt.Errorf("inserting task_dep: %w", err)
			}
		}
	}

	crossWave, err := db.Query(`
		SELECT t.task_id, t.depends_on
		FROM task_dep t
		JOIN task a ON a.id = t.task_id
		JOIN task b ON b.id = t.depends_on
		WHERE a.wave_num IS NOT b.wave_num
		ORDER BY t.task_id, t.depends_on`)
	if err != nil {
		return nil, fmt.Errorf("querying cross-wave dependencies: %w", err)
	}
	for crossWave.Next() {
		var taskID, dep string
		if err := crossWave.Scan(&taskID, &dep); err != nil {
			crossWave.Close()
			return nil, fmt.Errorf("scanning cross-wave dependency: %w", err)
		}
		diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("cross-wave dependency: %s", dep), TaskID: taskID, Line: lineByID[taskID]})
	}
	if err := crossWave.Err(); err != nil {
		crossWave.Close()
		return nil, fmt.Errorf("iterating cross-wave dependencies: %w", err)
	}
	crossWave.Close()

	shelved, err := db.Query(`
		SELECT t.task_id, t.depends_on
		FROM task_dep t
		JOIN task a ON a.id = t.task_id
		JOIN task b ON b.id = t.depends_on
		WHERE b.status = 'shelved' AND a.status <> 'shelved'
		ORDER BY t.task_id, t.depends_on`)
	if err != nil {
		return nil, fmt.Errorf("querying shelved dependencies: %w", err)
	}
	for shelved.Next() {
		var taskID, dep string
		if err := shelved.Scan(&taskID, &dep); err != nil {
			shelved.Close()
			return nil, fmt.Errorf("scanning shelved dependency: %w", err)
		}
		diags = append(diags, TaskDiagnostic{Level: LevelError, Message: fmt.Sprintf("Dependency is shelved: %s", dep), TaskID: taskID, Line: lineByID[taskID]})
	}
	if err := shelved.Err(); err != nil {
		shelved.Close()
		return nil, fmt.Errorf("iterating shelved dependencies: %w", err)
	}
	shelved.Close()

	if cyclePath, ok := findTaskCycle(result.Tasks); ok {
		diags = append(diags, TaskDiagnostic{Level: LevelError, Message: "dependency cycle detected: " + cyclePath})
	}
	if cyclePath, ok := findWaveCycle(result.Waves); ok {
		diags = append(diags, TaskDiagnostic{Level: LevelError, Message: "wave dependency cycle detected: " + cyclePath})
	}

	return diags, nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE wave (num INTEGER PRIMARY KEY)`,
		`CREATE TABLE wave_dep (
			wave_num INTEGER NOT NULL,
			depends_on INTEGER NOT NULL,
			CHECK (wave_num <> depends_on)
		)`,
		`CREATE TABLE task (
			id TEXT PRIMARY KEY,
			wave_num INTEGER,
			status TEXT NOT NULL CHECK (status IN ('pending', 'in-progress', 'complete', 'shelved'))
		)`,
		`CREATE TABLE task_dep (
			task_id TEXT NOT NULL,
			depends_on TEXT NOT NULL,
			CHECK (task_id <> depends_on)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("creating relational schema: %w", err)
		}
	}
	return nil
}

// findTaskCycle performs a path-returning DFS over the task dependency
// graph and returns the first cycle found, joined with "->".
func findTaskCycle(items []TaskItem) (string, bool) {
	edges := map[string][]string{}
	ids := make([]string, 0, len(items))
	for _, t := range items {
		edges[t.ID] = append(edges[t.ID], t.Dependencies...)
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return dfsCycle(ids, edges)
}

func findWaveCycle(waves []WaveInfo) (string, bool) {
	edges := map[string][]string{}
	var ids []string
	for _, w := range waves {
		key := fmt.Sprintf("%d", w.Wave)
		ids = append(ids, key)
		for _, d := range w.DependsOn {
			edges[key] = append(edges[key], fmt.Sprintf("%d", d))
		}
	}
	sort.Strings(ids)
	return dfsCycle(ids, edges)
}

func dfsCycle(ids []string, edges map[string][]string) (string, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []string

	var visit func(node string) (string, bool)
	visit = func(node string) (string, bool) {
		color[node] = gray
		path = append(path, node)
		for _, next := range edges[node] {
			switch color[next] {
			case gray:
				// found a cycle; build the path from where `next` first appeared
				start := indexOfStr(path, next)
				cyclePath := append(append([]string{}, path[start:]...), next)
				return strings.Join(cyclePath, "->"), true
			case white:
				if p, ok := visit(next); ok {
					return p, true
				}
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return "", false
	}

	for _, id := range ids {
		if color[id] == white {
			if p, ok := visit(id); ok {
				return p, true
			}
		}
	}
	return "", false
}

func indexOfStr(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
