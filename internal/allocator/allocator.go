// Package allocator issues monotonically increasing per-module change
// numbers, consulting every on-disk source of truth before committing.
//
// Grounded on spool-rs's create::allocate_next_change_number: a create-new
// lock file provides mutual exclusion, state is a JSON map keyed by module
// id, and the next number is one greater than the maximum observed across
// active change dirs, archived change dirs, module.md token references and
// the allocator's own stored state.
package allocator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/withakay/spool-go/internal/fsio"
)

const (
	stateDir      = "workflows/.state"
	stateFileName = "change-allocations.json"
	lockFileName  = "change-allocations.lock"
	lockRetries   = 10
	lockBackoff   = 50 * time.Millisecond
)

// ModuleAllocationState is the persisted allocator state for one module.
type ModuleAllocationState struct {
	LastChangeNum int    `json:"lastChangeNum"`
	UpdatedAt     string `json:"updatedAt"`
}

// AllocationState is the full on-disk allocator state.
type AllocationState struct {
	Modules map[string]ModuleAllocationState `json:"modules"`
}

// Allocator computes next-change-numbers for modules under a spool dir.
type Allocator struct {
	SpoolDir string
	Now      func() time.Time
}

// New returns an Allocator rooted at spoolDir.
func New(spoolDir string) *Allocator {
	return &Allocator{SpoolDir: spoolDir, Now: time.Now}
}

func (a *Allocator) statePath() string {
	return filepath.Join(a.SpoolDir, stateDir, stateFileName)
}

func (a *Allocator) lockPath() string {
	return filepath.Join(a.SpoolDir, stateDir, lockFileName)
}

// acquireLock creates the lock file with O_EXCL semantics, retrying on
// contention, and returns a release function.
func (a *Allocator) acquireLock() (func(), error) {
	dir := filepath.Join(a.SpoolDir, stateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	lockPath := a.lockPath()
	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		lastErr = err
		time.Sleep(lockBackoff)
	}
	return nil, fmt.Errorf("could not acquire change allocator lock after %d attempts: %w", lockRetries, lastErr)
}

func (a *Allocator) loadState() (AllocationState, error) {
	data, ok, err := fsio.ReadOptional(a.statePath())
	if err != nil {
		return AllocationState{}, err
	}
	state := AllocationState{Modules: map[string]ModuleAllocationState{}}
	if !ok {
		return state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return AllocationState{}, fmt.Errorf("parsing allocator state: %w", err)
	}
	if state.Modules == nil {
		state.Modules = map[string]ModuleAllocationState{}
	}
	return state, nil
}

func (a *Allocator) saveState(state AllocationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding allocator state: %w", err)
	}
	return fsio.WriteAtomic(a.statePath(), data, 0o644)
}

var identifierSplitRe = regexp.MustCompile(`[^0-9A-Za-z_-]+`)

// AllocateNext returns the next change number for moduleNum (canonical
// three-digit form) and persists the decision before returning.
func (a *Allocator) AllocateNext(moduleNum string) (int, error) {
	release, err := a.acquireLock()
	if err != nil {
		return 0, err
	}
	defer release()

	state, err := a.loadState()
	if err != nil {
		return 0, err
	}

	maxSeen := 0

	if n := a.maxFromActiveChanges(moduleNum); n > maxSeen {
		maxSeen = n
	}
	if n := a.maxFromArchivedChanges(moduleNum); n > maxSeen {
		maxSeen = n
	}
	if n := a.maxFromModuleMd(moduleNum); n > maxSeen {
		maxSeen = n
	}
	if existing, ok := state.Modules[moduleNum]; ok && existing.LastChangeNum > maxSeen {
		maxSeen = existing.LastChangeNum
	}

	next := maxSeen + 1

	state.Modules[moduleNum] = ModuleAllocationState{
		LastChangeNum: next,
		UpdatedAt:     a.Now().UTC().Format(time.RFC3339),
	}
	if err := a.saveState(state); err != nil {
		return 0, err
	}

	return next, nil
}

func (a *Allocator) maxFromActiveChanges(moduleNum string) int {
	changesDir := filepath.Join(a.SpoolDir, "changes")
	entries, err := os.ReadDir(changesDir)
	if err != nil {
		return 0
	}
	max := 0
	prefix := moduleNum + "-"
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "archive" {
			continue
		}
		if !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if n := changeNumFromDirName(e.Name()); n > max {
			max = n
		}
	}
	return max
}

func (a *Allocator) maxFromArchivedChanges(moduleNum string) int {
	archiveDir := filepath.Join(a.SpoolDir, "changes", "archive")
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		return 0
	}
	max := 0
	prefix := moduleNum + "-"
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		// strip the "YYYY-MM-DD-" prefix (11 chars) if present
		if len(name) > 11 && name[4] == '-' && name[7] == '-' && name[10] == '-' {
			name = name[11:]
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if n := changeNumFromDirName(name); n > max {
			max = n
		}
	}
	return max
}

func (a *Allocator) maxFromModuleMd(moduleNum string) int {
	entries, err := os.ReadDir(filepath.Join(a.SpoolDir, "modules"))
	if err != nil {
		return 0
	}
	prefix := moduleNum + "_"
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		data, ok, err := fsio.ReadOptional(filepath.Join(a.SpoolDir, "modules", e.Name(), "module.md"))
		if err != nil || !ok {
			continue
		}
		return maxChangeNumInTokens(string(data), moduleNum)
	}
	return 0
}

// changeNumFromDirName extracts the MM portion of an "NNN-MM_name"
// directory name.
func changeNumFromDirName(dirName string) int {
	dash := strings.Index(dirName, "-")
	if dash < 0 {
		return 0
	}
	rest := dirName[dash+1:]
	underscore := strings.Index(rest, "_")
	numPart := rest
	if underscore >= 0 {
		numPart = rest[:underscore]
	}
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return 0
	}
	return n
}

// maxChangeNumInTokens scans text for "moduleNum-MM" style tokens
// (separated by non-identifier characters) and returns the highest MM seen.
func maxChangeNumInTokens(text, moduleNum string) int {
	tokens := identifierSplitRe.Split(text, -1)
	max := 0
	prefix := moduleNum + "-"
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, prefix) {
			continue
		}
		numPart := strings.TrimPrefix(tok, prefix)
		n, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
