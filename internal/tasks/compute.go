package tasks

import (
	"fmt"
	"math"
	"sort"
)

// BlockedTask pairs a pending task with the reasons it is not ready.
type BlockedTask struct {
	Task     TaskItem
	Blockers []string
}

// ComputeReadyBlocked implements §4.5.7.
//
// Checkbox mode: if any task is in-progress, both lists are empty;
// otherwise every pending task is ready, in file order.
//
// Enhanced mode: per-wave completeness/unlock is computed first, then each
// pending task collects its blockers (wave-gating, dependency-gating) and
// is partitioned into ready or blocked accordingly. Both lists are sorted
// by (wave-or-infinity, header line).
func ComputeReadyBlocked(result TasksParseResult) (ready []TaskItem, blocked []BlockedTask) {
	if result.Format == FormatCheckbox {
		return computeCheckboxReadyBlocked(result.Tasks)
	}
	return computeEnhancedReadyBlocked(result)
}

func computeCheckboxReadyBlocked(items []TaskItem) ([]TaskItem, []BlockedTask) {
	for _, t := range items {
		if t.Status == StatusInProgress {
			return nil, nil
		}
	}
	var ready []TaskItem
	for _, t := range items {
		if t.Status == StatusPending {
			ready = append(ready, t)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].HeaderLineIndex < ready[j].HeaderLineIndex
	})
	return ready, nil
}

func computeEnhancedReadyBlocked(result TasksParseResult) ([]TaskItem, []BlockedTask) {
	waveComplete := map[int]bool{}
	waveByNum := map[int]WaveInfo{}
	for _, w := range result.Waves {
		waveByNum[w.Wave] = w
	}
	for _, w := range result.Waves {
		waveComplete[w.Wave] = allWaveTasksDone(result.Tasks, w.Wave)
	}

	waveUnlocked := map[int]bool{}
	for _, w := range result.Waves {
		unlocked := true
		for _, dep := range w.DependsOn {
			if !waveComplete[dep] {
				unlocked = false
				break
			}
		}
		waveUnlocked[w.Wave] = unlocked
	}

	noWaveInfo := len(result.Waves) == 0
	legacyWaves := result.Waves
	if noWaveInfo {
		// legacy files: derive the wave set from the tasks themselves
		seenWave := map[int]bool{}
		for _, t := range result.Tasks {
			if t.HasWave && !seenWave[t.Wave] {
				seenWave[t.Wave] = true
				legacyWaves = append(legacyWaves, WaveInfo{Wave: t.Wave})
				waveComplete[t.Wave] = allWaveTasksDone(result.Tasks, t.Wave)
			}
		}
	}
	allWavesComplete := true
	for _, w := range result.Waves {
		if !waveComplete[w.Wave] {
			allWavesComplete = false
			break
		}
	}

	byID := map[string]TaskItem{}
	for _, t := range result.Tasks {
		byID[t.ID] = t
	}

	var ready []TaskItem
	var blocked []BlockedTask

	for _, t := range result.Tasks {
		if t.Status != StatusPending {
			continue
		}

		var blockers []string

		if t.HasWave {
			if w, ok := waveByNum[t.Wave]; ok {
				if !waveUnlocked[t.Wave] {
					for _, dep := range w.DependsOn {
						if !waveComplete[dep] {
							blockers = append(blockers, fmt.Sprintf("Blocked by Wave %d", dep))
						}
					}
				}
			} else if !noWaveInfo {
				blockers = append(blockers, fmt.Sprintf("Wave %d is locked", t.Wave))
			}
		} else {
			if noWaveInfo {
				if firstIncomplete, ok := firstIncompleteWave(legacyWaves, waveComplete); ok {
					blockers = append(blockers, fmt.Sprintf("Blocked until Wave %d is complete", firstIncomplete))
				}
			} else if !allWavesComplete {
				blockers = append(blockers, "Blocked until all waves are complete")
			}
		}

		if noWaveInfo && t.HasWave {
			// back-compat fallback: block later-wave tasks until the
			// first incomplete wave (by number) finishes.
			if firstIncomplete, ok := firstIncompleteWave(legacyWaves, waveComplete); ok && t.Wave > firstIncomplete {
				blockers = append(blockers, fmt.Sprintf("Blocked until Wave %d is complete", firstIncomplete))
			}
		}

		for _, dep := range t.Dependencies {
			depTask, ok := byID[dep]
			if !ok {
				blockers = append(blockers, "Missing dependency: "+dep)
				continue
			}
			if depTask.HasWave != t.HasWave || depTask.Wave != t.Wave {
				blockers = append(blockers, "Cross-wave dependency: "+dep)
				continue
			}
			if depTask.Status != StatusComplete {
				blockers = append(blockers, "Dependency not complete: "+dep)
			}
		}

		if len(blockers) == 0 {
			ready = append(ready, t)
		} else {
			blocked = append(blocked, BlockedTask{Task: t, Blockers: blockers})
		}
	}

	sortByWaveAndLine(ready)
	sort.SliceStable(blocked, func(i, j int) bool {
		return lessByWaveAndLine(blocked[i].Task, blocked[j].Task)
	})

	return ready, blocked
}

func allWaveTasksDone(tasks []TaskItem, wave int) bool {
	for _, t := range tasks {
		if t.HasWave && t.Wave == wave && !t.Status.IsDone() {
			return false
		}
	}
	return true
}

// firstIncompleteWave returns the lowest-numbered wave that is not
// complete, used by the legacy back-compat fallback when no WaveInfo
// entries exist (or, for checkpoint-like tasks, as a general gate).
func firstIncompleteWave(waves []WaveInfo, complete map[int]bool) (int, bool) {
	nums := make([]int, 0, len(waves))
	for _, w := range waves {
		nums = append(nums, w.Wave)
	}
	sort.Ints(nums)
	for _, n := range nums {
		if !complete[n] {
			return n, true
		}
	}
	return 0, false
}

func sortByWaveAndLine(items []TaskItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return lessByWaveAndLine(items[i], items[j])
	})
}

func lessByWaveAndLine(a, b TaskItem) bool {
	aw, bw := waveOrInfinity(a), waveOrInfinity(b)
	if aw != bw {
		return aw < bw
	}
	return a.HeaderLineIndex < b.HeaderLineIndex
}

func waveOrInfinity(t TaskItem) float64 {
	if t.HasWave {
		return float64(t.Wave)
	}
	return math.Inf(1)
}
