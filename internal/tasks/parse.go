package tasks

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	enhancedHeadingRe = regexp.MustCompile(`(?m)^###\s+.+:\s*.+$`)
	statusBulletRe    = regexp.MustCompile(`-\s*\*\*Status\*\*:`)
	checkboxRe        = regexp.MustCompile(`(?m)^\s*[-*]\s+\[[ xX~>sS]\]`)
)

// DetectFormat implements §4.5.1: enhanced requires a "### ...: ..." heading
// plus a "- **Status**:" bullet somewhere in the text; otherwise, if any
// checkbox-style list item is present, the format is checkbox; otherwise
// checkbox (empty).
func DetectFormat(content string) TasksFormat {
	if enhancedHeadingRe.MatchString(content) && statusBulletRe.MatchString(content) {
		return FormatEnhanced
	}
	return FormatCheckbox
}

// Parse parses tasks.md content, dispatching to the checkbox or enhanced
// parser based on DetectFormat, then runs the relational validation pass
// over the parsed result so every caller (status, next, apply) sees
// duplicate-ID, self-dependency, missing-dependency, cross-wave-dependency,
// shelved-dependency and cycle diagnostics without having to remember to
// call Validate separately.
//
// Grounded on spool-domain/src/tasks/parse.rs's parse_tasks_tracking_file,
// which appends relational::validate_relational's diagnostics onto the
// parse-time diagnostics at this same single entry point.
func Parse(content string) TasksParseResult {
	var result TasksParseResult
	switch DetectFormat(content) {
	case FormatEnhanced:
		result = parseEnhanced(content)
	default:
		result = parseCheckbox(content)
	}

	relDiags, err := Validate(result)
	if err != nil {
		relDiags = []TaskDiagnostic{{Level: LevelError, Message: "relational validation failed: " + err.Error()}}
	}
	result.Diagnostics = append(result.Diagnostics, relDiags...)
	return result
}

var checkboxLineRe = regexp.MustCompile(`^(\s*[-*]\s+)\[([ xX~>sS])\]\s*(.*)$`)

// parseCheckbox implements §4.5.2: each matching line becomes a task
// numbered by 1-based position, status derived from the bracket marker, no
// dependencies or waves.
func parseCheckbox(content string) TasksParseResult {
	lines := strings.Split(content, "\n")
	var items []TaskItem
	n := 0
	for i, line := range lines {
		m := checkboxLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		status, ok := StatusFromMarker(m[2][0])
		if !ok {
			continue
		}
		n++
		items = append(items, TaskItem{
			ID:              strconv.Itoa(n),
			Name:            strings.TrimSpace(m[3]),
			Status:          status,
			HeaderLineIndex: i + 1,
			Kind:            KindNormal,
		})
	}
	return TasksParseResult{Format: FormatCheckbox, Tasks: items}
}

var (
	waveHeaderRe     = regexp.MustCompile(`^##\s+Wave\s+(\d+)\s*$`)
	checkpointsRe    = regexp.MustCompile(`^##\s+Checkpoints\s*$`)
	dependsOnRe      = regexp.MustCompile(`^-\s*\*\*Depends On\*\*:\s*(.*)$`)
	taskHeaderRe     = regexp.MustCompile(`^###\s+(?:Task\s+)?([^:]+):\s*(.+)$`)
	actionRe         = regexp.MustCompile(`^-\s*\*\*Action\*\*:\s*(.*)$`)
	filesRe          = regexp.MustCompile(`^-\s*\*\*Files\*\*:\s*(.*)$`)
	depsFieldRe      = regexp.MustCompile(`^-\s*\*\*Dependencies\*\*:\s*(.*)$`)
	verifyRe         = regexp.MustCompile(`^-\s*\*\*Verify\*\*:\s*(.*)$`)
	doneWhenRe       = regexp.MustCompile(`^-\s*\*\*Done When\*\*:\s*(.*)$`)
	updatedAtRe      = regexp.MustCompile(`^-\s*\*\*Updated At\*\*:\s*(.*)$`)
	statusFieldRe    = regexp.MustCompile(`^-\s*\*\*Status\*\*:\s*\[(.)\]\s*(\S+)`)
	anyBulletOrHeadRe = regexp.MustCompile(`^(#{2,4}\s|\s*[-*]\s+\*\*)`)
	backtickRe       = regexp.MustCompile("`([^`]*)`")
)

type waveBuilder struct {
	wave               int
	dependsOnLine      string
	headerLineIndex    int
	hasDependsOnLine   bool
	dependsOnLineIndex int
	seenDependsOn      bool
}

type taskBuilder struct {
	id              string
	name            string
	headerLineIndex int
	wave            int
	hasWave         bool
	kind            TaskKind
	status          TaskStatus
	hasStatus       bool
	updatedAt       string
	dependencies    []string
	files           []string
	action          string
	verify          string
	doneWhen        string
	inAction        bool
}

// parseEnhanced implements §4.5.3/§4.5.4: a single-pass state machine over
// lines, tracking the current wave builder and task builder.
func parseEnhanced(content string) TasksParseResult {
	lines := strings.Split(content, "\n")

	var waves []WaveInfo
	var tasks []TaskItem
	var diags []TaskDiagnostic

	var curWave *waveBuilder
	var curTask *taskBuilder
	inCheckpoints := false

	flushTask := func() {
		if curTask == nil {
			return
		}
		t := TaskItem{
			ID:              curTask.id,
			Name:            curTask.name,
			Wave:            curTask.wave,
			HasWave:         curTask.hasWave,
			Status:          curTask.status,
			UpdatedAt:       curTask.updatedAt,
			Dependencies:    curTask.dependencies,
			Files:           curTask.files,
			Action:          strings.TrimSpace(curTask.action),
			Verify:          curTask.verify,
			DoneWhen:        curTask.doneWhen,
			Kind:            curTask.kind,
			HeaderLineIndex: curTask.headerLineIndex,
		}
		if !curTask.hasStatus {
			diags = append(diags, TaskDiagnostic{Level: LevelError, Message: "missing or invalid status", TaskID: t.ID, Line: t.HeaderLineIndex})
		}
		if curTask.updatedAt == "" {
			diags = append(diags, TaskDiagnostic{Level: LevelError, Message: "missing or invalid Updated At", TaskID: t.ID, Line: t.HeaderLineIndex})
		}
		tasks = append(tasks, t)
		curTask = nil
	}

	flushWave := func() {
		if curWave == nil {
			return
		}
		deps, ok := parseWaveDependsOn(curWave.dependsOnLine)
		w := WaveInfo{
			Wave:               curWave.wave,
			DependsOn:          deps,
			HeaderLineIndex:    curWave.headerLineIndex,
			DependsOnLineIndex: curWave.dependsOnLineIndex,
			HasDependsOnLine:   curWave.hasDependsOnLine,
		}
		if !curWave.hasDependsOnLine {
			diags = append(diags, TaskDiagnostic{Level: LevelError, Message: "Wave " + strconv.Itoa(curWave.wave) + " is missing a Depends On line", Line: curWave.headerLineIndex})
		} else if !ok {
			diags = append(diags, TaskDiagnostic{Level: LevelError, Message: "Wave " + strconv.Itoa(curWave.wave) + " has an invalid Depends On line", Line: curWave.dependsOnLineIndex})
		}
		waves = append(waves, w)
		curWave = nil
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if m := waveHeaderRe.FindStringSubmatch(trimmed); m != nil {
			flushTask()
			flushWave()
			n, _ := strconv.Atoi(m[1])
			curWave = &waveBuilder{wave: n, headerLineIndex: lineNo}
			inCheckpoints = false
			continue
		}
		if checkpointsRe.MatchString(trimmed) {
			flushTask()
			flushWave()
			inCheckpoints = true
			continue
		}

		if curWave != nil && curTask == nil {
			if m := dependsOnRe.FindStringSubmatch(trimmed); m != nil {
				if curWave.seenDependsOn {
					diags = append(diags, TaskDiagnostic{Level: LevelWarning, Message: "duplicate Depends On line for Wave " + strconv.Itoa(curWave.wave), Line: lineNo})
				} else {
					curWave.dependsOnLine = m[1]
					curWave.hasDependsOnLine = true
					curWave.dependsOnLineIndex = lineNo
					curWave.seenDependsOn = true
				}
				continue
			}
		}

		if m := taskHeaderRe.FindStringSubmatch(trimmed); m != nil {
			flushTask()
			kind := KindNormal
			wave := 0
			hasWave := false
			if curWave != nil {
				wave = curWave.wave
				hasWave = true
			} else if inCheckpoints {
				kind = KindCheckpoint
			} else {
				diags = append(diags, TaskDiagnostic{Level: LevelWarning, Message: "task " + strings.TrimSpace(m[1]) + " appears outside any wave and outside Checkpoints", Line: lineNo})
			}
			curTask = &taskBuilder{
				id:              strings.TrimSpace(m[1]),
				name:            strings.TrimSpace(m[2]),
				headerLineIndex: lineNo,
				wave:            wave,
				hasWave:         hasWave,
				kind:            kind,
			}
			continue
		}

		if curTask == nil {
			continue
		}

		if curTask.inAction {
			if anyBulletOrHeadRe.MatchString(line) || strings.HasPrefix(trimmed, "- **") {
				curTask.inAction = false
			} else {
				if trimmed != "" {
					if curTask.action != "" {
						curTask.action += "\n"
					}
					curTask.action += line
				}
				continue
			}
		}

		switch {
		case actionRe.MatchString(trimmed):
			m := actionRe.FindStringSubmatch(trimmed)
			curTask.action = m[1]
			curTask.inAction = true
		case filesRe.MatchString(trimmed):
			m := filesRe.FindStringSubmatch(trimmed)
			curTask.files = parseBacktickList(m[1])
		case depsFieldRe.MatchString(trimmed):
			m := depsFieldRe.FindStringSubmatch(trimmed)
			curTask.dependencies = parseDependencies(m[1])
		case verifyRe.MatchString(trimmed):
			m := verifyRe.FindStringSubmatch(trimmed)
			curTask.verify = strings.TrimSpace(m[1])
		case doneWhenRe.MatchString(trimmed):
			m := doneWhenRe.FindStringSubmatch(trimmed)
			curTask.doneWhen = strings.TrimSpace(m[1])
		case updatedAtRe.MatchString(trimmed):
			m := updatedAtRe.FindStringSubmatch(trimmed)
			curTask.updatedAt = strings.TrimSpace(m[1])
		case statusFieldRe.MatchString(trimmed):
			m := statusFieldRe.FindStringSubmatch(trimmed)
			marker := m[1]
			label := m[2]
			status, labelOK := StatusFromEnhancedLabel(label)
			if labelOK {
				curTask.status = status
				curTask.hasStatus = true
				if len(marker) == 1 {
					markerStatus, markerOK := StatusFromMarker(marker[0])
					if !markerOK || !statusMarkerMatchesStatus(marker[0], status) {
						diags = append(diags, TaskDiagnostic{Level: LevelWarning, Message: "status marker [" + marker + "] does not match label " + label, TaskID: curTask.id, Line: lineNo})
					}
					_ = markerStatus
				}
			}
		}
	}

	flushTask()
	flushWave()

	return TasksParseResult{Format: FormatEnhanced, Tasks: tasks, Waves: waves, Diagnostics: diags}
}

func statusMarkerMatchesStatus(marker byte, status TaskStatus) bool {
	switch status {
	case StatusComplete:
		return marker == 'x' || marker == 'X'
	case StatusShelved:
		return marker == '-' || marker == 's' || marker == 'S' || marker == '~'
	default:
		return marker == ' '
	}
}

func parseBacktickList(s string) []string {
	matches := backtickRe.FindAllStringSubmatch(s, -1)
	var out []string
	for _, m := range matches {
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	if len(matches) == 0 {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseDependencies implements §4.5.3's dependency grammar for task-level
// Dependencies bullets: "None"/empty -> nil, "All Wave N tasks" / "All
// previous waves" -> nil (implicit checkpoint semantics handled by the
// scheduler), otherwise a comma-separated list with optional "Task "
// prefixes stripped.
func parseDependencies(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "all wave") && strings.HasSuffix(lower, "tasks") {
		return nil
	}
	if lower == "all previous waves" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "Task ")
		part = strings.TrimPrefix(part, "task ")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var waveRefRe = regexp.MustCompile(`(?i)^wave\s+(\d+)$`)

// parseWaveDependsOn parses a wave's "Depends On" value into a list of wave
// numbers. Returns ok=false for an empty or non-numeric entry.
func parseWaveDependsOn(s string) ([]int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if strings.EqualFold(s, "none") {
		return nil, true
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		if m := waveRefRe.FindStringSubmatch(part); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, false
			}
			out = append(out, n)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
