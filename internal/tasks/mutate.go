package tasks

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var taskHeaderScanRe = regexp.MustCompile(`^###\s+(?:Task\s+)?([^:]+):`)

// SetStatus implements §4.5.8: it edits content in place, rewriting the
// single task identified by taskID to the canonical status bullet and
// inserting or updating its Updated At bullet, preserving everything else
// byte for byte.
func SetStatus(content, taskID string, status TaskStatus, today time.Time) (string, error) {
	lines := strings.Split(content, "\n")

	headerIdx := -1
	for i, line := range lines {
		if m := taskHeaderScanRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if strings.TrimSpace(m[1]) == taskID {
				headerIdx = i
				break
			}
		}
	}
	if headerIdx < 0 {
		return "", fmt.Errorf("task %q not found", taskID)
	}

	blockEnd := len(lines)
	for i := headerIdx + 1; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if strings.HasPrefix(t, "###") || strings.HasPrefix(t, "##") {
			blockEnd = i
			break
		}
	}

	statusLineText := fmt.Sprintf("- **Status**: [%s] %s", MarkerForStatus(status), status.EnhancedLabel())
	updatedAtText := fmt.Sprintf("- **Updated At**: %s", today.Format("2006-01-02"))

	statusIdx := -1
	updatedIdx := -1
	for i := headerIdx + 1; i < blockEnd; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if statusFieldRe.MatchString(trimmed) {
			statusIdx = i
		}
		if updatedAtRe.MatchString(trimmed) {
			updatedIdx = i
		}
	}

	if statusIdx >= 0 {
		lines[statusIdx] = statusLineText
	}
	if updatedIdx >= 0 {
		lines[updatedIdx] = updatedAtText
	}

	switch {
	case statusIdx < 0 && updatedIdx < 0:
		insertAt := headerIdx + 1
		newLines := append([]string{}, lines[:insertAt]...)
		newLines = append(newLines, statusLineText, updatedAtText)
		newLines = append(newLines, lines[insertAt:]...)
		lines = newLines
	case statusIdx < 0:
		insertAt := updatedIdx
		newLines := append([]string{}, lines[:insertAt]...)
		newLines = append(newLines, statusLineText)
		newLines = append(newLines, lines[insertAt:]...)
		lines = newLines
	case updatedIdx < 0:
		insertAt := statusIdx + 1
		newLines := append([]string{}, lines[:insertAt]...)
		newLines = append(newLines, updatedAtText)
		newLines = append(newLines, lines[insertAt:]...)
		lines = newLines
	}

	result := strings.Join(lines, "\n")
	if strings.HasSuffix(content, "\n") && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result, nil
}
