// Package ids parses and canonicalizes module and change identifiers.
//
// Grounded on the original Rust change-ID grammar: module numbers are
// always three digits, change numbers are at least two digits but widen
// past 99, and names are lowercase kebab-case.
package ids

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const maxModuleNumber = 999

var moduleDirRe = regexp.MustCompile(`^(\d+)_(.+)$`)

// ParseModuleID accepts a bare integer ("5"), a zero-padded number ("005"),
// or a full directory-style id ("005_auth") and returns the canonical
// three-digit zero-padded module number.
func ParseModuleID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("module id is empty")
	}

	numPart := trimmed
	if m := moduleDirRe.FindStringSubmatch(trimmed); m != nil {
		numPart = m[1]
	}

	n, err := strconv.Atoi(numPart)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid module id %q: must be a non-negative integer", input)
	}
	if n > maxModuleNumber {
		return "", fmt.Errorf("invalid module id %q: module numbers must be between 0 and %d", input, maxModuleNumber)
	}

	return fmt.Sprintf("%03d", n), nil
}

// FormatModuleDir returns the canonical "NNN_name" directory name for a
// module given its canonical number and slug.
func FormatModuleDir(moduleNum, slug string) string {
	return fmt.Sprintf("%s_%s", moduleNum, slug)
}
