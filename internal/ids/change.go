package ids

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ChangeID is the canonical parsed form of a change identifier, e.g.
// "006-05_add-widgets".
type ChangeID struct {
	ModuleNum string // zero-padded to 3 digits
	ChangeNum string // zero-padded to at least 2 digits, widened past 99
	Name      string // lowercase kebab-case

	moduleInt int
	changeInt int
}

// ModuleInt returns the numeric module number.
func (c ChangeID) ModuleInt() int { return c.moduleInt }

// ChangeInt returns the numeric change number.
func (c ChangeID) ChangeInt() int { return c.changeInt }

// Canonical returns the canonical directory-name form "NNN-MM_name".
func (c ChangeID) Canonical() string {
	return fmt.Sprintf("%s-%s_%s", c.ModuleNum, c.ChangeNum, c.Name)
}

// Prefix returns the "NNN-MM_" prefix used for flexible directory matching.
func (c ChangeID) Prefix() string {
	return fmt.Sprintf("%s-%s_", c.ModuleNum, c.ChangeNum)
}

var (
	changeIDRe    = regexp.MustCompile(`^(\d+)-(\d+)_([a-zA-Z][a-zA-Z0-9-]*)$`)
	wrongSepRe    = regexp.MustCompile(`^\d+_\d+_.+$`)
	missingNameRe = regexp.MustCompile(`^\d+-\d+$`)
)

// ParseChangeID parses a user-supplied or on-disk change identifier into
// its canonical form.
//
// Two malformed shapes get a distinguishing hint: "NNN_MM_name" (wrong
// separator between module and change number) and "NNN-MM" (missing name
// suffix). Any other shape gets a generic invalid-format error.
func ParseChangeID(input string) (ChangeID, error) {
	trimmed := strings.TrimSpace(input)

	m := changeIDRe.FindStringSubmatch(trimmed)
	if m == nil {
		if wrongSepRe.MatchString(trimmed) {
			return ChangeID{}, fmt.Errorf(
				"Invalid change ID format: %q (hint: use \"-\" to separate the module number from the change number, e.g. \"001-02_name\")",
				trimmed)
		}
		if missingNameRe.MatchString(trimmed) {
			return ChangeID{}, fmt.Errorf(
				"Invalid change ID format: %q (hint: a name suffix is required, e.g. \"001-02_name\")",
				trimmed)
		}
		return ChangeID{}, fmt.Errorf("Invalid change ID format: %q", trimmed)
	}

	moduleInt, err := strconv.Atoi(m[1])
	if err != nil || moduleInt > maxModuleNumber {
		return ChangeID{}, fmt.Errorf("invalid change ID %q: module numbers must be between 0 and %d", trimmed, maxModuleNumber)
	}
	changeInt, err := strconv.Atoi(m[2])
	if err != nil || changeInt < 0 {
		return ChangeID{}, fmt.Errorf("invalid change ID %q: change number must be non-negative", trimmed)
	}

	changeNumStr := fmt.Sprintf("%02d", changeInt)
	if changeInt > 99 {
		changeNumStr = strconv.Itoa(changeInt)
	}

	return ChangeID{
		ModuleNum: fmt.Sprintf("%03d", moduleInt),
		ChangeNum: changeNumStr,
		Name:      strings.ToLower(m[3]),
		moduleInt: moduleInt,
		changeInt: changeInt,
	}, nil
}

// MatchesPrefix reports whether a directory name's "NNN-MM_" prefix
// numerically matches this change ID, regardless of the other side's
// zero-padding.
func (c ChangeID) MatchesPrefix(dirName string) bool {
	other, err := ParseChangeID(dirName)
	if err != nil {
		return false
	}
	return other.moduleInt == c.moduleInt && other.changeInt == c.changeInt
}
