// Package prompt implements the interactive multiline input used by
// `spool create change --interactive`.
//
// Grounded on the teacher's dropped spec-input prompt (pkg/cli's
// specInputRuneFilter/normalizeSpecAnswer, evidenced by
// spec_input_test.go): Ctrl-J inserts a newline so Enter can submit a
// multiline answer, and the final answer is trimmed of a blank prologue
// and epilogue.
package prompt

import (
	"strings"

	"github.com/chzyer/readline"
)

// RuneFilter remaps Ctrl-J to a literal newline, leaving every other rune
// (including Enter) unchanged, so a readline.Instance can collect a
// multiline answer terminated by Enter on its own.
func RuneFilter(r rune) (rune, bool) {
	if r == readline.CharCtrlJ {
		return '\n', true
	}
	return r, true
}

// Normalize trims a leading/trailing blank line or whitespace from a raw
// multiline answer, collapsing a whitespace-only answer to "".
func Normalize(raw string) string {
	lines := strings.Split(raw, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// MultilineAnswer prompts the user for a free-form multiline answer,
// submitted with Enter on an empty trailing line. Returns the normalized
// text.
func MultilineAnswer(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		FuncFilterInputRune: RuneFilter,
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if line == "" && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	return Normalize(strings.Join(lines, "\n")), nil
}
