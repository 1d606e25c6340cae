package prompt

import (
	"testing"

	"github.com/chzyer/readline"
)

func TestRuneFilter_CtrlJToNewline(t *testing.T) {
	got, ok := RuneFilter(readline.CharCtrlJ)
	if !ok {
		t.Fatalf("expected rune to be processed")
	}
	if got != '\n' {
		t.Fatalf("expected newline rune, got %q", got)
	}
}

func TestRuneFilter_EnterUnchanged(t *testing.T) {
	got, ok := RuneFilter(readline.CharEnter)
	if !ok {
		t.Fatalf("expected rune to be processed")
	}
	if got != readline.CharEnter {
		t.Fatalf("expected enter rune %q, got %q", readline.CharEnter, got)
	}
}

func TestNormalize_TrimsOuterWhitespace(t *testing.T) {
	raw := "  \nfirst line\nsecond line  \n\n"
	got := Normalize(raw)
	want := "first line\nsecond line"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalize_WhitespaceOnlyBecomesEmpty(t *testing.T) {
	got := Normalize(" \n\t \n")
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
