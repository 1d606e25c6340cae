package cli

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Add Widgets":    "add-widgets",
		"  spaced  out ": "spaced-out",
		"Already-kebab":  "already-kebab",
		"!!!":            "",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCommandOrder_CoreCommandsRegistered(t *testing.T) {
	for _, name := range []string{"init", "create", "list", "show", "validate", "tasks", "workflow", "archive", "config"} {
		if _, ok := commandOrder[name]; !ok {
			t.Fatalf("expected %q to have a display order", name)
		}
	}
}
