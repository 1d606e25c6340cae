package ids

import "testing"

func TestParseModuleID(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5", "005", false},
		{"005", "005", false},
		{"005_auth", "005", false},
		{"999", "999", false},
		{"1000", "", true},
		{"-1", "", true},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseModuleID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseModuleID(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseModuleID(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseModuleID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseChangeID_Canonical(t *testing.T) {
	id, err := ParseChangeID("006-05_add-widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Canonical() != "006-05_add-widgets" {
		t.Fatalf("got %q", id.Canonical())
	}
}

func TestParseChangeID_PadsBothParts(t *testing.T) {
	id, err := ParseChangeID("1-2_example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Canonical() != "001-02_example" {
		t.Fatalf("got %q", id.Canonical())
	}
}

func TestParseChangeID_AllowsLargeChangeNumbers(t *testing.T) {
	id, err := ParseChangeID("1-1234_example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Canonical() != "001-1234_example" {
		t.Fatalf("got %q", id.Canonical())
	}
}

func TestParseChangeID_StripsExcessLeadingZeros(t *testing.T) {
	id, err := ParseChangeID("001-000100_example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Canonical() != "001-100_example" {
		t.Fatalf("got %q", id.Canonical())
	}
}

func TestParseChangeID_WrongSeparatorHint(t *testing.T) {
	_, err := ParseChangeID("001_02_foo")
	if err == nil {
		t.Fatal("expected error")
	}
	if !contains(err.Error(), "Invalid change ID format") && !contains(err.Error(), "invalid change ID format") {
		t.Fatalf("error missing format prefix: %v", err)
	}
	if !contains(err.Error(), "-") {
		t.Fatalf("expected hint mentioning separator, got: %v", err)
	}
}

func TestParseChangeID_MissingNameHint(t *testing.T) {
	_, err := ParseChangeID("1-2")
	if err == nil {
		t.Fatal("expected error")
	}
	if !contains(err.Error(), "name") {
		t.Fatalf("expected hint mentioning name, got: %v", err)
	}
}

func TestChangeID_MatchesPrefix(t *testing.T) {
	id, err := ParseChangeID("6-5_a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.MatchesPrefix("006-05_a") {
		t.Fatal("expected prefix match across differing zero-padding")
	}
	if id.MatchesPrefix("006-06_a") {
		t.Fatal("expected no match for different change number")
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (indexOf(s, sub) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
