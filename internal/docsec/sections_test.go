package docsec

import "testing"

const sampleSpec = `# Title

## Purpose

This spec describes the widget subsystem in reasonable detail for testing.

## Requirements

### Requirement: Widgets SHALL spin

Widgets must rotate continuously.

#### Scenario: Given power, widget spins

When power is applied the widget begins spinning within 1 second.

#### Scenario: Given no power, widget is still

When power is removed the widget stops within 1 second.

### Requirement: Widgets MUST be colorful

#### Scenario: Default color

Widgets default to blue.
`

func TestParse_Sections(t *testing.T) {
	doc := Parse(sampleSpec)
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	purpose, ok := doc.GetSection("Purpose")
	if !ok {
		t.Fatal("expected Purpose section")
	}
	if purpose.Body == "" {
		t.Fatal("expected non-empty purpose body")
	}
}

func TestDocument_Requirements(t *testing.T) {
	doc := Parse(sampleSpec)
	reqs := doc.Requirements()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if len(reqs[0].Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios in first requirement, got %d", len(reqs[0].Scenarios))
	}
	if len(reqs[1].Scenarios) != 1 {
		t.Fatalf("expected 1 scenario in second requirement, got %d", len(reqs[1].Scenarios))
	}
}

func TestHasUnresolvedPlaceholders(t *testing.T) {
	doc := Parse("## Purpose\n\n<!-- TODO: fill this in -->\n")
	if !doc.HasUnresolvedPlaceholders() {
		t.Fatal("expected unresolved placeholder to be detected")
	}
}
