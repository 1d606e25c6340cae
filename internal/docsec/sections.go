// Package docsec splits markdown documents into sections by heading level
// and extracts the structures validation and catalog code need: named
// sections, requirement blocks and their scenarios.
//
// Generalized from the teacher's internal/document package's heading
// splitter, extended with the ### Requirement / #### Scenario nesting
// spec.md requires for spec documents.
package docsec

import (
	"regexp"
	"strings"
)

// Section is a single "##"-level heading and its body text.
type Section struct {
	Title string
	Body  string
	Line  int // 1-based line number of the heading
}

// Document is a parsed markdown file.
type Document struct {
	Raw      string
	Sections []Section
}

var h2Re = regexp.MustCompile(`(?m)^##\s+(.+?)\s*$`)

// Parse splits raw markdown into ## sections. Content before the first ##
// heading is discarded (matching the teacher's sectioning behavior).
func Parse(raw string) *Document {
	doc := &Document{Raw: raw}

	lines := strings.Split(raw, "\n")
	headingLines := h2Re.FindAllStringSubmatchIndex(raw, -1)
	if len(headingLines) == 0 {
		return doc
	}

	// map byte offset -> line number
	offsetToLine := func(offset int) int {
		return strings.Count(raw[:offset], "\n") + 1
	}

	matches := h2Re.FindAllStringSubmatch(raw, -1)
	idxs := h2Re.FindAllStringIndex(raw, -1)

	for i, m := range matches {
		title := strings.TrimSpace(m[1])
		start := idxs[i][1]
		end := len(raw)
		if i+1 < len(idxs) {
			end = idxs[i+1][0]
		}
		body := strings.TrimSpace(raw[start:end])
		doc.Sections = append(doc.Sections, Section{
			Title: title,
			Body:  body,
			Line:  offsetToLine(idxs[i][0]),
		})
	}
	_ = lines
	return doc
}

// GetSection returns the first section whose title matches name
// case-insensitively.
func (d *Document) GetSection(name string) (Section, bool) {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Title, name) {
			return s, true
		}
	}
	return Section{}, false
}

// HasSection reports whether a section with the given title exists.
func (d *Document) HasSection(name string) bool {
	_, ok := d.GetSection(name)
	return ok
}

var todoRe = regexp.MustCompile(`(?i)<!--\s*TODO:.*?-->`)

// HasUnresolvedPlaceholders reports whether the document still contains a
// TODO placeholder comment.
func (d *Document) HasUnresolvedPlaceholders() bool {
	return todoRe.MatchString(d.Raw)
}

// GetUnresolvedPlaceholders returns every TODO placeholder comment found.
func (d *Document) GetUnresolvedPlaceholders() []string {
	return todoRe.FindAllString(d.Raw, -1)
}

// Requirement is a "### Requirement: <title>" block within a Requirements
// section, containing one or more scenarios.
type Requirement struct {
	Title     string
	Body      string
	Line      int
	Scenarios []Scenario
}

// Scenario is a "#### Scenario: <title>" block within a requirement.
type Scenario struct {
	Title string
	Body  string
	Line  int
}

var (
	h3Re = regexp.MustCompile(`(?m)^###\s+Requirement:\s*(.+?)\s*$`)
	h4Re = regexp.MustCompile(`(?m)^####\s+Scenario:\s*(.+?)\s*$`)
)

// Requirements parses the "## Requirements" section body (if present) into
// its constituent Requirement/Scenario blocks.
func (d *Document) Requirements() []Requirement {
	sec, ok := d.GetSection("Requirements")
	if !ok {
		return nil
	}
	return parseRequirements(d.Raw, sec)
}

func parseRequirements(raw string, sec Section) []Requirement {
	// re-locate the section body's absolute offset within raw so line
	// numbers stay correct
	offset := strings.Index(raw, sec.Body)
	if offset < 0 {
		offset = 0
	}
	body := sec.Body

	idxs := h3Re.FindAllStringIndex(body, -1)
	matches := h3Re.FindAllStringSubmatch(body, -1)
	if len(idxs) == 0 {
		return nil
	}

	offsetToLine := func(localOffset int) int {
		return strings.Count(raw[:offset+localOffset], "\n") + 1
	}

	var reqs []Requirement
	for i, m := range matches {
		start := idxs[i][1]
		end := len(body)
		if i+1 < len(idxs) {
			end = idxs[i+1][0]
		}
		reqBody := strings.TrimSpace(body[start:end])
		req := Requirement{
			Title: strings.TrimSpace(m[1]),
			Body:  reqBody,
			Line:  offsetToLine(idxs[i][0]),
		}
		req.Scenarios = parseScenarios(raw, reqBody, offset+start)
		reqs = append(reqs, req)
	}
	return reqs
}

func parseScenarios(raw, reqBody string, baseOffset int) []Scenario {
	idxs := h4Re.FindAllStringIndex(reqBody, -1)
	matches := h4Re.FindAllStringSubmatch(reqBody, -1)
	if len(idxs) == 0 {
		return nil
	}

	offsetToLine := func(localOffset int) int {
		return strings.Count(raw[:baseOffset+localOffset], "\n") + 1
	}

	var scenarios []Scenario
	for i, m := range matches {
		start := idxs[i][1]
		end := len(reqBody)
		if i+1 < len(idxs) {
			end = idxs[i+1][0]
		}
		scenarios = append(scenarios, Scenario{
			Title: strings.TrimSpace(m[1]),
			Body:  strings.TrimSpace(reqBody[start:end]),
			Line:  offsetToLine(idxs[i][0]),
		})
	}
	return scenarios
}
