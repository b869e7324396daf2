// Package document models a parsed input document as an ordered sequence of
// addressable units with source line ranges.
package document

import "fmt"

// UnitKind identifies the structural kind of a document unit.
type UnitKind string

const (
	KindHeading   UnitKind = "heading"
	KindParagraph UnitKind = "paragraph"
	KindListItem  UnitKind = "list-item"
	KindCodeBlock UnitKind = "code-block"
)

// Unit is one addressable piece of a document. Line numbers are 1-based and
// inclusive.
type Unit struct {
	Kind      UnitKind
	Text      string
	StartLine int
	EndLine   int

	// Level is set for headings (1-6).
	Level int

	// Language is the fenced code block info string, e.g. "go".
	Language string
}

// Document is an immutable parsed document. Units preserve source order.
type Document struct {
	Path  string
	Units []Unit

	// Lines holds the raw source lines for fix/diff rendering.
	Lines []string

	// Frontmatter holds parsed YAML frontmatter, if any.
	Frontmatter map[string]any
}

// Headings returns the document's headings in source order.
func (d *Document) Headings() []Unit {
	var out []Unit
	for _, u := range d.Units {
		if u.Kind == KindHeading {
			out = append(out, u)
		}
	}
	return out
}

// UnitsOfKind returns all units matching one of the given kinds, in source
// order. With no kinds given it returns every unit.
func (d *Document) UnitsOfKind(kinds ...UnitKind) []Unit {
	if len(kinds) == 0 {
		return d.Units
	}
	var out []Unit
	for _, u := range d.Units {
		for _, k := range kinds {
			if u.Kind == k {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// ParseError reports a malformed input document. It is fatal: a run never
// starts on a document that failed to parse.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}
