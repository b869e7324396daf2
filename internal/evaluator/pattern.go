package evaluator

import (
	"fmt"
	"regexp"
	"strings"

	"checkdoc/internal/document"
)

// patternForbidden fails every in-scope unit matching one of the forbidden
// patterns, e.g. banned vocabulary.
type patternForbidden struct {
	patterns []*regexp.Regexp
	scope    []document.UnitKind
}

type patternForbiddenParams struct {
	Patterns []string `yaml:"patterns"`
	Scope    []string `yaml:"scope"`
}

func newPatternForbidden(params map[string]any) (Evaluator, error) {
	var p patternForbiddenParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Patterns) == 0 {
		return nil, fmt.Errorf("pattern-forbidden requires at least one pattern")
	}
	compiled, err := compileAll(p.Patterns)
	if err != nil {
		return nil, err
	}
	scope, err := parseScope(p.Scope)
	if err != nil {
		return nil, err
	}
	return &patternForbidden{patterns: compiled, scope: scope}, nil
}

func (e *patternForbidden) Kind() string { return "pattern-forbidden" }

func (e *patternForbidden) AppliesTo(doc *document.Document) bool {
	return len(doc.UnitsOfKind(e.scope...)) > 0
}

func (e *patternForbidden) Evaluate(doc *document.Document) []Finding {
	var findings []Finding
	for _, unit := range doc.UnitsOfKind(e.scope...) {
		unit := unit
		for _, re := range e.patterns {
			match := re.FindString(unit.Text)
			if match == "" {
				continue
			}
			findings = append(findings, Finding{
				StartLine: matchLine(unit, match),
				EndLine:   matchLine(unit, match),
				Matched:   match,
				Detail:    fmt.Sprintf("forbidden pattern %q matched %q", re.String(), match),
				Unit:      &unit,
			})
		}
	}
	return findings
}

// patternRequired fails once if no in-scope unit matches the required
// pattern, e.g. "must declare target audience".
type patternRequired struct {
	pattern *regexp.Regexp
	scope   []document.UnitKind
}

type patternRequiredParams struct {
	Pattern string   `yaml:"pattern"`
	Scope   []string `yaml:"scope"`
}

func newPatternRequired(params map[string]any) (Evaluator, error) {
	var p patternRequiredParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Pattern == "" {
		return nil, fmt.Errorf("pattern-required requires a pattern")
	}
	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", p.Pattern, err)
	}
	scope, err := parseScope(p.Scope)
	if err != nil {
		return nil, err
	}
	return &patternRequired{pattern: re, scope: scope}, nil
}

func (e *patternRequired) Kind() string { return "pattern-required" }

func (e *patternRequired) AppliesTo(doc *document.Document) bool {
	return len(doc.Units) > 0
}

func (e *patternRequired) Evaluate(doc *document.Document) []Finding {
	// An empty document has nothing to judge; the rule is simply not
	// applicable then.
	if len(doc.Units) == 0 {
		return nil
	}
	for _, unit := range doc.UnitsOfKind(e.scope...) {
		if e.pattern.MatchString(unit.Text) {
			return nil
		}
	}
	return []Finding{{
		StartLine: 1,
		EndLine:   1,
		Detail:    fmt.Sprintf("no unit matches required pattern %q", e.pattern.String()),
	}}
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// matchLine resolves the source line of the first occurrence of match within
// the unit. Code block text starts one line after the opening fence.
func matchLine(unit document.Unit, match string) int {
	base := unit.StartLine
	if unit.Kind == document.KindCodeBlock {
		base++
	}
	for i, line := range strings.Split(unit.Text, "\n") {
		if strings.Contains(line, match) {
			return base + i
		}
	}
	return unit.StartLine
}
