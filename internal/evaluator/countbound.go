package evaluator

import (
	"fmt"
	"strings"

	"checkdoc/internal/document"
)

// countBound fails units (or the document) whose measured count falls
// outside [min, max]. Bounds are inclusive: a count of exactly max passes.
type countBound struct {
	metric string
	scope  []document.UnitKind
	min    int
	max    int // -1 means unbounded
}

type countBoundParams struct {
	Metric string   `yaml:"metric"`
	Scope  []string `yaml:"scope"`
	Min    *int     `yaml:"min"`
	Max    *int     `yaml:"max"`
}

func newCountBound(params map[string]any) (Evaluator, error) {
	var p countBoundParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	switch p.Metric {
	case "words", "lines", "units":
	case "":
		return nil, fmt.Errorf("count-bound requires a metric (words, lines or units)")
	default:
		return nil, fmt.Errorf("unknown count-bound metric %q", p.Metric)
	}
	if p.Min == nil && p.Max == nil {
		return nil, fmt.Errorf("count-bound requires min and/or max")
	}
	scope, err := parseScope(p.Scope)
	if err != nil {
		return nil, err
	}
	e := &countBound{metric: p.Metric, scope: scope, min: 0, max: -1}
	if p.Min != nil {
		e.min = *p.Min
	}
	if p.Max != nil {
		e.max = *p.Max
	}
	if e.max >= 0 && e.min > e.max {
		return nil, fmt.Errorf("count-bound min %d exceeds max %d", e.min, e.max)
	}
	return e, nil
}

func (e *countBound) Kind() string { return "count-bound" }

func (e *countBound) AppliesTo(doc *document.Document) bool {
	return len(doc.UnitsOfKind(e.scope...)) > 0
}

func (e *countBound) Evaluate(doc *document.Document) []Finding {
	units := doc.UnitsOfKind(e.scope...)

	// The units metric is a single document-level count of in-scope units,
	// e.g. options per question or scenes per chapter.
	if e.metric == "units" {
		n := len(units)
		if n == 0 || e.inBounds(n) {
			return nil
		}
		return []Finding{{
			StartLine: 1,
			EndLine:   1,
			Detail:    fmt.Sprintf("document has %d matching units, expected %s", n, e.boundsText()),
		}}
	}

	var findings []Finding
	for _, unit := range units {
		unit := unit
		n := e.count(unit.Text)
		if e.inBounds(n) {
			continue
		}
		findings = append(findings, Finding{
			StartLine: unit.StartLine,
			EndLine:   unit.EndLine,
			Detail:    fmt.Sprintf("%s has %d %s, expected %s", unit.Kind, n, e.metric, e.boundsText()),
			Unit:      &unit,
		})
	}
	return findings
}

func (e *countBound) count(text string) int {
	switch e.metric {
	case "words":
		return len(strings.Fields(text))
	case "lines":
		if strings.TrimSpace(text) == "" {
			return 0
		}
		return strings.Count(text, "\n") + 1
	}
	return 0
}

func (e *countBound) inBounds(n int) bool {
	if n < e.min {
		return false
	}
	if e.max >= 0 && n > e.max {
		return false
	}
	return true
}

func (e *countBound) boundsText() string {
	if e.max < 0 {
		return fmt.Sprintf("at least %d", e.min)
	}
	if e.min == 0 {
		return fmt.Sprintf("at most %d", e.max)
	}
	return fmt.Sprintf("between %d and %d", e.min, e.max)
}
