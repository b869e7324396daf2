// Package ruleset models declarative compliance rule sets. Rules are data:
// each references a registered evaluator by name, so the full rule surface
// stays enumerable and auditable.
package ruleset

import (
	"fmt"
	"strconv"
	"strings"

	"checkdoc/internal/evaluator"
)

// Severity classifies rules per RFC 2119 usage.
type Severity string

const (
	SeverityMust   Severity = "MUST"
	SeverityShould Severity = "SHOULD"
	SeverityMay    Severity = "MAY"
)

// ParseSeverity parses a severity value, case insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityMust:
		return SeverityMust, nil
	case SeverityShould:
		return SeverityShould, nil
	case SeverityMay:
		return SeverityMay, nil
	default:
		return "", fmt.Errorf("invalid severity %q (expected MUST, SHOULD or MAY)", s)
	}
}

// Rule is one compliance rule. Severity and evaluator binding are fixed at
// load time.
type Rule struct {
	ID          string
	Severity    Severity
	Description string
	Evaluator   string
	Params      map[string]any
	Message     string
	Fix         string

	// Check is the evaluator instance resolved from Evaluator/Params.
	Check evaluator.Evaluator
}

// RenderMessage expands the rule's message template for a finding. Supported
// placeholders: {matched}, {line}. An empty template falls back to the
// evaluator's detail text.
func (r Rule) RenderMessage(f evaluator.Finding) string {
	if r.Message == "" {
		return f.Detail
	}
	rep := strings.NewReplacer(
		"{matched}", f.Matched,
		"{line}", strconv.Itoa(f.StartLine),
	)
	return rep.Replace(r.Message)
}

// RenderFix expands the rule's fix template for a matched text, or returns
// "" when the rule carries no rewrite suggestion.
func (r Rule) RenderFix(matched string) string {
	if r.Fix == "" {
		return ""
	}
	return strings.ReplaceAll(r.Fix, "{matched}", matched)
}

// RuleSet is an ordered, immutable collection of rules.
type RuleSet struct {
	Name    string
	Version string
	Rules   []Rule
}

// MustRules returns the rules with MUST severity, in order.
func (rs *RuleSet) MustRules() []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.Severity == SeverityMust {
			out = append(out, r)
		}
	}
	return out
}

// ParseError reports a malformed rule. Load fails fast: there are no
// partial rule sets.
type ParseError struct {
	Index  int // 0-based position in the rules list
	ID     string
	Reason string
}

func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("rule %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("rule %d: %s", e.Index, e.Reason)
}

// DuplicateIDError reports two rules sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.ID)
}
