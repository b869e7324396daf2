// Package checker runs a rule set against a parsed document and collects
// violations. Failures inside a single rule never abort the run: one broken
// rule must not block reporting of all others.
package checker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"checkdoc/internal/document"
	"checkdoc/internal/evaluator"
	"checkdoc/internal/ruleset"

	"golang.org/x/sync/errgroup"
)

// DefaultRuleTimeout bounds a single rule's evaluation wall time.
const DefaultRuleTimeout = 5 * time.Second

// Violation is a recorded failure of a document against a rule. Violations
// are created during a run and never mutated afterwards.
type Violation struct {
	RuleID    string
	Severity  ruleset.Severity
	StartLine int
	EndLine   int
	Matched   string
	Message   string

	// Fix is the suggested replacement for Matched, when the rule carries a
	// fix template.
	Fix string

	// Unit is the offending unit, if the violation is unit-scoped.
	Unit *document.Unit

	// EvalError marks violations synthesized from an evaluator failure
	// (panic or timeout) rather than document content.
	EvalError bool
}

// Options controls a check run.
type Options struct {
	// Parallel evaluates rules concurrently. Output is re-sorted either
	// way, so results are byte-identical to a serial run.
	Parallel bool

	// RuleTimeout bounds each rule's evaluation; zero means
	// DefaultRuleTimeout.
	RuleTimeout time.Duration
}

// Check evaluates every rule of the set against the document and returns
// the deterministically ordered violations.
func Check(ctx context.Context, rs *ruleset.RuleSet, doc *document.Document, opts Options) ([]Violation, error) {
	timeout := opts.RuleTimeout
	if timeout <= 0 {
		timeout = DefaultRuleTimeout
	}

	perRule := make([][]Violation, len(rs.Rules))

	if opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range rs.Rules {
			i := i
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
					perRule[i] = runRule(rs.Rules[i], doc, timeout)
					return nil
				}
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range rs.Rules {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perRule[i] = runRule(rs.Rules[i], doc, timeout)
		}
	}

	var violations []Violation
	for _, vs := range perRule {
		violations = append(violations, vs...)
	}
	sortViolations(violations)
	return violations, nil
}

// runRule evaluates one rule, converting panics and timeouts into a single
// MUST-severity evaluation-error violation.
func runRule(rule ruleset.Rule, doc *document.Document, timeout time.Duration) []Violation {
	type result struct {
		findings []evaluator.Finding
		panicked any
	}

	done := make(chan result, 1)
	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res.panicked = r
			}
			done <- res
		}()
		res.findings = rule.Check.Evaluate(doc)
	}()

	select {
	case res := <-done:
		if res.panicked != nil {
			return []Violation{evalErrorViolation(rule, fmt.Sprintf("evaluator panicked: %v", res.panicked))}
		}
		violations := make([]Violation, 0, len(res.findings))
		for _, f := range res.findings {
			violations = append(violations, Violation{
				RuleID:    rule.ID,
				Severity:  rule.Severity,
				StartLine: f.StartLine,
				EndLine:   f.EndLine,
				Matched:   f.Matched,
				Message:   rule.RenderMessage(f),
				Fix:       rule.RenderFix(f.Matched),
				Unit:      f.Unit,
			})
		}
		return violations
	case <-time.After(timeout):
		// The evaluator goroutine is abandoned; failing the rule beats
		// hanging the whole run.
		return []Violation{evalErrorViolation(rule, fmt.Sprintf("evaluation exceeded %s", timeout))}
	}
}

func evalErrorViolation(rule ruleset.Rule, reason string) Violation {
	return Violation{
		RuleID:    rule.ID,
		Severity:  ruleset.SeverityMust,
		StartLine: 1,
		EndLine:   1,
		Message:   fmt.Sprintf("rule evaluation error: %s", reason),
		EvalError: true,
	}
}

// sortViolations orders by document location, then rule id, then message,
// so rendering is reproducible regardless of evaluation order.
func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].StartLine != violations[j].StartLine {
			return violations[i].StartLine < violations[j].StartLine
		}
		if violations[i].RuleID != violations[j].RuleID {
			return violations[i].RuleID < violations[j].RuleID
		}
		return violations[i].Message < violations[j].Message
	})
}
