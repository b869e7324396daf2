// Package score derives a compliance report from a check run. The report is
// a pure function of (rule set, document, violations), recomputed per run.
package score

import (
	"checkdoc/internal/checker"
	"checkdoc/internal/document"
	"checkdoc/internal/ruleset"
)

// ComplianceReport aggregates a single check run. The compliance percentage
// covers MUST rules only; SHOULD/MAY violations are reported but do not
// lower the score.
type ComplianceReport struct {
	RuleSetName    string
	RuleSetVersion string
	DocumentPath   string

	TotalRules     int
	ApplicableMust int
	PassedMust     int
	FailedMust     int

	// NoApplicableRules flags the 100% that comes from having nothing to
	// check, so it is never mistaken for a genuine pass.
	NoApplicableRules bool

	Percentage float64

	Violations []checker.Violation

	// Rules records the per-rule outcome in rule set order.
	Rules []RuleOutcome
}

// RuleOutcome is the status of one rule after a run: "pass", "fail" or
// "n/a" when the rule had nothing to judge.
type RuleOutcome struct {
	ID          string
	Severity    ruleset.Severity
	Description string
	Status      string
	Violations  int
}

// MustViolations counts violations carrying MUST severity.
func (r *ComplianceReport) MustViolations() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == ruleset.SeverityMust {
			n++
		}
	}
	return n
}

// Score builds the compliance report for one document run.
func Score(rs *ruleset.RuleSet, doc *document.Document, violations []checker.Violation) *ComplianceReport {
	report := &ComplianceReport{
		RuleSetName:    rs.Name,
		RuleSetVersion: rs.Version,
		DocumentPath:   doc.Path,
		TotalRules:     len(rs.Rules),
		Violations:     violations,
		Rules:          make([]RuleOutcome, 0, len(rs.Rules)),
	}

	counts := make(map[string]int)
	for _, v := range violations {
		counts[v.RuleID]++
	}

	for _, rule := range rs.Rules {
		// A rule is applicable when its evaluator has something to judge,
		// or when it produced violations (evaluation errors included).
		applicable := rule.Check.AppliesTo(doc) || counts[rule.ID] > 0
		outcome := RuleOutcome{
			ID:          rule.ID,
			Severity:    rule.Severity,
			Description: rule.Description,
			Violations:  counts[rule.ID],
		}
		switch {
		case !applicable:
			outcome.Status = "n/a"
		case counts[rule.ID] > 0:
			outcome.Status = "fail"
		default:
			outcome.Status = "pass"
		}
		report.Rules = append(report.Rules, outcome)

		if rule.Severity != ruleset.SeverityMust || !applicable {
			continue
		}
		report.ApplicableMust++
		if counts[rule.ID] > 0 {
			report.FailedMust++
		} else {
			report.PassedMust++
		}
	}

	if report.ApplicableMust == 0 {
		report.NoApplicableRules = true
		report.Percentage = 100
		return report
	}

	report.Percentage = float64(report.PassedMust) / float64(report.ApplicableMust) * 100
	return report
}
