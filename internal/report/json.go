package report

import (
	"encoding/json"
	"fmt"

	"checkdoc/internal/score"
)

// jsonReport is the stable machine-readable serialization of a run.
type jsonReport struct {
	Version  string         `json:"version"`
	RuleSet  jsonRuleSetRef `json:"ruleset"`
	Document string         `json:"document"`
	Summary  jsonSummary    `json:"summary"`
	Rules    []jsonRule     `json:"rules"`
	Findings []jsonFinding  `json:"findings,omitempty"`
}

type jsonRuleSetRef struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type jsonSummary struct {
	TotalRules        int     `json:"total_rules"`
	ApplicableMust    int     `json:"applicable_must_rules"`
	PassedMust        int     `json:"passed_must_rules"`
	FailedMust        int     `json:"failed_must_rules"`
	NoApplicableRules bool    `json:"no_applicable_rules"`
	Percentage        float64 `json:"compliance_percentage"`
}

type jsonRule struct {
	ID         string `json:"id"`
	Severity   string `json:"severity"`
	Status     string `json:"status"`
	Violations int    `json:"violations,omitempty"`
}

type jsonFinding struct {
	RuleID    string `json:"rule_id"`
	Severity  string `json:"severity"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Matched   string `json:"matched,omitempty"`
	Message   string `json:"message"`
	Fix       string `json:"suggested_fix,omitempty"`
	EvalError bool   `json:"evaluation_error,omitempty"`
}

func renderJSON(rep *score.ComplianceReport) (string, error) {
	out := jsonReport{
		Version:  "v1",
		RuleSet:  jsonRuleSetRef{Name: rep.RuleSetName, Version: rep.RuleSetVersion},
		Document: rep.DocumentPath,
		Summary: jsonSummary{
			TotalRules:        rep.TotalRules,
			ApplicableMust:    rep.ApplicableMust,
			PassedMust:        rep.PassedMust,
			FailedMust:        rep.FailedMust,
			NoApplicableRules: rep.NoApplicableRules,
			Percentage:        rep.Percentage,
		},
		Rules: make([]jsonRule, 0, len(rep.Rules)),
	}

	for _, rule := range rep.Rules {
		out.Rules = append(out.Rules, jsonRule{
			ID:         rule.ID,
			Severity:   string(rule.Severity),
			Status:     rule.Status,
			Violations: rule.Violations,
		})
	}
	for _, v := range rep.Violations {
		out.Findings = append(out.Findings, jsonFinding{
			RuleID:    v.RuleID,
			Severity:  string(v.Severity),
			StartLine: v.StartLine,
			EndLine:   v.EndLine,
			Matched:   v.Matched,
			Message:   v.Message,
			Fix:       v.Fix,
			EvalError: v.EvalError,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data) + "\n", nil
}
