package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkdoc/internal/checker"
	"checkdoc/internal/document"
	"checkdoc/internal/evaluator"
	"checkdoc/internal/ruleset"
)

// fixedEvaluator reports a fixed applicability, letting tests shape the
// denominator without real document content.
type fixedEvaluator struct {
	applies bool
}

func (f fixedEvaluator) Kind() string                                    { return "fixed" }
func (f fixedEvaluator) AppliesTo(*document.Document) bool               { return f.applies }
func (f fixedEvaluator) Evaluate(*document.Document) []evaluator.Finding { return nil }

func rule(id string, sev ruleset.Severity, applies bool) ruleset.Rule {
	return ruleset.Rule{ID: id, Severity: sev, Evaluator: "fixed", Check: fixedEvaluator{applies: applies}}
}

func doc(t *testing.T, content string) *document.Document {
	t.Helper()
	d, err := document.Parse("doc.md", []byte(content))
	require.NoError(t, err)
	return d
}

func TestScore_MustPercentage(t *testing.T) {
	rs := &ruleset.RuleSet{Name: "house", Version: "1", Rules: []ruleset.Rule{
		rule("m1", ruleset.SeverityMust, true),
		rule("m2", ruleset.SeverityMust, true),
		rule("m3", ruleset.SeverityMust, true),
		rule("m4", ruleset.SeverityMust, true),
		rule("s1", ruleset.SeverityShould, true),
	}}
	violations := []checker.Violation{
		{RuleID: "m2", Severity: ruleset.SeverityMust, StartLine: 3},
		{RuleID: "s1", Severity: ruleset.SeverityShould, StartLine: 5},
	}

	rep := Score(rs, doc(t, "# Title\n"), violations)
	assert.Equal(t, 5, rep.TotalRules)
	assert.Equal(t, 4, rep.ApplicableMust)
	assert.Equal(t, 3, rep.PassedMust)
	assert.Equal(t, 1, rep.FailedMust)
	assert.InDelta(t, 75.0, rep.Percentage, 0.001)
	assert.False(t, rep.NoApplicableRules)

	// The SHOULD violation is reported but does not lower the score.
	assert.Equal(t, 1, rep.MustViolations())
	assert.Len(t, rep.Violations, 2)
}

func TestScore_NoApplicableMustRules(t *testing.T) {
	rs := &ruleset.RuleSet{Name: "house", Rules: []ruleset.Rule{
		rule("m1", ruleset.SeverityMust, false),
		rule("s1", ruleset.SeverityShould, true),
	}}

	rep := Score(rs, doc(t, ""), nil)
	assert.True(t, rep.NoApplicableRules)
	assert.Equal(t, 0, rep.ApplicableMust)
	assert.InDelta(t, 100.0, rep.Percentage, 0.001)
}

func TestScore_RuleOutcomesInSetOrder(t *testing.T) {
	rs := &ruleset.RuleSet{Name: "house", Rules: []ruleset.Rule{
		rule("z-rule", ruleset.SeverityMust, true),
		rule("a-rule", ruleset.SeverityShould, true),
		rule("m-rule", ruleset.SeverityMay, false),
	}}
	violations := []checker.Violation{
		{RuleID: "a-rule", Severity: ruleset.SeverityShould, StartLine: 2},
		{RuleID: "a-rule", Severity: ruleset.SeverityShould, StartLine: 9},
	}

	rep := Score(rs, doc(t, "# Title\n"), violations)
	require.Len(t, rep.Rules, 3)
	assert.Equal(t, "z-rule", rep.Rules[0].ID)
	assert.Equal(t, "pass", rep.Rules[0].Status)
	assert.Equal(t, "fail", rep.Rules[1].Status)
	assert.Equal(t, 2, rep.Rules[1].Violations)
	assert.Equal(t, "n/a", rep.Rules[2].Status)
}

func TestScore_EvalErrorCountsAsApplicableFailure(t *testing.T) {
	// A rule whose evaluator failed is applicable even when AppliesTo says
	// otherwise: the failure must drag the score down.
	rs := &ruleset.RuleSet{Name: "house", Rules: []ruleset.Rule{
		rule("broken", ruleset.SeverityMust, false),
		rule("fine", ruleset.SeverityMust, true),
	}}
	violations := []checker.Violation{
		{RuleID: "broken", Severity: ruleset.SeverityMust, StartLine: 1, EvalError: true},
	}

	rep := Score(rs, doc(t, "# Title\n"), violations)
	assert.Equal(t, 2, rep.ApplicableMust)
	assert.Equal(t, 1, rep.FailedMust)
	assert.InDelta(t, 50.0, rep.Percentage, 0.001)
}
