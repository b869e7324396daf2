package ruleset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"checkdoc/internal/evaluator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingAt(line int, matched string) evaluator.Finding {
	return evaluator.Finding{StartLine: line, EndLine: line, Matched: matched}
}

const validRuleSet = `
name: elearning-standards
version: "1.2"
rules:
  - id: no-banned-terms
    severity: MUST
    description: Banned vocabulary must not appear.
    evaluator: pattern-forbidden
    params:
      patterns: ["(?i)simply", "(?i)obviously"]
    message: avoid "{matched}"
    fix: ""
  - id: audience-declared
    severity: should
    evaluator: pattern-required
    params:
      pattern: "(?i)target audience"
`

func TestParse_ValidYAML(t *testing.T) {
	rs, err := Parse([]byte(validRuleSet), "fallback")
	require.NoError(t, err)

	assert.Equal(t, "elearning-standards", rs.Name)
	assert.Equal(t, "1.2", rs.Version)
	require.Len(t, rs.Rules, 2)

	assert.Equal(t, SeverityMust, rs.Rules[0].Severity)
	assert.Equal(t, SeverityShould, rs.Rules[1].Severity)
	require.NotNil(t, rs.Rules[0].Check)
	assert.Equal(t, "pattern-forbidden", rs.Rules[0].Check.Kind())

	assert.Len(t, rs.MustRules(), 1)
}

func TestParse_ValidJSON(t *testing.T) {
	src := `{
  "name": "json-rules",
  "rules": [
    {"id": "r1", "severity": "MAY", "evaluator": "pattern-required",
     "params": {"pattern": "Objectives"}}
  ]
}`
	rs, err := Parse([]byte(src), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "json-rules", rs.Name)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, SeverityMay, rs.Rules[0].Severity)
}

func TestParse_MissingID(t *testing.T) {
	src := `
rules:
  - severity: MUST
    evaluator: pattern-required
    params: {pattern: x}
`
	_, err := Parse([]byte(src), "f")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 0, parseErr.Index)
	assert.Contains(t, parseErr.Error(), "missing id")
}

func TestParse_InvalidSeverity(t *testing.T) {
	src := `
rules:
  - id: r1
    severity: CRITICAL
    evaluator: pattern-required
    params: {pattern: x}
`
	_, err := Parse([]byte(src), "f")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "invalid severity")
}

func TestParse_UnknownEvaluator(t *testing.T) {
	src := `
rules:
  - id: r1
    severity: MUST
    evaluator: vibes
`
	_, err := Parse([]byte(src), "f")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "unknown evaluator")
}

func TestParse_BadParams(t *testing.T) {
	src := `
rules:
  - id: r1
    severity: MUST
    evaluator: pattern-forbidden
    params:
      pattern: "not-a-list-key"
`
	_, err := Parse([]byte(src), "f")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "r1", parseErr.ID)
}

func TestParse_DuplicateID(t *testing.T) {
	src := `
rules:
  - id: r1
    severity: MUST
    evaluator: pattern-required
    params: {pattern: a}
  - id: r1
    severity: MAY
    evaluator: pattern-required
    params: {pattern: b}
`
	_, err := Parse([]byte(src), "f")
	var dupErr *DuplicateIDError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "r1", dupErr.ID)
}

func TestParse_EmptyRuleSet(t *testing.T) {
	_, err := Parse([]byte("name: empty\n"), "f")
	require.Error(t, err)
}

func TestLoad_FallbackName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "house-style.yaml")
	src := `
rules:
  - id: r1
    severity: MUST
    evaluator: pattern-required
    params: {pattern: x}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	rs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "house-style", rs.Name)
}

func TestRenderMessageAndFix(t *testing.T) {
	r := Rule{Message: `avoid "{matched}" on line {line}`, Fix: "use {matched}-free phrasing"}
	msg := r.RenderMessage(findingAt(12, "simply"))
	assert.Equal(t, `avoid "simply" on line 12`, msg)
	assert.Equal(t, "use simply-free phrasing", r.RenderFix("simply"))

	// Empty template falls back to the evaluator detail.
	r2 := Rule{}
	f := findingAt(3, "x")
	f.Detail = "detail text"
	assert.Equal(t, "detail text", r2.RenderMessage(f))
	assert.Equal(t, "", r2.RenderFix("x"))
}
