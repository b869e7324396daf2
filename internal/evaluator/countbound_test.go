package evaluator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraphOfWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n)) + "\n"
}

func TestCountBound_WordBoundaryInclusive(t *testing.T) {
	e, err := New("count-bound", map[string]any{
		"metric": "words",
		"scope":  []string{"paragraph"},
		"max":    150,
	})
	require.NoError(t, err)

	// Exactly the maximum passes.
	assert.Empty(t, e.Evaluate(parseDoc(t, paragraphOfWords(150))))

	// One over fails.
	findings := e.Evaluate(parseDoc(t, paragraphOfWords(151)))
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Detail, "151 words")
}

func TestCountBound_MinWords(t *testing.T) {
	e, err := New("count-bound", map[string]any{
		"metric": "words",
		"scope":  []string{"paragraph"},
		"min":    5,
	})
	require.NoError(t, err)

	findings := e.Evaluate(parseDoc(t, "too short\n"))
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Detail, "at least 5")
}

func TestCountBound_UnitsMetric(t *testing.T) {
	e, err := New("count-bound", map[string]any{
		"metric": "units",
		"scope":  []string{"list-item"},
		"min":    2,
		"max":    4,
	})
	require.NoError(t, err)

	ok := parseDoc(t, "- a\n- b\n- c\n")
	assert.Empty(t, e.Evaluate(ok))

	tooMany := parseDoc(t, "- a\n- b\n- c\n- d\n- e\n")
	findings := e.Evaluate(tooMany)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Detail, "5 matching units")
}

func TestCountBound_InvalidParams(t *testing.T) {
	_, err := New("count-bound", map[string]any{"metric": "words"})
	assert.Error(t, err)

	_, err = New("count-bound", map[string]any{"metric": "pages", "max": 3})
	assert.Error(t, err)

	_, err = New("count-bound", map[string]any{"metric": "words", "min": 10, "max": 5})
	assert.Error(t, err)
}

func TestCountBound_NotApplicableWithoutScopeUnits(t *testing.T) {
	e, err := New("count-bound", map[string]any{
		"metric": "words",
		"scope":  []string{"code-block"},
		"max":    10,
	})
	require.NoError(t, err)

	doc := parseDoc(t, "Just prose, no code.\n")
	assert.False(t, e.AppliesTo(doc))
	assert.Empty(t, e.Evaluate(doc))
}
