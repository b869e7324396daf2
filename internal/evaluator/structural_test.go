package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralOrder_InOrder(t *testing.T) {
	e, err := New("structural-order", map[string]any{
		"sequence": []string{"^Introduction", "^Methods", "^Results"},
	})
	require.NoError(t, err)

	doc := parseDoc(t, "# Introduction\n\ntext\n\n# Methods\n\n# Appendix\n\n# Results\n")
	assert.Empty(t, e.Evaluate(doc))
}

func TestStructuralOrder_OutOfOrder(t *testing.T) {
	e, err := New("structural-order", map[string]any{
		"sequence": []string{"^Introduction", "^Methods", "^Results"},
	})
	require.NoError(t, err)

	doc := parseDoc(t, "# Introduction\n\n# Results\n\n# Methods\n")
	findings := e.Evaluate(doc)
	require.Len(t, findings, 1)
	assert.Equal(t, "Results", findings[0].Matched)
	assert.Equal(t, 3, findings[0].StartLine)
	assert.Contains(t, findings[0].Detail, "appears before")
}

func TestStructuralOrder_MissingHeading(t *testing.T) {
	e, err := New("structural-order", map[string]any{
		"sequence": []string{"^Introduction", "^Methods"},
	})
	require.NoError(t, err)

	doc := parseDoc(t, "# Introduction\n\nno methods heading here\n")
	findings := e.Evaluate(doc)
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].StartLine)
	assert.Contains(t, findings[0].Detail, "is missing")
}

func TestStructuralOrder_EmptyDocumentNotApplicable(t *testing.T) {
	e, err := New("structural-order", map[string]any{
		"sequence": []string{"^Anything"},
	})
	require.NoError(t, err)

	doc := parseDoc(t, "")
	assert.False(t, e.AppliesTo(doc))
	assert.Empty(t, e.Evaluate(doc))
}

func TestStructuralOrder_RequiresSequence(t *testing.T) {
	_, err := New("structural-order", map[string]any{})
	assert.Error(t, err)

	_, err = New("structural-order", map[string]any{"sequence": []string{"("}})
	assert.Error(t, err)
}
