package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNameOnly(t *testing.T) {
	out := "docs/guide.md\nREADME.md\n\n  \ninternal/notes.md\n"
	assert.Equal(t, []string{"docs/guide.md", "README.md", "internal/notes.md"}, parseNameOnly(out))
}

func TestParseNameOnly_Empty(t *testing.T) {
	assert.Nil(t, parseNameOnly(""))
	assert.Nil(t, parseNameOnly("\n\n"))
}
