package mcpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchText(t *testing.T) {
	text := "1. First result\n   A description\n   https://example.com/a\n\n" +
		"2. Second result\n   Another description\n   https://example.com/b"

	results := parseSearchText(text)
	require.Len(t, results, 2)
	assert.Equal(t, "First result", results[0].Title)
	assert.Equal(t, "A description", results[0].Description)
	assert.Equal(t, "https://example.com/a", results[0].URL)
	assert.Equal(t, "Second result", results[1].Title)
}

func TestParseSearchTextPartialBlocks(t *testing.T) {
	results := parseSearchText("1. Title only")
	require.Len(t, results, 1)
	assert.Equal(t, "Title only", results[0].Title)
	assert.Empty(t, results[0].URL)

	assert.Empty(t, parseSearchText(""))
	assert.Empty(t, parseSearchText("\n\n\n"))
}
