package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name        string
		summary     string
		description string
		expected    []string
	}{
		{
			name:        "Basic extraction",
			summary:     "Null pointer in parser",
			description: "The parser crashes reading tokens",
			expected:    []string{"null", "pointer", "parser", "crashes", "reading", "tokens"},
		},
		{
			name:        "Short tokens dropped",
			summary:     "fix the app now",
			description: "it is bad",
			expected:    nil,
		},
		{
			name:        "Stop words dropped",
			summary:     "this should have been working",
			description: "there would break",
			expected:    []string{"working", "break"},
		},
		{
			name:        "Non-alphabetic tokens dropped",
			summary:     "error in file.ts line:42 module2",
			description: "",
			expected:    []string{"error"},
		},
		{
			name:        "Deduplicated preserving first-seen order",
			summary:     "parser parser tokens",
			description: "tokens parser broken",
			expected:    []string{"parser", "tokens", "broken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractKeywords(tt.summary, tt.description)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractKeywordsIdempotent(t *testing.T) {
	summary := "Authentication tokens expire early"
	description := "Session handling drops tokens unexpectedly during refresh"

	first := ExtractKeywords(summary, description)
	second := ExtractKeywords(summary, description)

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(first), maxKeywords)
}

func TestExtractKeywordsCap(t *testing.T) {
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echofoxtrot", "golfing", "hotels",
		"indigo", "juliet", "kilogram", "limousine", "mikes", "november", "oscar",
		"papaya", "quebec", "romeo", "sierra", "tango", "uniform", "victor",
		"whiskey", "xylophone", "yankee", "zulus",
	}

	result := ExtractKeywords(strings.Join(words, " "), "")
	assert.Len(t, result, maxKeywords)
	assert.Equal(t, words[:maxKeywords], result)
}

func TestExtractKeywordsEmpty(t *testing.T) {
	assert.Empty(t, ExtractKeywords("", ""))
}
