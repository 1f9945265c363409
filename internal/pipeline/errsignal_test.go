package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

func TestExtractErrorSignal(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    models.ErrorSignal
	}{
		{
			name:        "TypeError message",
			description: "TypeError: cannot read x",
			expected: models.ErrorSignal{
				ErrorType:    "TypeError",
				ErrorMessage: "cannot read x",
			},
		},
		{
			name:        "Exception message",
			description: "the service throws NullPointerException: value was null",
			expected: models.ErrorSignal{
				ErrorType:    "NullPointerException",
				ErrorMessage: "value was null",
			},
		},
		{
			name:        "File and line locator",
			description: "crash happens in src/lib/session.ts:42 on login",
			expected: models.ErrorSignal{
				FilePath:   "src/lib/session.ts",
				LineNumber: 42,
			},
		},
		{
			name:        "Test failure line",
			description: "FAIL src/session.test.ts\nExpected true but got false",
			expected: models.ErrorSignal{
				TestFailure: "FAIL src/session.test.ts",
			},
		},
		{
			name:        "No signal",
			description: "the button looks misaligned on mobile",
			expected:    models.ErrorSignal{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractErrorSignal(tt.description)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractErrorSignalStackTrace(t *testing.T) {
	description := "TypeError: cannot read x\n" +
		"    at parse (src/parser.ts:10:5)\n" +
		"    at main (src/index.ts:3:1)\n"

	signal := ExtractErrorSignal(description)

	assert.Equal(t, "TypeError", signal.ErrorType)
	assert.Equal(t, "cannot read x", signal.ErrorMessage)
	assert.Contains(t, signal.StackTrace, "at parse (src/parser.ts:10:5)")
	assert.Contains(t, signal.StackTrace, "at main (src/index.ts:3:1)")
	assert.Equal(t, "src/parser.ts", signal.FilePath)
	assert.Equal(t, 10, signal.LineNumber)
	assert.False(t, signal.Empty())
}

// First match per family wins: a second error message does not overwrite
// the first.
func TestExtractErrorSignalFirstMatchWins(t *testing.T) {
	description := "TypeError: first failure\nRangeError: second failure"

	signal := ExtractErrorSignal(description)

	assert.Equal(t, "TypeError", signal.ErrorType)
	assert.Equal(t, "first failure", signal.ErrorMessage)
}

func TestExtractErrorSignalEmpty(t *testing.T) {
	assert.True(t, ExtractErrorSignal("").Empty())
}
