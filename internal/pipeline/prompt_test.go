package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

func TestBuildPrompt(t *testing.T) {
	ticket := models.Ticket{
		Key:         "BUG-1",
		Summary:     "Null pointer in parser",
		Description: "TypeError: cannot read x",
		Priority:    "High",
	}
	signal := models.ErrorSignal{
		ErrorType:    "TypeError",
		ErrorMessage: "cannot read x",
	}
	context := []models.CodeContextEntry{
		{Filename: "src/parser.ts", Content: "export function parse() {}"},
	}

	prompt := BuildPrompt(ticket, signal, context)

	assert.Contains(t, prompt, "Ticket: BUG-1")
	assert.Contains(t, prompt, "Summary: Null pointer in parser")
	assert.Contains(t, prompt, "Priority: High")
	assert.Contains(t, prompt, "Error type: TypeError")
	assert.Contains(t, prompt, "File: src/parser.ts")
	assert.Contains(t, prompt, "export function parse() {}")
	assert.Contains(t, prompt, "Output code only")
}

func TestBuildPromptOmitsEmptyBlocks(t *testing.T) {
	ticket := models.Ticket{
		Key:         "BUG-2",
		Summary:     "Broken layout",
		Description: "looks wrong",
	}

	prompt := BuildPrompt(ticket, models.ErrorSignal{}, nil)

	assert.Contains(t, prompt, "Ticket: BUG-2")
	assert.NotContains(t, prompt, "Extracted error details")
	assert.NotContains(t, prompt, "Relevant source files")
	assert.NotContains(t, prompt, "Priority:")
}

func TestBuildPromptDeterministic(t *testing.T) {
	ticket := models.Ticket{Key: "BUG-3", Summary: "s", Description: "d"}
	signal := models.ErrorSignal{ErrorMessage: "boom"}

	first := BuildPrompt(ticket, signal, nil)
	second := BuildPrompt(ticket, signal, nil)

	assert.Equal(t, first, second)
}
