package pipeline

import (
	"fmt"
	"strings"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

// BuildPrompt composes the completion request from the ticket, the
// extracted error signal, and the assembled code context. It is a pure
// function: same inputs, same prompt. The prompt text itself is
// confidential and must only leave the process as a hash plus length.
func BuildPrompt(ticket models.Ticket, signal models.ErrorSignal, context []models.CodeContextEntry) string {
	var sb strings.Builder

	sb.WriteString("You are fixing a bug reported in an issue tracker.\n\n")

	sb.WriteString(fmt.Sprintf("Ticket: %s\n", ticket.Key))
	sb.WriteString(fmt.Sprintf("Summary: %s\n", ticket.Summary))
	if ticket.Priority != "" {
		sb.WriteString(fmt.Sprintf("Priority: %s\n", ticket.Priority))
	}
	sb.WriteString(fmt.Sprintf("\nDescription:\n%s\n", ticket.Description))

	if !signal.Empty() {
		sb.WriteString("\nExtracted error details:\n")
		if signal.ErrorType != "" {
			sb.WriteString(fmt.Sprintf("Error type: %s\n", signal.ErrorType))
		}
		if signal.ErrorMessage != "" {
			sb.WriteString(fmt.Sprintf("Error message: %s\n", signal.ErrorMessage))
		}
		if signal.FilePath != "" {
			sb.WriteString(fmt.Sprintf("Location: %s", signal.FilePath))
			if signal.LineNumber > 0 {
				sb.WriteString(fmt.Sprintf(":%d", signal.LineNumber))
			}
			sb.WriteString("\n")
		}
		if signal.TestFailure != "" {
			sb.WriteString(fmt.Sprintf("Test failure: %s\n", signal.TestFailure))
		}
		if signal.StackTrace != "" {
			sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", signal.StackTrace))
		}
	}

	if len(context) > 0 {
		sb.WriteString("\nRelevant source files:\n")
		for _, entry := range context {
			sb.WriteString(fmt.Sprintf("\nFile: %s\n```\n%s\n```\n", entry.Filename, entry.Content))
		}
	}

	sb.WriteString("\nProduce the fixed file contents.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Output code only, no explanations.\n")
	sb.WriteString("- Precede each file with a line of the form: File: <repo-relative path>\n")
	sb.WriteString("- Keep the existing public API compatible.\n")
	sb.WriteString("- Base the fix on the provided source files where they are given.\n")

	return sb.String()
}
