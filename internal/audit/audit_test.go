package audit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	first := HashContent("prompt text")
	second := HashContent("prompt text")
	other := HashContent("different text")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}

// Raw prompt or output text must never appear in the audit stream, only
// hash and length.
func TestPromptSentNeverLogsRawText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)

	prompt := "secret prompt body"
	logger.PromptSent("BUG-1", HashContent(prompt), len(prompt))

	out := buf.String()
	assert.NotContains(t, out, prompt)
	assert.Contains(t, out, "BUG-1")
	assert.Contains(t, out, HashContent(prompt))
}

func TestEventFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf)

	logger.TicketReceived("BUG-2")
	logger.ContextFetched("BUG-2", 3)
	logger.GuardBlocked("BUG-2", "denylist", []string{"auth/x.ts"})
	logger.OperationFailed("BUG-2", "submission", "boom")
	logger.PullRequestCreated("BUG-2", "https://github.com/org/repo/pull/9", 9)

	out := buf.String()
	assert.Contains(t, out, "ticket received")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "denylist")
	assert.Contains(t, out, "auth/x.ts")
	assert.Contains(t, out, "stage=submission")
	assert.Contains(t, out, "number=9")
}
