package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

func TestParseOutputFileHeaders(t *testing.T) {
	raw := "File: a.ts\nconst a = 1;\n\nFile: b.ts\nconst b = 2;"

	changes := ParseOutput(raw)

	require.Len(t, changes, 2)
	assert.Equal(t, "a.ts", changes[0].Path)
	assert.Equal(t, "const a = 1;", changes[0].Content)
	assert.Equal(t, "b.ts", changes[1].Path)
	assert.Equal(t, "const b = 2;", changes[1].Content)
}

func TestParseOutputFencesDropped(t *testing.T) {
	raw := "File: a.ts\n```ts\nconst a = 1;\n```"

	changes := ParseOutput(raw)

	require.Len(t, changes, 1)
	assert.Equal(t, "const a = 1;", changes[0].Content)
	assert.NotContains(t, changes[0].Content, "```")
}

func TestParseOutputFencePathHint(t *testing.T) {
	raw := "```ts:src/session.ts\nexport const s = 1;\n```"

	changes := ParseOutput(raw)

	require.Len(t, changes, 1)
	assert.Equal(t, "src/session.ts", changes[0].Path)
	assert.Equal(t, "export const s = 1;", changes[0].Content)
}

func TestParseOutputLazyDefaultPath(t *testing.T) {
	raw := "Here is the fix you asked for:\nexport const fixed = true;\nconst helper = 2;"

	changes := ParseOutput(raw)

	require.Len(t, changes, 1)
	assert.Equal(t, defaultFixPath, changes[0].Path)
	assert.Contains(t, changes[0].Content, "export const fixed = true;")
	assert.Contains(t, changes[0].Content, "const helper = 2;")
}

func TestParseOutputWholeOutputFallback(t *testing.T) {
	// No header, no fence, nothing code-looking line by line, but the
	// output is non-empty: it must not be silently discarded.
	raw := "const x = 1;\nconst y = 2;"

	changes := ParseOutput(raw)

	require.Len(t, changes, 1)
	assert.Equal(t, defaultWholeFixPath, changes[0].Path)
	assert.Equal(t, raw, changes[0].Content)
}

func TestParseOutputRejectsUnsafePaths(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Traversal", raw: "File: ../../etc/passwd.ts\nconst a = 1;"},
		{name: "Absolute", raw: "File: /etc/passwd.ts\nconst a = 1;"},
		{name: "Disallowed extension", raw: "File: run.sh\nrm -rf /"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, change := range ParseOutput(tt.raw) {
				assert.NotContains(t, change.Path, "..")
				assert.False(t, strings.HasPrefix(change.Path, "/"))
			}
		})
	}
}

func TestParseOutputEmptyInput(t *testing.T) {
	assert.Empty(t, ParseOutput(""))
	assert.Empty(t, ParseOutput("   \n\n  "))
}

func TestParseOutputNeverPanics(t *testing.T) {
	inputs := []string{
		"```",
		"``````",
		"File:",
		"File: ",
		strings.Repeat("File: a.ts\n", 100),
		"File: a.ts",
	}

	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			changes := ParseOutput(raw)
			for _, c := range changes {
				_ = c.Content
			}
		})
	}
}

func TestParseOutputPathsAlwaysValid(t *testing.T) {
	raw := "File: ok.ts\nconst a = 1;\nFile: ../bad.ts\nconst b = 2;"

	changes := ParseOutput(raw)

	require.Len(t, changes, 1)
	assert.Equal(t, []models.FileChange{{Path: "ok.ts", Content: "const a = 1;"}}, changes)
}
