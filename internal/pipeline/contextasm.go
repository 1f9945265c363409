package pipeline

import (
	"context"

	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// RepoReader is the read-only slice of the source-control service the
// context assembler depends on.
type RepoReader interface {
	ListTree(ctx context.Context, ref string) ([]string, error)
	GetFileContent(ctx context.Context, path, ref string) (string, error)
}

// maxContextChars caps each context file's content.
const maxContextChars = 8000

// truncationMarker is appended when a file is cut at maxContextChars.
const truncationMarker = "\n... [truncated]"

// ContextAssembler selects and fetches the repository files most relevant
// to a ticket.
type ContextAssembler struct {
	repo RepoReader
	ref  string
}

// NewContextAssembler creates an assembler reading from repo at ref.
func NewContextAssembler(repo RepoReader, ref string) *ContextAssembler {
	return &ContextAssembler{repo: repo, ref: ref}
}

// Assemble scores the repository listing against the keywords and fetches
// the top files, truncated to maxContextChars. It never fails the
// pipeline: a tree-listing failure yields an empty context and generation
// proceeds context-free; an individual fetch failure just omits that file.
func (a *ContextAssembler) Assemble(ctx context.Context, keywords []string) []models.CodeContextEntry {
	paths, err := a.repo.ListTree(ctx, a.ref)
	if err != nil {
		logging.Warn("failed to list repository tree, proceeding without context",
			"ref", a.ref,
			"error", err)
		return nil
	}

	selected := ScorePaths(paths, keywords)

	var entries []models.CodeContextEntry
	for _, p := range selected {
		content, err := a.repo.GetFileContent(ctx, p, a.ref)
		if err != nil {
			logging.Warn("failed to fetch context file, omitting it",
				"path", p,
				"error", err)
			continue
		}

		if len(content) > maxContextChars {
			content = content[:maxContextChars] + truncationMarker
		}

		entries = append(entries, models.CodeContextEntry{
			Filename: p,
			Content:  content,
		})
	}

	return entries
}
