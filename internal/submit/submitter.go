// Package submit turns an allowed change list into a draft pull request:
// branch creation, per-file commits, and the PR itself.
package submit

import (
	"context"
	"fmt"
	"strings"

	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// SourceControl is the slice of the source-control service the submitter
// depends on.
type SourceControl interface {
	GetBranchSHA(ctx context.Context, branch string) (string, error)
	CreateBranch(ctx context.Context, name, fromSHA string) error
	GetFileSHA(ctx context.Context, path, branch string) (string, error)
	PutFile(ctx context.Context, path, content, branch, sha, message string) error
	CreatePullRequest(ctx context.Context, head, base, title, body string, draft bool) (string, int, error)
}

// Submitter creates the branch, commits the file changes, and opens a
// draft pull request for one ticket.
type Submitter struct {
	sc         SourceControl
	baseBranch string
}

// New creates a submitter targeting baseBranch.
func New(sc SourceControl, baseBranch string) *Submitter {
	return &Submitter{sc: sc, baseBranch: baseBranch}
}

// BranchName returns the deterministic feature branch for a ticket key,
// so retries land on the same branch.
func BranchName(key string) string {
	return "fix/" + strings.ToLower(key)
}

// Submit runs the submission sequence. Branch creation is idempotent
// (already-exists reuses the branch) and a failed blob-SHA lookup is
// treated as "new file" rather than aborting. Any other failure returns
// an error; the caller preserves generation success independently.
func (s *Submitter) Submit(ctx context.Context, ticket models.Ticket, changes []models.FileChange) (models.SubmissionOutcome, error) {
	log := logging.With("ticket", ticket.Key)

	baseSHA, err := s.sc.GetBranchSHA(ctx, s.baseBranch)
	if err != nil {
		return models.SubmissionOutcome{}, fmt.Errorf("failed to resolve base branch %s: %w", s.baseBranch, err)
	}

	branch := BranchName(ticket.Key)
	if err := s.sc.CreateBranch(ctx, branch, baseSHA); err != nil {
		return models.SubmissionOutcome{}, fmt.Errorf("failed to create branch %s: %w", branch, err)
	}

	for _, change := range changes {
		sha, err := s.sc.GetFileSHA(ctx, change.Path, branch)
		if err != nil {
			// Lookup failures are indistinguishable from "file absent"
			// for our purposes; write it as a new file.
			log.Warn("blob sha lookup failed, treating as new file",
				"path", change.Path,
				"error", err)
			sha = ""
		}

		message := fmt.Sprintf("fix(%s): update %s", ticket.Key, change.Path)
		if err := s.sc.PutFile(ctx, change.Path, change.Content, branch, sha, message); err != nil {
			return models.SubmissionOutcome{}, fmt.Errorf("failed to commit %s: %w", change.Path, err)
		}
	}

	headSHA, err := s.sc.GetBranchSHA(ctx, branch)
	if err != nil {
		return models.SubmissionOutcome{}, fmt.Errorf("failed to resolve head of %s: %w", branch, err)
	}

	title := fmt.Sprintf("[%s] %s", ticket.Key, ticket.Summary)
	body := buildBody(ticket, changes)

	url, number, err := s.sc.CreatePullRequest(ctx, branch, s.baseBranch, title, body, true)
	if err != nil {
		return models.SubmissionOutcome{}, fmt.Errorf("failed to open pull request for %s: %w", branch, err)
	}

	log.Info("submitted draft pull request",
		"branch", branch,
		"number", number,
		"files", len(changes))

	return models.SubmissionOutcome{
		PullRequestURL:    url,
		PullRequestNumber: number,
		HeadBranch:        branch,
		HeadSHA:           headSHA,
	}, nil
}

// buildBody composes the pull-request description: ticket summary, the
// modified file list, and the mandatory human-review flag.
func buildBody(ticket models.Ticket, changes []models.FileChange) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Automated fix for **%s**: %s\n\n", ticket.Key, ticket.Summary))

	description := ticket.Description
	if len(description) > 1000 {
		description = description[:1000] + "..."
	}
	sb.WriteString(description)
	sb.WriteString("\n\n### Modified files\n")
	for _, change := range changes {
		sb.WriteString(fmt.Sprintf("- `%s`\n", change.Path))
	}
	sb.WriteString("\n:warning: This fix was generated automatically and requires human review before merging.\n")

	return sb.String()
}
