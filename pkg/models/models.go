// Package models defines data structures shared across the application.
package models

// Ticket represents an issue-tracker record describing a bug or request.
// It is built once from the webhook payload and read-only afterwards.
type Ticket struct {
	// ID is the tracker's internal identifier for the issue
	ID string

	// Key is the human-facing ticket identifier (e.g., "BUG-123")
	Key string

	// Summary is the ticket's one-line title
	Summary string

	// Description is the full body text of the ticket
	Description string

	// Priority is the tracker priority name, if the payload carried one
	Priority string
}

// CodeContextEntry is one repository file selected as context for generation.
// Content is capped by the context assembler.
type CodeContextEntry struct {
	Filename string
	Content  string
}

// ErrorSignal holds structured error hints mined from a ticket description.
// Extraction is best-effort: any or all fields may be empty.
type ErrorSignal struct {
	ErrorType    string
	ErrorMessage string
	StackTrace   string
	TestFailure  string
	FilePath     string
	LineNumber   int
}

// Empty reports whether extraction found nothing at all.
func (s ErrorSignal) Empty() bool {
	return s.ErrorType == "" && s.ErrorMessage == "" && s.StackTrace == "" &&
		s.TestFailure == "" && s.FilePath == "" && s.LineNumber == 0
}

// FileChange is a proposed create or update of one repository file.
type FileChange struct {
	// Path is repo-relative; it must not be absolute or contain traversal
	Path string

	// Content is the full new file content
	Content string

	// BlobSHA is the SHA of the existing blob when the file already exists
	// on the target branch; empty for new files
	BlobSHA string
}

// GuardResult is the outcome of the safety-guard policy evaluation.
// It is a pure function of the change list; rejection carries the reason
// and the offending paths.
type GuardResult struct {
	Allowed      bool
	Reason       string
	BlockedPaths []string
}

// ValidationResult holds the pre-submission structural check outcome.
// Warnings never block submission; errors do.
type ValidationResult struct {
	Success  bool
	Errors   []string
	Warnings []string
	Checks   map[string]bool
}

// CIStatus is the lifecycle state of continuous integration for one
// pull request. It starts Pending and transitions at most once to a
// terminal value; a polling deadline leaves it Pending.
type CIStatus string

const (
	// CIPending means checks have not finished (or never reported)
	CIPending CIStatus = "pending"
	// CISuccess means every completed check succeeded
	CISuccess CIStatus = "success"
	// CIFailure means at least one check concluded failure or error
	CIFailure CIStatus = "failure"
	// CIError means polling finished but the follow-up actions
	// (comment, draft promotion) could not be applied
	CIError CIStatus = "error"
)

// CheckResult is one CI provider check run observed while polling.
type CheckResult struct {
	Name       string
	Status     string
	Conclusion string
}

// SubmissionOutcome is the terminal record of branch/commit/PR creation.
type SubmissionOutcome struct {
	PullRequestURL    string
	PullRequestNumber int
	HeadBranch        string
	HeadSHA           string
}

// PipelineResult is the caller-facing summary of one pipeline run.
type PipelineResult struct {
	// Status is the final status token: "completed", "blocked",
	// "validation_failed", "no_changes", or "generated" (fix produced,
	// submission failed)
	Status string `json:"status"`

	TicketKey string `json:"ticket_key"`

	PullRequestURL    string `json:"pull_request_url,omitempty"`
	PullRequestNumber int    `json:"pull_request_number,omitempty"`

	// SubmissionError is set when generation succeeded but the branch,
	// commit, or pull-request step failed; the fix is not discarded
	SubmissionError string `json:"submission_error,omitempty"`

	// BlockedReason and BlockedPaths are set on guard rejection
	BlockedReason string   `json:"blocked_reason,omitempty"`
	BlockedPaths  []string `json:"blocked_paths,omitempty"`

	// ValidationErrors are the structural defects that stopped submission
	ValidationErrors []string `json:"validation_errors,omitempty"`

	CIStatus CIStatus `json:"ci_status,omitempty"`

	// CITimedOut distinguishes a pending status at the polling deadline
	// from a pending status that was never polled
	CITimedOut bool `json:"ci_timed_out,omitempty"`

	// ErrorSignalFound reports whether error extraction matched anything
	ErrorSignalFound bool `json:"error_signal_found"`
}
