package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/duncanfisher/patchpilot/internal/audit"
	"github.com/duncanfisher/patchpilot/internal/llm"
	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// Final status tokens reported in PipelineResult.Status.
const (
	StatusCompleted        = "completed"
	StatusBlocked          = "blocked"
	StatusValidationFailed = "validation_failed"
	StatusNoChanges        = "no_changes"
	// StatusGenerated means a fix was produced but submission failed; the
	// operator can retry submission without re-invoking generation.
	StatusGenerated = "generated"
)

// Submitter turns an allowed change list into a draft pull request.
type Submitter interface {
	Submit(ctx context.Context, ticket models.Ticket, changes []models.FileChange) (models.SubmissionOutcome, error)
}

// Reconciler drives a submitted pull request's CI status to a terminal
// value or a polling timeout. It never returns an error: polling
// anomalies resolve to pending at worst.
type Reconciler interface {
	Await(ctx context.Context, outcome models.SubmissionOutcome) (models.CIStatus, bool)
}

// TicketCommenter posts pipeline outcomes back onto the originating
// issue-tracker ticket. Optional; failures are advisory.
type TicketCommenter interface {
	AddComment(issueKey, body string) error
}

// Pipeline wires the ordered stages together. All collaborators are
// injected so tests run against fakes.
type Pipeline struct {
	assembler  *ContextAssembler
	generator  llm.Generator
	submitter  Submitter
	reconciler Reconciler
	commenter  TicketCommenter
	sink       audit.Sink
}

// New creates a pipeline. commenter may be nil when the tracker
// comment-back is not configured.
func New(assembler *ContextAssembler, generator llm.Generator, submitter Submitter, reconciler Reconciler, commenter TicketCommenter, sink audit.Sink) *Pipeline {
	return &Pipeline{
		assembler:  assembler,
		generator:  generator,
		submitter:  submitter,
		reconciler: reconciler,
		commenter:  commenter,
		sink:       sink,
	}
}

// Process runs the full pipeline for one ticket: context retrieval,
// prompt assembly, generation, parsing, guard, validation, submission,
// and CI reconciliation. Advisory failures degrade in their stage; policy
// rejections return a structured result with a nil error; generation
// failures return an error.
func (p *Pipeline) Process(ctx context.Context, ticket models.Ticket) (models.PipelineResult, error) {
	log := logging.With("ticket", ticket.Key)
	p.sink.TicketReceived(ticket.Key)

	result := models.PipelineResult{TicketKey: ticket.Key}

	keywords := ExtractKeywords(ticket.Summary, ticket.Description)
	log.Debug("extracted keywords", "count", len(keywords))

	codeContext := p.assembler.Assemble(ctx, keywords)
	p.sink.ContextFetched(ticket.Key, len(codeContext))

	signal := ExtractErrorSignal(ticket.Description)
	result.ErrorSignalFound = !signal.Empty()

	prompt := BuildPrompt(ticket, signal, codeContext)
	p.sink.PromptSent(ticket.Key, audit.HashContent(prompt), len(prompt))

	raw, err := p.generator.Complete(ctx, prompt)
	if err != nil {
		p.sink.OperationFailed(ticket.Key, "generation", err.Error())
		return result, fmt.Errorf("generation failed for %s: %w", ticket.Key, err)
	}
	p.sink.OutputReceived(ticket.Key, audit.HashContent(raw), len(raw))

	changes := ParseOutput(raw)
	if len(changes) == 0 {
		p.sink.OperationFailed(ticket.Key, "parse", "model output produced no usable file changes")
		result.Status = StatusNoChanges
		return result, nil
	}
	log.Info("parsed file changes", "count", len(changes))

	guard := EvaluateGuard(changes)
	if !guard.Allowed {
		p.sink.GuardBlocked(ticket.Key, guard.Reason, guard.BlockedPaths)
		result.Status = StatusBlocked
		result.BlockedReason = guard.Reason
		result.BlockedPaths = guard.BlockedPaths
		return result, nil
	}

	validation := p.runValidation(ticket.Key, changes)
	for _, w := range validation.Warnings {
		log.Warn("validation warning", "warning", w)
	}
	if !validation.Success {
		p.sink.OperationFailed(ticket.Key, "validation", strings.Join(validation.Errors, "; "))
		result.Status = StatusValidationFailed
		result.ValidationErrors = validation.Errors
		return result, nil
	}

	outcome, err := p.submitter.Submit(ctx, ticket, changes)
	if err != nil {
		// The generated fix is not discarded: report generation success
		// with a submission error so the operator can retry submission.
		p.sink.OperationFailed(ticket.Key, "submission", err.Error())
		result.Status = StatusGenerated
		result.SubmissionError = err.Error()
		return result, nil
	}
	p.sink.PullRequestCreated(ticket.Key, outcome.PullRequestURL, outcome.PullRequestNumber)

	result.PullRequestURL = outcome.PullRequestURL
	result.PullRequestNumber = outcome.PullRequestNumber

	ciStatus, timedOut := p.reconciler.Await(ctx, outcome)
	result.CIStatus = ciStatus
	result.CITimedOut = timedOut
	result.Status = StatusCompleted

	p.commentBack(ticket, result)

	return result, nil
}

// runValidation shields the pipeline from validator infrastructure
// failures: a panic inside validation logs and lets submission proceed.
// Detected content defects still block.
func (p *Pipeline) runValidation(key string, changes []models.FileChange) (result models.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("validator failed, proceeding to submission",
				"ticket", key,
				"panic", r)
			result = models.ValidationResult{
				Success:  true,
				Warnings: []string{fmt.Sprintf("validator failure: %v", r)},
			}
		}
	}()
	return Validate(changes)
}

// commentBack posts the pull-request link onto the originating ticket
// when a commenter is configured. Failures never alter the result.
func (p *Pipeline) commentBack(ticket models.Ticket, result models.PipelineResult) {
	if p.commenter == nil || result.PullRequestURL == "" {
		return
	}

	body := fmt.Sprintf("An automated fix for %s is awaiting review: %s (CI: %s)",
		ticket.Key, result.PullRequestURL, result.CIStatus)
	if err := p.commenter.AddComment(ticket.Key, body); err != nil {
		logging.Warn("failed to comment on originating ticket",
			"ticket", ticket.Key,
			"error", err)
	}
}
