// Package ci polls continuous-integration results for a submitted pull
// request and drives its status to a terminal outcome or a bounded
// timeout.
package ci

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// StatusSource is the slice of the source-control service the reconciler
// depends on.
type StatusSource interface {
	GetCombinedStatus(ctx context.Context, ref string) (string, error)
	ListCheckRuns(ctx context.Context, ref string) ([]models.CheckResult, error)
	MarkReadyForReview(ctx context.Context, number int) error
	AddComment(ctx context.Context, number int, body string) error
}

// Clock abstracts time for deterministic timeout tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// realClock is the production Clock.
type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Reconciler polls check runs and combined status for one pull request on
// a fixed interval, bounded by an overall deadline.
type Reconciler struct {
	sc       StatusSource
	interval time.Duration
	timeout  time.Duration
	clock    Clock
}

// New creates a reconciler with the real clock.
func New(sc StatusSource, interval, timeout time.Duration) *Reconciler {
	return NewWithClock(sc, interval, timeout, realClock{})
}

// NewWithClock creates a reconciler with an injected clock.
func NewWithClock(sc StatusSource, interval, timeout time.Duration, clock Clock) *Reconciler {
	return &Reconciler{sc: sc, interval: interval, timeout: timeout, clock: clock}
}

// Await polls until CI reaches a terminal state, the deadline passes, or
// ctx is canceled. It never returns an error: poll I/O failures are
// logged and treated as still-pending, and reaching the deadline is a
// deliberate non-failure outcome reported as (pending, true). On success
// the pull request is promoted out of draft and a success comment posted;
// on failure a comment enumerates each check's conclusion. Follow-up
// action failures degrade the returned status to CIError without failing
// the pipeline.
func (r *Reconciler) Await(ctx context.Context, outcome models.SubmissionOutcome) (models.CIStatus, bool) {
	log := logging.With("pr", outcome.PullRequestNumber, "sha", outcome.HeadSHA)
	deadline := r.clock.Now().Add(r.timeout)

	for {
		status, runs := r.poll(ctx, outcome.HeadSHA)
		if status != models.CIPending {
			log.Info("ci reached terminal state", "status", string(status))
			return r.finish(ctx, outcome, status, runs), false
		}

		if !r.clock.Now().Before(deadline) {
			log.Info("ci polling deadline reached, leaving pull request pending")
			body := "CI checks were still pending when the polling window closed. " +
				"The pull request stays in draft and will be promoted once checks pass."
			if err := r.sc.AddComment(ctx, outcome.PullRequestNumber, body); err != nil {
				log.Warn("failed to post timeout comment", "error", err)
				return models.CIError, true
			}
			return models.CIPending, true
		}

		select {
		case <-ctx.Done():
			log.Info("ci polling canceled", "error", ctx.Err())
			return models.CIPending, false
		case <-r.clock.After(r.interval):
		}
	}
}

// poll performs one status query. I/O errors are logged and reported as
// pending; the caller cannot tell them apart from "checks still running",
// which is the intended degradation.
func (r *Reconciler) poll(ctx context.Context, sha string) (models.CIStatus, []models.CheckResult) {
	combined, err := r.sc.GetCombinedStatus(ctx, sha)
	if err != nil {
		logging.Warn("combined status poll failed", "sha", sha, "error", err)
		combined = ""
	}

	runs, err := r.sc.ListCheckRuns(ctx, sha)
	if err != nil {
		logging.Warn("check-run poll failed", "sha", sha, "error", err)
		runs = nil
	}

	return Decide(combined, runs), runs
}

// Decide maps one observation of combined status plus check runs onto a
// CI status. Check runs dominate when present; the combined status covers
// repositories using legacy commit statuses only.
func Decide(combined string, runs []models.CheckResult) models.CIStatus {
	if len(runs) > 0 {
		allCompleted := true
		for _, run := range runs {
			if run.Status != "completed" {
				allCompleted = false
				continue
			}
			switch run.Conclusion {
			case "failure", "error", "timed_out", "cancelled":
				return models.CIFailure
			}
		}
		if allCompleted {
			return models.CISuccess
		}
		return models.CIPending
	}

	switch combined {
	case "success":
		return models.CISuccess
	case "failure", "error":
		return models.CIFailure
	}
	return models.CIPending
}

// finish applies the follow-up actions for a terminal status. Success
// promotes the draft and comments; failure comments with each check's
// conclusion and leaves the draft untouched. Any action failure degrades
// the recorded status to CIError.
func (r *Reconciler) finish(ctx context.Context, outcome models.SubmissionOutcome, status models.CIStatus, runs []models.CheckResult) models.CIStatus {
	switch status {
	case models.CISuccess:
		if err := r.sc.MarkReadyForReview(ctx, outcome.PullRequestNumber); err != nil {
			logging.Warn("failed to promote pull request", "pr", outcome.PullRequestNumber, "error", err)
			return models.CIError
		}
		body := "All CI checks passed. The pull request is now ready for review."
		if err := r.sc.AddComment(ctx, outcome.PullRequestNumber, body); err != nil {
			logging.Warn("failed to post success comment", "pr", outcome.PullRequestNumber, "error", err)
			return models.CIError
		}
	case models.CIFailure:
		if err := r.sc.AddComment(ctx, outcome.PullRequestNumber, failureComment(runs)); err != nil {
			logging.Warn("failed to post failure comment", "pr", outcome.PullRequestNumber, "error", err)
			return models.CIError
		}
	}
	return status
}

// failureComment enumerates each check's name and conclusion.
func failureComment(runs []models.CheckResult) string {
	var sb strings.Builder
	sb.WriteString("CI checks failed for this automated fix:\n")
	for _, run := range runs {
		conclusion := run.Conclusion
		if conclusion == "" {
			conclusion = run.Status
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", run.Name, conclusion))
	}
	sb.WriteString("\nThe pull request remains in draft until the failures are addressed.")
	return sb.String()
}
