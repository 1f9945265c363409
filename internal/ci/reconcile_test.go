package ci

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

// fakeClock advances instantly on every wait so polling tests are
// deterministic and fast.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// fakeStatusSource serves a scripted sequence of check-run observations.
type fakeStatusSource struct {
	runsSeq    [][]models.CheckResult
	combined   string
	pollErr    error
	polls      int
	readyHits  int
	readyErr   error
	comments   []string
	commentErr error
}

func (f *fakeStatusSource) GetCombinedStatus(ctx context.Context, ref string) (string, error) {
	if f.pollErr != nil {
		return "", f.pollErr
	}
	return f.combined, nil
}

func (f *fakeStatusSource) ListCheckRuns(ctx context.Context, ref string) ([]models.CheckResult, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	i := f.polls
	f.polls++
	if len(f.runsSeq) == 0 {
		return nil, nil
	}
	if i >= len(f.runsSeq) {
		i = len(f.runsSeq) - 1
	}
	return f.runsSeq[i], nil
}

func (f *fakeStatusSource) MarkReadyForReview(ctx context.Context, number int) error {
	f.readyHits++
	return f.readyErr
}

func (f *fakeStatusSource) AddComment(ctx context.Context, number int, body string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, body)
	return nil
}

func outcome() models.SubmissionOutcome {
	return models.SubmissionOutcome{
		PullRequestURL:    "https://github.com/org/repo/pull/5",
		PullRequestNumber: 5,
		HeadBranch:        "fix/bug-5",
		HeadSHA:           "head-sha",
	}
}

func running(name string) models.CheckResult {
	return models.CheckResult{Name: name, Status: "in_progress"}
}

func completed(name, conclusion string) models.CheckResult {
	return models.CheckResult{Name: name, Status: "completed", Conclusion: conclusion}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		combined string
		runs     []models.CheckResult
		expected models.CIStatus
	}{
		{
			name:     "No runs and no combined status",
			expected: models.CIPending,
		},
		{
			name:     "Runs still in progress",
			runs:     []models.CheckResult{running("build")},
			expected: models.CIPending,
		},
		{
			name:     "All runs succeeded",
			runs:     []models.CheckResult{completed("build", "success"), completed("test", "success")},
			expected: models.CISuccess,
		},
		{
			name:     "One failed run among successes",
			runs:     []models.CheckResult{completed("build", "success"), completed("test", "failure")},
			expected: models.CIFailure,
		},
		{
			name:     "Failure visible before other runs finish",
			runs:     []models.CheckResult{running("build"), completed("test", "error")},
			expected: models.CIFailure,
		},
		{
			name:     "Timed out run is a failure",
			runs:     []models.CheckResult{completed("build", "timed_out")},
			expected: models.CIFailure,
		},
		{
			name:     "Combined status success without check runs",
			combined: "success",
			expected: models.CISuccess,
		},
		{
			name:     "Combined status failure without check runs",
			combined: "failure",
			expected: models.CIFailure,
		},
		{
			name:     "Combined status pending without check runs",
			combined: "pending",
			expected: models.CIPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.combined, tt.runs))
		})
	}
}

func TestAwaitSuccessWithinWindow(t *testing.T) {
	sc := &fakeStatusSource{
		runsSeq: [][]models.CheckResult{
			{running("build")},
			{completed("build", "success")},
		},
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewWithClock(sc, 30*time.Second, 10*time.Minute, clock)

	status, timedOut := r.Await(context.Background(), outcome())

	assert.Equal(t, models.CISuccess, status)
	assert.False(t, timedOut)
	assert.Equal(t, 1, sc.readyHits)
	require.Len(t, sc.comments, 1)
	assert.Contains(t, sc.comments[0], "ready for review")
}

func TestAwaitFailureCommentEnumeratesChecks(t *testing.T) {
	sc := &fakeStatusSource{
		runsSeq: [][]models.CheckResult{
			{completed("build", "success"), completed("unit-tests", "failure")},
		},
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewWithClock(sc, 30*time.Second, 10*time.Minute, clock)

	status, timedOut := r.Await(context.Background(), outcome())

	assert.Equal(t, models.CIFailure, status)
	assert.False(t, timedOut)
	// Failure leaves the draft untouched.
	assert.Zero(t, sc.readyHits)
	require.Len(t, sc.comments, 1)
	assert.Contains(t, sc.comments[0], "build: success")
	assert.Contains(t, sc.comments[0], "unit-tests: failure")
	assert.Contains(t, sc.comments[0], "remains in draft")
}

func TestAwaitNeverCompletesTimesOutAtDeadline(t *testing.T) {
	sc := &fakeStatusSource{
		runsSeq: [][]models.CheckResult{
			{running("build")},
		},
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewWithClock(sc, 30*time.Second, 2*time.Minute, clock)

	status, timedOut := r.Await(context.Background(), outcome())

	// Timeout is a deliberate non-failure outcome.
	assert.Equal(t, models.CIPending, status)
	assert.True(t, timedOut)

	// Polls at t=0s,30s,60s,90s,120s; the deadline poll is the last one.
	assert.Equal(t, 5, sc.polls)
	assert.Zero(t, sc.readyHits)
	require.Len(t, sc.comments, 1)
	assert.Contains(t, sc.comments[0], "stays in draft")
}

func TestAwaitPollErrorsAreTreatedAsPending(t *testing.T) {
	sc := &fakeStatusSource{pollErr: fmt.Errorf("api unavailable")}
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewWithClock(sc, 30*time.Second, time.Minute, clock)

	status, timedOut := r.Await(context.Background(), outcome())

	assert.Equal(t, models.CIPending, status)
	assert.True(t, timedOut)
}

func TestAwaitContextCancellation(t *testing.T) {
	sc := &fakeStatusSource{
		runsSeq: [][]models.CheckResult{
			{running("build")},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Real clock with a long interval: cancellation must win the select.
	r := New(sc, time.Hour, 2*time.Hour)

	status, timedOut := r.Await(ctx, outcome())

	assert.Equal(t, models.CIPending, status)
	assert.False(t, timedOut)
}

func TestAwaitPromotionFailureDegradesToError(t *testing.T) {
	sc := &fakeStatusSource{
		runsSeq: [][]models.CheckResult{
			{completed("build", "success")},
		},
		readyErr: fmt.Errorf("graphql rejected"),
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewWithClock(sc, 30*time.Second, time.Minute, clock)

	status, timedOut := r.Await(context.Background(), outcome())

	assert.Equal(t, models.CIError, status)
	assert.False(t, timedOut)
}

func TestAwaitTimeoutCommentFailureDegradesToError(t *testing.T) {
	sc := &fakeStatusSource{
		runsSeq: [][]models.CheckResult{
			{running("build")},
		},
		commentErr: fmt.Errorf("comments disabled"),
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewWithClock(sc, 30*time.Second, time.Minute, clock)

	status, timedOut := r.Await(context.Background(), outcome())

	assert.Equal(t, models.CIError, status)
	assert.True(t, timedOut)
}
