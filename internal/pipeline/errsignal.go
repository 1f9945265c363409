package pipeline

import (
	"regexp"
	"strconv"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

// Pattern families applied against the ticket description, in order.
// Each family fills its fields on first match only; extraction is
// best-effort and never fails.
var (
	// stackTraceRe matches a run of "at ..." stack frames.
	stackTraceRe = regexp.MustCompile(`(?m)((?:^[ \t]*at [^\n]+\n?){1,20})`)

	// errorMessageRe matches "TypeError: ...", "Exception: ...", etc.
	errorMessageRe = regexp.MustCompile(`(?m)([A-Za-z]*(?:Error|Exception)):[ \t]*([^\n]+)`)

	// testFailureRe matches test-runner failure lines.
	testFailureRe = regexp.MustCompile(`(?m)^[ \t]*((?:FAIL|✕|✗)[^\n]*|Expected[^\n]+|Actual[^\n]+|Received[^\n]+)`)

	// fileLineRe matches a "path/to/file.ext:123" locator.
	fileLineRe = regexp.MustCompile(`([A-Za-z0-9_\-./]+\.[A-Za-z]{1,4}):(\d+)`)
)

// ExtractErrorSignal mines structured error hints from free-text ticket
// descriptions. Any or all fields may come back empty; absence of a match
// is not an error condition.
func ExtractErrorSignal(description string) models.ErrorSignal {
	var signal models.ErrorSignal

	if m := stackTraceRe.FindStringSubmatch(description); m != nil {
		signal.StackTrace = m[1]
	}

	if m := errorMessageRe.FindStringSubmatch(description); m != nil {
		signal.ErrorType = m[1]
		signal.ErrorMessage = m[2]
	}

	if m := testFailureRe.FindStringSubmatch(description); m != nil {
		signal.TestFailure = m[1]
	}

	if m := fileLineRe.FindStringSubmatch(description); m != nil {
		signal.FilePath = m[1]
		if n, err := strconv.Atoi(m[2]); err == nil {
			signal.LineNumber = n
		}
	}

	return signal
}
