package pipeline

import (
	"fmt"
	"path"
	"strings"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

// maxChangedFiles is the hard ceiling on files one fix may touch.
const maxChangedFiles = 3

// deniedPathFragments block changes to CI configuration, infrastructure,
// authentication code, secrets, and dependency lockfiles. Matching is by
// substring over the whole path.
var deniedPathFragments = []string{
	".github/",
	"infra/",
	"auth/",
	"secrets",
	".env",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
}

// EvaluateGuard applies the safety policy to a proposed change list. It
// is the single policy evaluator: every call site branches on the
// returned Allowed instead of relying on a second enforcing path. The
// rules run in order and the first failure wins:
//
//  1. change count over maxChangedFiles,
//  2. any path matching the denylist,
//  3. any path with traversal, an absolute prefix, or a disallowed
//     extension.
//
// It performs no I/O and has no side effects; the submission manager must
// never be reached with a change list this function has not allowed.
func EvaluateGuard(changes []models.FileChange) models.GuardResult {
	if len(changes) > maxChangedFiles {
		blocked := make([]string, 0, len(changes))
		for _, c := range changes {
			blocked = append(blocked, c.Path)
		}
		return models.GuardResult{
			Allowed:      false,
			Reason:       fmt.Sprintf("too many file changes: %d exceeds limit of %d", len(changes), maxChangedFiles),
			BlockedPaths: blocked,
		}
	}

	var denied []string
	for _, c := range changes {
		lower := strings.ToLower(c.Path)
		for _, fragment := range deniedPathFragments {
			if strings.Contains(lower, fragment) {
				denied = append(denied, c.Path)
				break
			}
		}
	}
	if len(denied) > 0 {
		return models.GuardResult{
			Allowed:      false,
			Reason:       "path matches protected-path denylist",
			BlockedPaths: denied,
		}
	}

	var malformed []string
	for _, c := range changes {
		if strings.Contains(c.Path, "..") || strings.HasPrefix(c.Path, "/") {
			malformed = append(malformed, c.Path)
			continue
		}
		if _, ok := allowedExtensions[strings.ToLower(path.Ext(c.Path))]; !ok {
			malformed = append(malformed, c.Path)
		}
	}
	if len(malformed) > 0 {
		return models.GuardResult{
			Allowed:      false,
			Reason:       "path is traversing, absolute, or has a disallowed extension",
			BlockedPaths: malformed,
		}
	}

	return models.GuardResult{Allowed: true}
}
