package pipeline

import (
	"path"
	"sort"
	"strings"
)

// maxScoredFiles is the number of top-ranked files that survive scoring.
const maxScoredFiles = 3

// sourceExtensions are the file extensions considered source code for
// relevance scoring.
var sourceExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {},
}

// ignoredPathFragments mark infrastructure and build directories that are
// never useful as generation context.
var ignoredPathFragments = []string{
	"node_modules/",
	"dist/",
	"build/",
	"coverage/",
	"vendor/",
	".git/",
	".github/",
}

// scoredPath pairs a repository path with its relevance score.
type scoredPath struct {
	path  string
	score int
}

// ScorePaths ranks repository file paths against the extracted keywords
// and returns the top candidates, best first. A keyword matching anywhere
// in the path scores 10; a match in the final path segment scores 20 more.
// Ties keep listing order. A zero score is still eligible so that weak
// keyword overlap degrades to "some context" rather than none.
func ScorePaths(paths []string, keywords []string) []string {
	var candidates []scoredPath

	for _, p := range paths {
		if !isSourcePath(p) {
			continue
		}

		lower := strings.ToLower(p)
		base := strings.ToLower(path.Base(p))

		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score += 10
				if strings.Contains(base, kw) {
					score += 20
				}
			}
		}

		candidates = append(candidates, scoredPath{path: p, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxScoredFiles {
		candidates = candidates[:maxScoredFiles]
	}

	selected := make([]string, 0, len(candidates))
	for _, c := range candidates {
		selected = append(selected, c.path)
	}
	return selected
}

// isSourcePath reports whether p is a source file outside the ignored
// infrastructure directories.
func isSourcePath(p string) bool {
	lower := strings.ToLower(p)
	for _, fragment := range ignoredPathFragments {
		if strings.Contains(lower, fragment) {
			return false
		}
	}

	_, ok := sourceExtensions[strings.ToLower(path.Ext(p))]
	return ok
}
