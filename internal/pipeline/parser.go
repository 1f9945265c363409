package pipeline

import (
	"path"
	"regexp"
	"strings"

	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/pkg/models"
)

// Default paths used when the model output declares no file header. The
// second is used when the whole output had to be taken as one file.
const (
	defaultFixPath      = "lib/fix.ts"
	defaultWholeFixPath = "lib/ai-fix.ts"
)

// allowedExtensions is the extension allowlist for generated file changes,
// shared by the parser's post-filter and the safety guard.
var allowedExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {},
	".css": {}, ".scss": {}, ".html": {}, ".json": {}, ".md": {},
}

// fileHeaderRe matches an explicit "File: <path>" header line.
var fileHeaderRe = regexp.MustCompile(`^\s*[Ff][Ii][Ll][Ee]\s*:\s*(\S+)\s*$`)

// codeLineRe marks a line that looks like code when no file header has
// been seen yet.
var codeLineRe = regexp.MustCompile(`\b(import|export|function)\b`)

// segment is one file being accumulated during the line scan.
type segment struct {
	path  string
	lines []string
}

// ParseOutput converts raw generated text into a list of file changes.
// There is no format contract with the generation service, so this is a
// tolerant state machine over lines with explicit recovery rules:
//
//   - "File: <path>" lines and fenced-code openers carrying a path hint
//     start a new segment, flushing the previous one if it has content.
//   - Pure fence delimiter lines are dropped, never included in content.
//   - A code-looking line before any header lazily opens defaultFixPath,
//     so content is never silently discarded.
//   - If the scan produced nothing but the output is non-empty, the whole
//     output becomes one file at defaultWholeFixPath.
//   - Paths containing traversal, absolute paths, and disallowed
//     extensions are dropped with a warning, not an error.
//
// ParseOutput never fails on malformed input; the worst outcome is an
// empty list.
func ParseOutput(raw string) []models.FileChange {
	var segments []segment
	var current *segment

	flush := func() {
		if current == nil {
			return
		}
		content := strings.Join(current.lines, "\n")
		if strings.TrimSpace(content) != "" {
			segments = append(segments, segment{path: current.path, lines: current.lines})
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &segment{path: m[1]}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if hint := fencePathHint(strings.TrimPrefix(trimmed, "```")); hint != "" {
				flush()
				current = &segment{path: hint}
			}
			// Fence delimiters never become content.
			continue
		}

		if current == nil {
			if codeLineRe.MatchString(line) {
				current = &segment{path: defaultFixPath}
				current.lines = append(current.lines, line)
			}
			// Prose before any segment is skipped; the whole-output
			// fallback below rescues it when nothing else matched.
			continue
		}

		current.lines = append(current.lines, line)
	}
	flush()

	if len(segments) == 0 && strings.TrimSpace(raw) != "" {
		segments = append(segments, segment{path: defaultWholeFixPath, lines: strings.Split(raw, "\n")})
	}

	var changes []models.FileChange
	for _, seg := range segments {
		if !pathAllowed(seg.path) {
			logging.Warn("dropping generated file with disallowed path", "path", seg.path)
			continue
		}
		changes = append(changes, models.FileChange{
			Path:    seg.path,
			Content: trimBlankEdges(seg.lines),
		})
	}

	return changes
}

// fencePathHint extracts a path-looking token from the text after a
// code-fence opener, e.g. "ts:src/parser.ts" or "typescript src/a.ts".
func fencePathHint(rest string) string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return ""
	}

	for _, token := range strings.FieldsFunc(rest, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':'
	}) {
		token = strings.TrimPrefix(token, "./")
		if strings.Contains(token, ".") && path.Ext(token) != "" {
			return token
		}
	}
	return ""
}

// pathAllowed rejects traversal, absolute paths, and extensions outside
// the allowlist.
func pathAllowed(p string) bool {
	if strings.Contains(p, "..") || strings.HasPrefix(p, "/") {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

// trimBlankEdges joins lines dropping leading and trailing blank lines.
func trimBlankEdges(lines []string) string {
	start := 0
	end := len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
