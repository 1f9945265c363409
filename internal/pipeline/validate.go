package pipeline

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/duncanfisher/patchpilot/pkg/models"
)

// delimiterPairs are the delimiters counted by the structural check.
var delimiterPairs = []struct {
	open  rune
	close rune
	name  string
}{
	{'(', ')', "parentheses"},
	{'{', '}', "braces"},
	{'[', ']', "brackets"},
}

// Validate runs lightweight structural checks over each file change
// before submission. A delimiter imbalance is a content defect and a hard
// error. Missing local tooling (type checker, linter) only degrades to a
// warning: the validator never blocks submission because of environment
// limitations, only because of defects it can actually detect.
func Validate(changes []models.FileChange) models.ValidationResult {
	result := models.ValidationResult{
		Checks: map[string]bool{},
	}

	balanced := true
	for _, change := range changes {
		if !isCodePath(change.Path) {
			continue
		}
		for _, pair := range delimiterPairs {
			opens := strings.Count(change.Content, string(pair.open))
			closes := strings.Count(change.Content, string(pair.close))
			if opens != closes {
				balanced = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("unbalanced %s in %s: %d opening, %d closing", pair.name, change.Path, opens, closes))
			}
		}
	}
	result.Checks["balanced_delimiters"] = balanced

	// Tool probes. The counting check above is crude, so a real type
	// checker is preferred when one is installed.
	if _, err := exec.LookPath("tsc"); err != nil {
		result.Checks["typechecker_available"] = false
		result.Warnings = append(result.Warnings, "type checker (tsc) not available, skipping type check")
	} else {
		result.Checks["typechecker_available"] = true
	}

	if _, err := exec.LookPath("eslint"); err != nil {
		result.Checks["linter_available"] = false
		result.Warnings = append(result.Warnings, "linter (eslint) not available, skipping lint")
	} else {
		result.Checks["linter_available"] = true
	}

	result.Success = len(result.Errors) == 0
	return result
}

// isCodePath reports whether the delimiter balance check applies to p.
// Markup and data files legitimately carry unbalanced braces.
func isCodePath(p string) bool {
	lower := strings.ToLower(p)
	for ext := range sourceExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.HasSuffix(lower, ".json")
}
