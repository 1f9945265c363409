// Package pipeline implements the change orchestration pipeline: ticket
// text in, reviewable pull request out. Stages run strictly downstream
// and each one consumes the previous stage's output read-only.
package pipeline

import (
	"strings"
)

// maxKeywords caps the number of search terms derived from a ticket.
const maxKeywords = 20

// stopWords are common words that carry no search value.
var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "and": {}, "are": {}, "been": {},
	"before": {}, "but": {}, "can": {}, "could": {}, "does": {}, "for": {},
	"from": {}, "has": {}, "have": {}, "into": {}, "more": {}, "not": {},
	"only": {}, "over": {}, "should": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "then": {}, "there": {}, "they": {},
	"this": {}, "were": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"will": {}, "with": {}, "would": {}, "you": {},
}

// ExtractKeywords derives search terms from the ticket summary and
// description. Tokens are lower-cased, split on whitespace, and kept only
// when longer than three characters, purely alphabetic, and not stop
// words. Duplicates are removed preserving first-seen order and the
// result is capped at maxKeywords.
func ExtractKeywords(summary, description string) []string {
	text := strings.ToLower(summary + " " + description)

	seen := make(map[string]struct{})
	var keywords []string

	for _, token := range strings.Fields(text) {
		if len(token) <= 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if !isAlphabetic(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}

		seen[token] = struct{}{}
		keywords = append(keywords, token)

		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}

// isAlphabetic reports whether every rune of token is an ASCII letter.
func isAlphabetic(token string) bool {
	for _, r := range token {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
