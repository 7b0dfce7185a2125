package cluster

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9$\.]{2,}`)

// HeadlineTokens lowercases a headline and extracts the token set used for
// novelty comparison and query building. Accented runes act as separators.
func HeadlineTokens(headline string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range tokenPattern.FindAllString(strings.ToLower(headline), -1) {
		tokens[t] = true
	}
	return tokens
}
