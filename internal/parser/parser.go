// Package parser turns raw upstream text into a GeneratedResult.
package parser

import (
	"regexp"
	"strings"

	"github.com/af-corp/content-assistant/internal/types"
)

// pollOptions is how many option lines follow the question.
const pollOptions = 3

var numberMarker = regexp.MustCompile(`^\d+\.\s*`)

// Parse never fails. Replies that do not match the expected poll shape
// produce a partial result; see Degraded.
func Parse(kind types.Kind, raw string) types.GeneratedResult {
	if !kind.Structured() {
		return types.GeneratedResult{Success: true, Content: strings.TrimSpace(raw)}
	}
	return parsePoll(raw)
}

func parsePoll(raw string) types.GeneratedResult {
	lines := pollLines(raw)

	result := types.GeneratedResult{
		Success: true,
		Content: strings.TrimSpace(raw),
		Options: []string{},
	}
	if len(lines) == 0 {
		return result
	}

	result.Question = lines[0]
	for _, line := range lines[1:] {
		if len(result.Options) == pollOptions {
			break
		}
		result.Options = append(result.Options, line)
	}
	return result
}

// pollLines returns the non-empty lines of raw with any "<n>. " prefix removed.
func pollLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(numberMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Degraded reports whether a poll result is missing its question or any of
// its options.
func Degraded(r types.GeneratedResult) bool {
	return r.Question == "" || len(r.Options) < pollOptions
}
