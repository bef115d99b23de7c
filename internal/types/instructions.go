package types

import (
	"regexp"
	"strings"
)

var (
	stepMarker    = regexp.MustCompile(`(?i)^\s*step\s*\d+\s*[:.)\-]?\s*`)
	ordinalMarker = regexp.MustCompile(`^\s*\d+\s*[.)]`)
)

// StripStepMarker removes a leading "1.", "1)" or "Step 1:" from an
// instruction line. A number directly followed by a digit ("1.5 cups") is a
// quantity, not a marker, and is left alone.
func StripStepMarker(line string) string {
	if loc := stepMarker.FindStringIndex(line); loc != nil {
		return strings.TrimSpace(line[loc[1]:])
	}
	if loc := ordinalMarker.FindStringIndex(line); loc != nil {
		rest := line[loc[1]:]
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(line)
}

// CleanInstructions strips markers from every line and drops lines left empty.
func CleanInstructions(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := StripStepMarker(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitInstructions turns free text into cleaned instruction lines.
func SplitInstructions(text string) []string {
	return CleanInstructions(splitLines(text))
}
