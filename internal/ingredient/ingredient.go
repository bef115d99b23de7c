// Package ingredient holds the rules for ingredient entries shared by the
// request builder, the generation gateway and the HTTP handlers.
package ingredient

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the minimum number of characters of a trimmed ingredient.
const MinLength = 3

var (
	ErrTooShort  = fmt.Errorf("ingredient must be at least %d characters", MinLength)
	ErrNumeric   = errors.New("ingredient cannot be a number")
	ErrEmptyList = errors.New("at least one ingredient is required")
)

// Validate trims s and checks it against the ingredient rules.
func Validate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < MinLength {
		return "", ErrTooShort
	}
	if isNumeric(s) {
		return "", ErrNumeric
	}
	return s, nil
}

// isNumeric reports quantities with no ingredient name, such as "250" or "1/2".
func isNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(".,/+- ", r):
		default:
			return false
		}
	}
	return digits > 0
}

// ListError reports the first invalid entry of a list.
type ListError struct {
	Index int
	Value string
	Err   error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("ingredient %d (%q): %v", e.Index+1, e.Value, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// ValidateList returns the trimmed list, or an error when it is empty or any
// entry fails Validate. The input is not modified.
func ValidateList(list []string) ([]string, error) {
	if len(list) == 0 {
		return nil, ErrEmptyList
	}
	out := make([]string, 0, len(list))
	for i, raw := range list {
		s, err := Validate(raw)
		if err != nil {
			return nil, &ListError{Index: i, Value: raw, Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

// Split turns "chicken, rice, , tomatoes" into [chicken rice tomatoes]. It
// only drops empty segments; use ValidateList to enforce the rules.
func Split(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Key returns a stable, case-insensitive identity for an ordered list.
func Key(list []string) string {
	lowered := make([]string, len(list))
	for i, s := range list {
		lowered[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return strings.Join(lowered, "\x1f")
}
