// Package apikey validates OpenAI API key candidates before they are
// written to the settings service. Validation is purely local: no network
// calls, no state.
package apikey

import (
	"errors"
	"strings"
)

// Prefix is the literal prefix every OpenAI key starts with.
const Prefix = "sk-"

// MinLength is the minimum plausible key length, prefix included.
const MinLength = 23

// Validation failure reasons, in the order the rules are applied.
// The first failing rule wins.
var (
	ErrEmpty             = errors.New("empty")
	ErrMissingPrefix     = errors.New("missing prefix")
	ErrTooShort          = errors.New("too short")
	ErrInvalidCharacters = errors.New("invalid characters")
)

// Validate checks a candidate key against the OpenAI key format rules.
// The candidate is trimmed before checking; callers should store the
// trimmed value (see Normalize). Returns nil when the candidate is valid.
func Validate(candidate string) error {
	key := strings.TrimSpace(candidate)
	if key == "" {
		return ErrEmpty
	}
	if !strings.HasPrefix(key, Prefix) {
		return ErrMissingPrefix
	}
	if len(key) < MinLength {
		return ErrTooShort
	}
	if strings.ContainsAny(key, " \t\n\r") {
		return ErrInvalidCharacters
	}
	return nil
}

// Normalize returns the form of the candidate that should be stored:
// surrounding whitespace trimmed, nothing else changed.
func Normalize(candidate string) string {
	return strings.TrimSpace(candidate)
}
