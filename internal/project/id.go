package project

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	perrors "github.com/p-blackswan/designstore/internal/errors"
)

// DefaultID is the project id used when a caller supplies none.
const DefaultID = "default"

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// NormalizeID turns an arbitrary context string, typically a workspace
// path, into a filesystem-safe project id by replacing every character
// outside [A-Za-z0-9_-] with '_'. Replacement counts UTF-16 code units,
// so a character outside the Basic Multilingual Plane (most emoji) becomes
// "__", matching ids created by JavaScript-based tools sharing the data
// directory. Distinct inputs may collide.
func NormalizeID(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: project identifier is empty", perrors.ErrInvalidIdentifier)
	}
	return unsafeIDChars.ReplaceAllStringFunc(raw, func(ch string) string {
		return strings.Repeat("_", len(utf16.Encode([]rune(ch))))
	}), nil
}

// ResolveID normalizes raw, substituting fallback when raw is empty.
func ResolveID(raw, fallback string) (string, error) {
	if raw == "" {
		raw = fallback
	}
	return NormalizeID(raw)
}

// checkID rejects ids that were not produced by NormalizeID.
func checkID(projectID string) error {
	if projectID == "" || unsafeIDChars.MatchString(projectID) {
		return fmt.Errorf("%w: %q is not a normalized project id", perrors.ErrInvalidIdentifier, projectID)
	}
	return nil
}
