package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidFileName is returned for upload names that cannot key a candidate.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName normalizes an uploaded resume name into the key used for ranking and
// selection. Path separators become underscores; traversal and control characters are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
