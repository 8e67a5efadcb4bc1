package util

import (
	"errors"
	"strings"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens path separators and rejects traversal or
// control characters. The result is safe to use as the last segment of a
// storage key.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
