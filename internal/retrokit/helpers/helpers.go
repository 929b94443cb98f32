package helpers

import (
	"errors"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// forbiddenPathChars are replaced by Sanitize.
const forbiddenPathChars = `/\:*?"<>|`

// Sanitize makes a human or remote supplied string safe as a single path segment.
// Empty and dot-only names become "_".
func Sanitize(name string) string {
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenPathChars, r) {
			return '_'
		}
		return r
	}, name)
	switch out {
	case "", ".", "..":
		return "_"
	}
	return out
}

// UpperFirstRune returns s with the first rune converted to upper case.
func UpperFirstRune(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// PathExists reports whether anything exists at path.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
