package internal

import (
	"crypto/md5"
	"encoding/hex"
	"unicode/utf8"
)

// Version is the lingochain release version
const Version = "0.4.0"

// ContentHash returns the hex encoded MD5 digest of text.
// The digest is always 32 characters long regardless of the input size.
func ContentHash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

// Excerpt truncates s to at most maxRunes runes without splitting a
// multi-byte character
func Excerpt(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}
