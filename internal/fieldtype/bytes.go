package fieldtype

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
)

// Encode returns the canonical byte sequence of s: its UTF-8 bytes.
// Equal strings always encode to identical bytes.
func Encode(s string) []byte {
	return []byte(s)
}

// Decode is the inverse of Encode. Invalid UTF-8 means the index is corrupt and
// yields ErrMalformedEncoding; nothing is replaced with U+FFFD.
func Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("decode %d bytes at offset %d: %w", len(b), invalidOffset(b), domain.ErrMalformedEncoding)
	}
	return string(b), nil
}

// Compare orders byte sequences by unsigned lexicographic order, which is the sort
// order of string fields.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

func invalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
