package fieldtype

import (
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
)

// SortValue is the in-process sort key of one document: UTF-16 code units, or absent
// when the document has no value for the field.
type SortValue struct {
	units []uint16
	valid bool
}

// AbsentSortValue is the sort key of a document without a value.
func AbsentSortValue() SortValue { return SortValue{} }

// SortValueOf wraps UTF-16 code units. The slice is copied.
func SortValueOf(units []uint16) SortValue {
	return SortValue{units: slices.Clone(units), valid: true}
}

// SortValueFromBytes builds the sort key of a canonical byte sequence.
func SortValueFromBytes(b []byte) (SortValue, error) {
	units, err := utf8ToUTF16(b)
	if err != nil {
		return SortValue{}, err
	}
	return SortValue{units: units, valid: true}, nil
}

// IsAbsent reports whether the document had no value.
func (v SortValue) IsAbsent() bool { return !v.valid }

// Units returns a copy of the UTF-16 code units.
func (v SortValue) Units() []uint16 { return slices.Clone(v.units) }

// Bytes returns the canonical byte sequence of the key.
func (v SortValue) Bytes() ([]byte, error) {
	if !v.valid {
		return nil, nil
	}
	return utf16ToUTF8(v.units)
}

// Equal reports whether both keys are absent or hold the same code units.
func (v SortValue) Equal(o SortValue) bool {
	return v.valid == o.valid && slices.Equal(v.units, o.units)
}

func (v SortValue) String() string {
	if !v.valid {
		return "<absent>"
	}
	return string(utf16.Decode(v.units))
}

// Token is the transport form of a sort key exchanged between shards and the
// coordinator: UTF-8 text, or absent. It encodes to JSON as a string or null.
type Token struct {
	text  string
	valid bool
}

// AbsentToken is the token of a document without a value.
func AbsentToken() Token { return Token{} }

// TokenOf wraps transport text.
func TokenOf(text string) Token { return Token{text: text, valid: true} }

// IsAbsent reports whether the token carries no value.
func (t Token) IsAbsent() bool { return !t.valid }

// Text returns the token text ("" when absent).
func (t Token) Text() string { return t.text }

// MarshalJSON implements json.Marshaler.
func (t Token) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Token) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Token{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("sort token: %w", err)
	}
	*t = TokenOf(s)
	return nil
}

// marshalSortValue re-encodes the UTF-16 key as its canonical bytes and carries them as text.
func marshalSortValue(v SortValue) (Token, error) {
	if v.IsAbsent() {
		return AbsentToken(), nil
	}
	b, err := utf16ToUTF8(v.units)
	if err != nil {
		return Token{}, err
	}
	return TokenOf(string(b)), nil
}

// unmarshalSortValue re-encodes token text into the UTF-16 key.
func unmarshalSortValue(t Token) (SortValue, error) {
	if t.IsAbsent() {
		return AbsentSortValue(), nil
	}
	return SortValueFromBytes([]byte(t.text))
}

func utf8ToUTF16(b []byte) ([]uint16, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("utf-8 to utf-16 at offset %d: %w", invalidOffset(b), domain.ErrMalformedEncoding)
	}
	units := make([]uint16, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		units = utf16.AppendRune(units, r)
		b = b[size:]
	}
	return units, nil
}

func utf16ToUTF8(units []uint16) ([]byte, error) {
	out := make([]byte, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u < 0xD800 || u > 0xDFFF:
			out = utf8.AppendRune(out, rune(u))
		case u <= 0xDBFF && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF:
			out = utf8.AppendRune(out, utf16.DecodeRune(rune(u), rune(units[i+1])))
			i++
		default:
			return nil, fmt.Errorf("unpaired surrogate %#04x at index %d: %w", u, i, domain.ErrMalformedEncoding)
		}
	}
	return out, nil
}

// compareUTF16 orders code unit sequences by code point, which matches the unsigned
// byte order of their UTF-8 encodings. Plain code unit order would put supplementary
// characters (surrogate pairs) before U+E000..U+FFFF.
func compareUTF16(a, b []uint16) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if ca >= 0xD800 && cb >= 0xD800 {
			ca, cb = codePointOrderFixup(ca), codePointOrderFixup(cb)
		}
		if ca < cb {
			return -1
		}
		return 1
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// codePointOrderFixup moves surrogates above U+E000..U+FFFF.
func codePointOrderFixup(c uint16) uint16 {
	if c >= 0xE000 {
		return c - 0x800
	}
	return c + 0x2000
}
