package fieldtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
)

var sampleStrings = []string{
	"",
	"hello",
	"with space and\ttab",
	"ümlaut",
	"日本語",
	"emoji 😀 pair",
	"\uFFFF",
	"\U0010FFFF",
	"nul\x00inside",
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, s := range sampleStrings {
		got, err := Decode(Encode(s))
		require.NoError(t, err, "decode %q", s)
		assert.Equal(t, s, got)
	}
}

func TestEncode_IsUTF8(t *testing.T) {
	assert.Equal(t, []byte{0x68, 0x65, 0x6c, 0x6c, 0x6f}, Encode("hello"))
	assert.Equal(t, []byte{0xc3, 0xbc}, Encode("ü"))
}

func TestEncode_Deterministic(t *testing.T) {
	a := Encode("same value")
	b := Encode("same value")
	assert.Equal(t, a, b)
	a[0] = 'X'
	assert.Equal(t, byte('s'), b[0], "encodings must not share memory")
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"lone continuation", []byte{0x80}},
		{"truncated sequence", []byte{'a', 0xe6, 0x97}},
		{"overlong", []byte{0xc0, 0xaf}},
		{"encoded surrogate", []byte{0xed, 0xa0, 0x80}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.in)
			require.ErrorIs(t, err, domain.ErrMalformedEncoding)
		})
	}
}

func TestDecode_ReportsOffset(t *testing.T) {
	_, err := Decode([]byte{'a', 'b', 0xff})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 2")
}

func TestCompare_UnsignedLexicographic(t *testing.T) {
	assert.Negative(t, Compare(Encode("apple"), Encode("banana")))
	assert.Positive(t, Compare(Encode("b"), Encode("a")))
	assert.Zero(t, Compare(Encode("x"), Encode("x")))
	assert.Negative(t, Compare(Encode("ab"), Encode("abc")))
	// 0xC3 (ü) is above every ASCII byte when compared unsigned.
	assert.Negative(t, Compare(Encode("z"), Encode("ü")))
	assert.Negative(t, Compare(Encode("Z"), Encode("a")))
}
