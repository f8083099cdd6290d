package notation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected Encoding
	}{
		{"", EncodingUTF8},
		{"UTF8", EncodingUTF8},
		{"sjis", EncodingShiftJIS},
		{"Shift_JIS", EncodingShiftJIS},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEncoding(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseEncoding("latin-9")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestDecodeShiftJIS(t *testing.T) {
	raw, err := japanese.ShiftJIS.NewEncoder().String("#title 練習曲\nc1")
	require.NoError(t, err)

	got, err := Decode(strings.NewReader(raw), EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "#title 練習曲\nc1", got)
}

func TestDecodeBOMOverridesEncoding(t *testing.T) {
	got, err := Decode(strings.NewReader("\xef\xbb\xbfc1 | d1"), EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "c1 | d1", got)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("e1")
	require.NoError(t, err)
	got, err = Decode(strings.NewReader(utf16), EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, "e1", got)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	raw, err := japanese.ShiftJIS.NewEncoder().String("#title 練習曲\nc1 | d1")
	require.NoError(t, err)
	path := filepath.Join(dir, "etude.score")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	doc, err := ParseFile(path, EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "練習曲", doc.Title)
	assert.Len(t, doc.Measures, 2)

	bad := filepath.Join(dir, "bad.score")
	require.NoError(t, os.WriteFile(bad, []byte("c1 x"), 0o644))
	_, err = ParseFile(bad, EncodingUTF8)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "bad.score")

	_, err = ParseFile(filepath.Join(dir, "missing.score"), EncodingUTF8)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
