package notation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cbegin/scoresync/internal/score"
)

// Encoding names the text encoding assumed for score files without a BOM.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift-jis"
)

var ErrUnknownEncoding = errors.New("unknown encoding")

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift-jis", "shift_jis", "sjis":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

func (e Encoding) fallback() encoding.Encoding {
	if e == EncodingShiftJIS {
		return japanese.ShiftJIS
	}
	return unicode.UTF8
}

// Decode reads r to UTF-8. A byte order mark wins over enc.
func Decode(r io.Reader, enc Encoding) (string, error) {
	dec := unicode.BOMOverride(enc.fallback().NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(data), nil
}

// ParseFile reads and parses a score file.
func (p *Parser) ParseFile(path string, enc Encoding) (*score.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open score: %w", err)
	}
	defer f.Close()

	src, err := Decode(f, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := p.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseFile parses a score file with the default layout.
func ParseFile(path string, enc Encoding) (*score.Document, error) {
	return NewParser(DefaultLayout()).ParseFile(path, enc)
}
