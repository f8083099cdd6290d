// Package export renders timelines, frames and cursor traces as text, YAML
// or JSON.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Document is anything that can be written in every format.
type Document interface {
	writeText(w io.Writer, p *message.Printer) error
}

// Write renders doc to w.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return doc.writeText(w, message.NewPrinter(language.English))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// ms formats milliseconds with digit grouping, e.g. "12,500ms".
func ms(p *message.Printer, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return p.Sprintf("%dms", int64(v))
	}
	return p.Sprintf("%.1fms", v)
}
