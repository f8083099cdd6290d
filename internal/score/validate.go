package score

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a document breaks an invariant the
// playback engine depends on.
var ErrInvalidDocument = errors.New("invalid document")

// Validate checks the structural invariants of a laid-out document.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if len(d.Parts) == 0 {
		return fmt.Errorf("%w: no parts", ErrInvalidDocument)
	}
	for i, m := range d.Measures {
		if m == nil {
			return fmt.Errorf("%w: measure %d is nil", ErrInvalidDocument, i)
		}
		if m.Index != i {
			return fmt.Errorf("%w: measure at position %d has index %d", ErrInvalidDocument, i, m.Index)
		}
		if m.BPM <= 0 {
			return fmt.Errorf("%w: measure %d has non-positive tempo %v", ErrInvalidDocument, i, m.BPM)
		}
		if d.System(m.System) == nil {
			return fmt.Errorf("%w: measure %d refers to missing system %d", ErrInvalidDocument, i, m.System)
		}
		for _, f := range m.Fragments {
			for _, e := range f.Entries {
				if e.Part < 0 || e.Part >= len(d.Parts) {
					return fmt.Errorf("%w: entry %q refers to missing part %d", ErrInvalidDocument, e.ID, e.Part)
				}
			}
		}
	}
	for i, s := range d.Systems {
		if s.Index != i {
			return fmt.Errorf("%w: system at position %d has index %d", ErrInvalidDocument, i, s.Index)
		}
	}
	return nil
}
