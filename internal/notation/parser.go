// Package notation reads a compact text score and lays it out on a fixed
// grid, producing a score.Document.
//
// Parts are separated by ';'. Within a part:
//
//	t<bpm>      tempo
//	o<n> < >    octave, octave down, octave up
//	c d e f g a b [+#-] [len] [.]   notes with accidentals, length and dots
//	r[len]      rest
//	l<n>        default length (4 = quarter)
//	&           tie to the next note
//	|  |:  :|[n]  barline, repeat start, repeat end played n times
//	[n  [n!     ending played n times, '!' marks the final ending
//	R<n>        multi-measure rest of n bars
//	w<ms>       gap of fixed length
//	/           system break
//
// Lines starting with '#title' name the document; '//' starts a comment.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cbegin/scoresync/internal/score"
)

var ErrSyntax = errors.New("notation syntax error")

// SyntaxError locates a problem by byte offset in the input.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("notation: offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

const (
	defaultBPM    = 120
	defaultOctave = 4
	beatsPerBar   = 4
)

var stepNames = map[byte]string{
	'c': "C", 'd': "D", 'e': "E", 'f': "F", 'g': "G", 'a': "A", 'b': "B",
}

type Parser struct{ layout Layout }

func NewParser(layout Layout) *Parser { return &Parser{layout: layout.withDefaults()} }

// Parse reads input with the default layout.
func Parse(input string) (*score.Document, error) {
	return NewParser(DefaultLayout()).Parse(input)
}

func (p *Parser) Parse(input string) (*score.Document, error) {
	src, title := preprocess(input)

	var parts []*partTokens
	base := 0
	for i, text := range strings.Split(src, ";") {
		if strings.TrimSpace(text) == "" && i > 0 {
			base += len(text) + 1
			continue
		}
		pt, err := parsePart(text, base, len(parts))
		if err != nil {
			return nil, err
		}
		parts = append(parts, pt)
		base += len(text) + 1
	}

	if len(parts[0].measures) == 0 {
		return nil, &SyntaxError{Offset: 0, Msg: "score has no measures"}
	}
	want := len(parts[0].measures)
	for _, pt := range parts[1:] {
		if len(pt.measures) != want {
			return nil, &SyntaxError{
				Offset: pt.base,
				Msg:    fmt.Sprintf("part %d has %d measures, want %d", pt.index+1, len(pt.measures), want),
			}
		}
	}

	doc := p.layout.build(title, parts)
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("notation: %w", err)
	}
	return doc, nil
}

// preprocess blanks out comments and directive lines so byte offsets still
// point into the original input.
func preprocess(src string) (string, string) {
	out := []byte(src)
	title := ""
	lineStart := true
	for i := 0; i < len(out); i++ {
		switch {
		case lineStart && out[i] == '#':
			end := i
			for end < len(out) && out[end] != '\n' {
				end++
			}
			if name, ok := strings.CutPrefix(string(out[i:end]), "#title"); ok {
				title = strings.TrimSpace(name)
			}
			blank(out, i, end)
			i = end
		case i+1 < len(out) && out[i] == '/' && out[i+1] == '/':
			end := i
			for end < len(out) && out[end] != '\n' {
				end++
			}
			blank(out, i, end)
			i = end
		}
		if i < len(out) {
			switch out[i] {
			case '\n':
				lineStart = true
			case ' ', '\t', '\r':
			default:
				lineStart = false
			}
		}
	}
	return string(out), title
}

func blank(b []byte, from, to int) {
	for k := from; k < to; k++ {
		b[k] = ' '
	}
}

type noteToken struct {
	kind      score.EntryKind
	startBeat float64
	beats     float64
	pitch     *score.Pitch
	curves    []string
}

type gapToken struct {
	beat float64
	ms   float64
}

type measureToken struct {
	bpm        float64
	beats      float64
	multiRest  int
	jumps      []score.Jump
	gaps       []gapToken
	notes      []*noteToken
	breakAfter bool
}

func (m *measureToken) empty() bool {
	return m.beats == 0 && m.multiRest == 0 && len(m.notes) == 0 && len(m.gaps) == 0
}

type partTokens struct {
	index    int
	base     int
	measures []*measureToken
}

type partState struct {
	src        string
	base       int
	part       int
	i          int
	octave     int
	length     float64 // beats
	bpm        float64
	cur        *measureToken
	measures   []*measureToken
	tieSeq     int
	pendingTie string
}

func parsePart(src string, base, index int) (*partTokens, error) {
	st := &partState{
		src:    src,
		base:   base,
		part:   index,
		octave: defaultOctave,
		length: 1,
		bpm:    defaultBPM,
	}
	st.cur = &measureToken{bpm: st.bpm}
	for st.i < len(src) {
		ch := src[st.i]
		if isSpace(ch) {
			st.i++
			continue
		}
		var err error
		switch {
		case isNote(ch):
			err = st.parseNote()
		case ch == 'r':
			err = st.parseRest()
		case ch == 't':
			err = st.parseTempo()
		case ch == 'o':
			var n int
			n, err = st.number(st.i+1, "octave")
			st.octave = n
		case ch == 'l':
			var n int
			n, err = st.number(st.i+1, "default length")
			if err == nil {
				if n == 0 {
					return nil, st.errorf(st.i, "length must be positive")
				}
				st.length = beatsPerBar / float64(n)
			}
		case ch == '<':
			st.octave--
			st.i++
		case ch == '>':
			st.octave++
			st.i++
		case ch == '&':
			err = st.tie()
		case ch == '|':
			st.parseBar()
		case ch == ':':
			err = st.parseRepeatEnd()
		case ch == '[':
			err = st.parseEnding()
		case ch == 'R':
			err = st.parseMultiRest()
		case ch == 'w':
			err = st.parseGap()
		case ch == '/':
			st.closeMeasure()
			if n := len(st.measures); n > 0 {
				st.measures[n-1].breakAfter = true
			}
			st.i++
		default:
			return nil, st.errorf(st.i, "unexpected %q", ch)
		}
		if err != nil {
			return nil, err
		}
	}
	if st.pendingTie != "" {
		return nil, st.errorf(len(src), "tie without a following note")
	}
	st.closeMeasure()
	return &partTokens{index: index, base: base, measures: st.measures}, nil
}

func (st *partState) errorf(at int, format string, args ...any) error {
	return &SyntaxError{Offset: st.base + at, Msg: fmt.Sprintf(format, args...)}
}

func (st *partState) closeMeasure() {
	if st.cur.empty() {
		return
	}
	st.measures = append(st.measures, st.cur)
	st.cur = &measureToken{bpm: st.bpm}
}

// attachClosing puts a closing directive on the measure just played, which is
// the previous one when the current measure has no content yet.
func (st *partState) attachClosing(j score.Jump) {
	if st.cur.empty() && len(st.measures) > 0 {
		last := st.measures[len(st.measures)-1]
		last.jumps = append(last.jumps, j)
		return
	}
	st.cur.jumps = append(st.cur.jumps, j)
	st.closeMeasure()
}

func (st *partState) number(at int, what string) (int, error) {
	v, next, err := parseNumberOptional(st.src, at)
	if err != nil {
		return 0, st.errorf(at, "bad %s: %v", what, err)
	}
	if v < 0 {
		return 0, st.errorf(at, "missing %s", what)
	}
	st.i = next
	return v, nil
}

func (st *partState) lengthToken(at int) (float64, int, error) {
	v, i, err := parseNumberOptional(st.src, at)
	if err != nil {
		return 0, at, st.errorf(at, "bad length: %v", err)
	}
	beats := st.length
	if v == 0 {
		return 0, at, st.errorf(at, "length must be positive")
	}
	if v > 0 {
		beats = beatsPerBar / float64(v)
	}
	term := beats
	for i < len(st.src) && st.src[i] == '.' {
		term /= 2
		beats += term
		i++
	}
	return beats, i, nil
}

func (st *partState) parseNote() error {
	at := st.i
	step := stepNames[st.src[at]]
	i, shift := at+1, 0
	for i < len(st.src) {
		switch st.src[i] {
		case '#', '+':
			shift++
		case '-':
			shift--
		default:
			goto done
		}
		i++
	}
done:
	beats, next, err := st.lengthToken(i)
	if err != nil {
		return err
	}
	n := &noteToken{
		kind:      score.EntryNote,
		startBeat: st.cur.beats,
		beats:     beats,
		pitch:     &score.Pitch{Step: step, Octave: st.octave, Accidental: shift},
	}
	if st.pendingTie != "" {
		n.curves = append(n.curves, st.pendingTie)
		st.pendingTie = ""
	}
	st.cur.notes = append(st.cur.notes, n)
	st.cur.beats += beats
	st.i = next
	return nil
}

func (st *partState) parseRest() error {
	if st.pendingTie != "" {
		return st.errorf(st.i, "tie into a rest")
	}
	beats, next, err := st.lengthToken(st.i + 1)
	if err != nil {
		return err
	}
	st.cur.notes = append(st.cur.notes, &noteToken{kind: score.EntryRest, startBeat: st.cur.beats, beats: beats})
	st.cur.beats += beats
	st.i = next
	return nil
}

func (st *partState) tie() error {
	n := len(st.cur.notes)
	var last *noteToken
	switch {
	case n > 0:
		last = st.cur.notes[n-1]
	case len(st.measures) > 0:
		prev := st.measures[len(st.measures)-1]
		if k := len(prev.notes); k > 0 {
			last = prev.notes[k-1]
		}
	}
	if last == nil || last.kind != score.EntryNote {
		return st.errorf(st.i, "tie must follow a note")
	}
	st.tieSeq++
	id := fmt.Sprintf("tie-p%d-%d", st.part+1, st.tieSeq)
	last.curves = append(last.curves, id)
	st.pendingTie = id
	st.i++
	return nil
}

func (st *partState) parseTempo() error {
	at := st.i
	bpm, err := st.number(at+1, "tempo")
	if err != nil {
		return err
	}
	if bpm == 0 {
		return st.errorf(at, "tempo must be positive")
	}
	st.bpm = float64(bpm)
	if st.cur.beats == 0 && len(st.cur.gaps) == 0 {
		st.cur.bpm = st.bpm
	}
	return nil
}

func (st *partState) parseBar() {
	if st.i+1 < len(st.src) && st.src[st.i+1] == ':' {
		st.closeMeasure()
		st.cur.jumps = append(st.cur.jumps, score.RepeatStart{})
		st.i += 2
		return
	}
	st.closeMeasure()
	st.i++
}

func (st *partState) parseRepeatEnd() error {
	at := st.i
	if at+1 >= len(st.src) || st.src[at+1] != '|' {
		return st.errorf(at, "expected ':|'")
	}
	times, next, err := parseNumberOptional(st.src, at+2)
	if err != nil {
		return st.errorf(at+2, "bad repeat count: %v", err)
	}
	if times < 0 {
		times = 2
	}
	st.i = next
	st.attachClosing(score.RepeatEnd{Times: times})
	return nil
}

func (st *partState) parseEnding() error {
	at := st.i
	times, err := st.number(at+1, "ending count")
	if err != nil {
		return err
	}
	if times == 0 {
		return st.errorf(at, "ending count must be positive")
	}
	terminal := false
	if st.i < len(st.src) && st.src[st.i] == '!' {
		terminal = true
		st.i++
	}
	st.closeMeasure()
	st.cur.jumps = append(st.cur.jumps, score.RepeatEnding{Times: times, Terminal: terminal})
	return nil
}

func (st *partState) parseMultiRest() error {
	at := st.i
	bars, err := st.number(at+1, "bar count")
	if err != nil {
		return err
	}
	if bars == 0 {
		return st.errorf(at, "bar count must be positive")
	}
	if st.pendingTie != "" {
		return st.errorf(at, "tie into a rest")
	}
	st.closeMeasure()
	beats := float64(bars * beatsPerBar)
	st.cur.multiRest = bars
	st.cur.beats = beats
	st.cur.notes = append(st.cur.notes, &noteToken{kind: score.EntryMultiRest, beats: beats})
	st.closeMeasure()
	return nil
}

func (st *partState) parseGap() error {
	at := st.i
	ms, err := st.number(at+1, "gap length")
	if err != nil {
		return err
	}
	if ms == 0 {
		return st.errorf(at, "gap length must be positive")
	}
	st.cur.gaps = append(st.cur.gaps, gapToken{beat: st.cur.beats, ms: float64(ms)})
	return nil
}

func parseNumberOptional(s string, at int) (int, int, error) {
	i, start := at, at
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if start == i {
		return -1, i, nil
	}
	n, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0, at, err
	}
	return n, i, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\n' || b == '\r' || b == '\t' }
func isNote(b byte) bool  { _, ok := stepNames[b]; return ok }
