package score

// Jump is a playback-order directive attached to a measure.
//
// go-sumtype:decl Jump
type Jump interface {
	sealed()
}

// RepeatStart marks the first measure of a repeated section.
type RepeatStart struct{}

func (RepeatStart) sealed() {}

// RepeatEnd is a backward repeat at the end of the measure. Times is the
// total number of times the section plays.
type RepeatEnd struct {
	Times int
}

func (RepeatEnd) sealed() {}

// RepeatEnding marks a numbered ending bracket. The ending plays Times passes,
// each followed by a jump back to the section start, unless Terminal.
type RepeatEnding struct {
	Times    int
	Terminal bool
}

func (RepeatEnding) sealed() {}
