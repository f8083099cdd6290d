package tui

import "time"

// Msg is the interface for all playback TUI messages.
//
//sumtype:decl
type Msg interface {
	sealed()
}

// MsgTick is sent once per frame while the program runs.
type MsgTick struct {
	Time time.Time
}

func (MsgTick) sealed() {}

// MsgStatus replaces the status line, e.g. after a reload.
type MsgStatus struct {
	Text string
	Err  error
}

func (MsgStatus) sealed() {}
