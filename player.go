package scoresync

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/scoresync/internal/timing"
)

// PlaybackEvent is delivered on the channel returned by Watch.
type PlaybackEvent struct {
	Kind       int // EventLoopCompleted, EventPlaybackEnded or EventReloaded
	Generation uint64
	Time       timing.Duration
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
	EventReloaded
)

// Clock supplies the wall time a Player measures playback against.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type PlayerOption func(*playerConfig)

type playerConfig struct {
	clock Clock
	speed float64
	loop  bool
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{clock: systemClock{}, speed: 1}
}

func WithClock(c Clock) PlayerOption {
	return func(cfg *playerConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithSpeed scales playback time; 2 plays twice as fast.
func WithSpeed(speed float64) PlayerOption {
	return func(cfg *playerConfig) {
		if speed > 0 {
			cfg.speed = speed
		}
	}
}

func WithLoop(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loop = enabled
	}
}

// Player moves a Playback's cursor as wall time passes. Call Tick once per
// animation frame. Cursor listeners run inside Player calls and must not call
// back into the Player.
type Player struct {
	mu         sync.Mutex
	pb         *Playback
	clock      Clock
	speed      float64
	loop       bool
	playing    bool
	suspended  bool
	origin     time.Time
	anchor     timing.Duration
	generation uint64
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

func NewPlayer(pb *Playback, opts ...PlayerOption) (*Player, error) {
	if pb == nil {
		return nil, errors.New("playback must not be nil")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		pb:         pb,
		clock:      cfg.clock,
		speed:      cfg.speed,
		loop:       cfg.loop,
		generation: pb.Generation(),
	}, nil
}

// position is the playback time now. Callers hold mu.
func (p *Player) position(now time.Time) timing.Duration {
	if !p.playing || p.suspended {
		return p.anchor
	}
	elapsed := timing.FromStd(now.Sub(p.origin)).Ms() * p.speed
	return p.anchor.Add(timing.Milliseconds(elapsed))
}

func (p *Player) rebase(t timing.Duration, now time.Time) {
	p.anchor = timing.Clamp(t, timing.Zero(), p.pb.Duration())
	p.origin = now
}

func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	now := p.clock.Now()
	if !p.anchor.Before(p.pb.Duration()) {
		p.anchor = timing.Zero()
	}
	p.origin = now
	p.playing = true
	p.pb.Cursor().Seek(p.anchor)
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.anchor = p.position(p.clock.Now())
	p.playing = false
}

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	wasPlaying := p.playing
	p.playing = false
	p.suspended = false
	p.anchor = timing.Zero()
	p.pb.Cursor().Seek(p.anchor)
	gen := p.generation
	p.mu.Unlock()
	if wasPlaying {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded, Generation: gen})
	}
}

// Suspend stops continuous seeking, e.g. while the user drags the cursor.
// Discrete navigation still works.
func (p *Player) Suspend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.suspended {
		return
	}
	p.anchor = p.position(p.clock.Now())
	p.suspended = true
}

// Resume continues from wherever the cursor was left.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.suspended {
		return
	}
	p.suspended = false
	p.rebase(p.pb.Cursor().Time(), p.clock.Now())
}

func (p *Player) Seek(t timing.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rebase(t, p.clock.Now())
	p.pb.Cursor().Seek(p.anchor)
}

func (p *Player) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pb.Cursor().Next()
	p.rebase(p.pb.Cursor().Time(), p.clock.Now())
}

func (p *Player) Previous() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pb.Cursor().Previous()
	p.rebase(p.pb.Cursor().Time(), p.clock.Now())
}

// Snap moves the cursor to the start of the frame that owns t and continues
// playback from there.
func (p *Player) Snap(t timing.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pb.Cursor().Snap(t)
	p.rebase(p.pb.Cursor().Time(), p.clock.Now())
}

// Tick seeks the cursor to the current playback time. A reload since the
// previous tick is picked up here: the new cursor continues from the same
// time, clamped to the new duration.
func (p *Player) Tick() {
	p.mu.Lock()
	now := p.clock.Now()
	var events []PlaybackEvent

	if gen := p.pb.Generation(); gen != p.generation {
		p.rebase(p.position(now), now)
		p.generation = gen
		p.pb.Cursor().Seek(p.anchor)
		events = append(events, PlaybackEvent{Kind: EventReloaded, Generation: gen, Time: p.anchor})
	}

	if p.playing && !p.suspended {
		pos := p.position(now)
		dur := p.pb.Duration()
		switch {
		case pos.Before(dur):
			p.pb.Cursor().Seek(pos)
		case p.loop && !dur.IsZero():
			over := pos.Sub(dur)
			if !over.Before(dur) {
				over = timing.Zero()
			}
			p.rebase(over, now)
			p.pb.Cursor().Seek(p.anchor)
			events = append(events, PlaybackEvent{Kind: EventLoopCompleted, Generation: p.generation, Time: dur})
		default:
			p.playing = false
			p.anchor = dur
			p.pb.Cursor().Seek(dur)
			events = append(events, PlaybackEvent{Kind: EventPlaybackEnded, Generation: p.generation, Time: dur})
		}
	}
	p.mu.Unlock()

	for _, ev := range events {
		p.sendEvent(ev)
	}
}

func (p *Player) Position() timing.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position(p.clock.Now())
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspended
}

// SetSpeed changes the playback rate without moving the cursor.
func (p *Player) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock.Now()
	p.anchor = p.position(now)
	p.origin = now
	p.speed = speed
}

func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

func (p *Player) SetLoop(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = enabled
}

func (p *Player) Loop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop
}

// Watch returns a channel that receives playback events. The channel is
// buffered (cap 8) and events are dropped when it is full. Only the most
// recent Watch channel receives events.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}
