package scoresync

import (
	"testing"
	"time"

	"github.com/cbegin/scoresync/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestPlayer(t *testing.T, src string, opts ...PlayerOption) (*Player, *Playback, *fakeClock) {
	t.Helper()
	pb, err := New(mustParse(t, src))
	require.NoError(t, err)
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	pl, err := NewPlayer(pb, append([]PlayerOption{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return pl, pb, clock
}

func TestNewPlayerRequiresPlayback(t *testing.T) {
	_, err := NewPlayer(nil)
	assert.Error(t, err)
}

func TestPlayerTickSeeksCursor(t *testing.T) {
	pl, pb, clock := newTestPlayer(t, "c4 d4")
	pl.Play()
	assert.True(t, pl.Playing())

	clock.Advance(250 * time.Millisecond)
	pl.Tick()
	assert.Equal(t, 0, pb.Cursor().State().Index)
	assert.Equal(t, 0.5, pb.Cursor().Alpha())

	clock.Advance(500 * time.Millisecond)
	pl.Tick()
	assert.Equal(t, 1, pb.Cursor().State().Index)
	assert.Equal(t, timing.Milliseconds(750), pl.Position())
}

func TestPlayerPause(t *testing.T) {
	pl, _, clock := newTestPlayer(t, "c4 d4")
	pl.Play()
	clock.Advance(300 * time.Millisecond)
	pl.Pause()
	clock.Advance(time.Second)
	assert.Equal(t, timing.Milliseconds(300), pl.Position())
	assert.False(t, pl.Playing())

	pl.Play()
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, timing.Milliseconds(400), pl.Position())
}

func TestPlayerSuspendResume(t *testing.T) {
	pl, pb, clock := newTestPlayer(t, "c4 d4 e4 f4")
	pl.Play()
	clock.Advance(100 * time.Millisecond)
	pl.Tick()

	pl.Suspend()
	assert.True(t, pl.Suspended())
	clock.Advance(time.Second)
	pl.Tick()
	assert.Equal(t, 0, pb.Cursor().State().Index)

	// discrete navigation passes through while suspended
	pl.Next()
	pl.Next()
	assert.Equal(t, 2, pb.Cursor().State().Index)

	pl.Resume()
	clock.Advance(250 * time.Millisecond)
	pl.Tick()
	assert.Equal(t, 2, pb.Cursor().State().Index)
	assert.Equal(t, 0.5, pb.Cursor().Alpha())
	assert.Equal(t, timing.Milliseconds(1250), pl.Position())
}

func TestPlayerEndsAtDuration(t *testing.T) {
	pl, pb, clock := newTestPlayer(t, "c4 d4")
	events := pl.Watch()
	pl.Play()
	clock.Advance(5 * time.Second)
	pl.Tick()

	assert.False(t, pl.Playing())
	assert.Equal(t, 1, pb.Cursor().State().Index)
	assert.Equal(t, 1.0, pb.Cursor().Alpha())
	select {
	case ev := <-events:
		assert.Equal(t, EventPlaybackEnded, ev.Kind)
		assert.Equal(t, timing.Milliseconds(1000), ev.Time)
	default:
		t.Fatal("expected a playback ended event")
	}

	// playing again starts over
	pl.Play()
	assert.Equal(t, timing.Zero(), pl.Position())
}

func TestPlayerLoops(t *testing.T) {
	pl, pb, clock := newTestPlayer(t, "c4 d4", WithLoop(true))
	events := pl.Watch()
	pl.Play()
	clock.Advance(1200 * time.Millisecond)
	pl.Tick()

	assert.True(t, pl.Playing())
	assert.Equal(t, timing.Milliseconds(200), pl.Position())
	assert.Equal(t, 0, pb.Cursor().State().Index)
	ev := <-events
	assert.Equal(t, EventLoopCompleted, ev.Kind)

	pl.SetLoop(false)
	assert.False(t, pl.Loop())
	clock.Advance(900 * time.Millisecond)
	pl.Tick()
	assert.False(t, pl.Playing())
	assert.Equal(t, EventPlaybackEnded, (<-events).Kind)
}

func TestPlayerSpeed(t *testing.T) {
	pl, _, clock := newTestPlayer(t, "c4 d4", WithSpeed(2))
	assert.Equal(t, 2.0, pl.Speed())
	pl.Play()
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, timing.Milliseconds(200), pl.Position())

	pl.SetSpeed(0.5)
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, timing.Milliseconds(250), pl.Position())

	pl.SetSpeed(-1)
	assert.Equal(t, 0.5, pl.Speed())
}

func TestPlayerSeekAndStop(t *testing.T) {
	pl, pb, _ := newTestPlayer(t, "c4 d4 e4")
	pl.Seek(timing.Milliseconds(1250))
	assert.Equal(t, 2, pb.Cursor().State().Index)
	assert.Equal(t, timing.Milliseconds(1250), pl.Position())

	pl.Seek(timing.Seconds(99))
	assert.Equal(t, pb.Duration(), pl.Position())

	events := pl.Watch()
	pl.Play()
	pl.Stop()
	assert.False(t, pl.Playing())
	assert.Equal(t, timing.Zero(), pl.Position())
	assert.Equal(t, 0, pb.Cursor().State().Index)
	assert.Equal(t, EventPlaybackEnded, (<-events).Kind)
}

func TestPlayerSnap(t *testing.T) {
	pl, pb, clock := newTestPlayer(t, "c4 d4")
	pl.Seek(timing.Milliseconds(750))
	require.Equal(t, 1, pb.Cursor().State().Index)

	pl.Snap(timing.Milliseconds(250))
	assert.Equal(t, 0, pb.Cursor().State().Index)
	assert.Equal(t, 0.0, pb.Cursor().Alpha())
	assert.Equal(t, timing.Zero(), pl.Position())

	pl.Play()
	clock.Advance(100 * time.Millisecond)
	pl.Tick()
	assert.Equal(t, timing.Milliseconds(100), pl.Position())
	assert.Equal(t, 0.2, pb.Cursor().Alpha())
}

func TestPlayerPicksUpReload(t *testing.T) {
	pl, pb, clock := newTestPlayer(t, "c4 d4")
	events := pl.Watch()
	pl.Play()
	clock.Advance(600 * time.Millisecond)
	pl.Tick()

	require.NoError(t, pb.Reload(mustParse(t, "c4 d4 e4 f4")))
	clock.Advance(100 * time.Millisecond)
	pl.Tick()

	ev := <-events
	assert.Equal(t, EventReloaded, ev.Kind)
	assert.Equal(t, uint64(2), ev.Generation)
	assert.Equal(t, timing.Milliseconds(700), pl.Position())
	assert.Equal(t, 1, pb.Cursor().State().Index)
	assert.Equal(t, 0.4, pb.Cursor().Alpha())
}
