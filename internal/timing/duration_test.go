package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationAddIsMillisecondSum(t *testing.T) {
	cases := [][2]float64{{0, 0}, {1, 2}, {500, 250.5}, {1e6, 3}}
	for _, c := range cases {
		a, b := Milliseconds(c[0]), Milliseconds(c[1])
		assert.Equal(t, c[0]+c[1], a.Add(b).Ms())
		assert.Equal(t, a, a.Add(Zero()))
		assert.Equal(t, a, Zero().Add(a))
	}
}

func TestDurationConstructors(t *testing.T) {
	assert.Equal(t, 1500.0, Seconds(1.5).Ms())
	assert.Equal(t, 120000.0, Minutes(2).Ms())
	assert.Equal(t, 250.0, FromStd(250*time.Millisecond).Ms())
	assert.Equal(t, 2*time.Second, Seconds(2).Std())
}

func TestDurationCompare(t *testing.T) {
	a, b := Milliseconds(100), Milliseconds(200)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(Milliseconds(100)))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
}

func TestMaxAndSum(t *testing.T) {
	assert.Equal(t, Zero(), Max())
	assert.Equal(t, Milliseconds(900), Max(Milliseconds(300), Milliseconds(900), Milliseconds(10)))
	assert.Equal(t, Zero(), Sum())
	assert.Equal(t, Milliseconds(1210), Sum(Milliseconds(300), Milliseconds(900), Milliseconds(10)))
}

func TestClamp(t *testing.T) {
	lo, hi := Zero(), Milliseconds(1000)
	assert.Equal(t, lo, Clamp(Milliseconds(-5), lo, hi))
	assert.Equal(t, hi, Clamp(Milliseconds(1500), lo, hi))
	assert.Equal(t, Milliseconds(42), Clamp(Milliseconds(42), lo, hi))
}

func TestBeatsToDuration(t *testing.T) {
	tests := []struct {
		name  string
		beats float64
		bpm   float64
		want  float64
	}{
		{"quarter at 120", 1, 120, 500},
		{"whole bar at 120", 4, 120, 2000},
		{"quarter at 60", 1, 60, 1000},
		{"rounds down", 1, 140, 400},   // 428.57ms
		{"rounds up", 1.5, 140, 600},   // 642.86ms
		{"triplet eighth", 1.0 / 3, 120, 200}, // 166.67ms
		{"zero bpm", 1, 0, 0},
		{"zero beats", 0, 120, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BeatsToDuration(tt.beats, tt.bpm).Ms())
		})
	}
}
