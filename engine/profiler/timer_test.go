package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTimerDelta(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	timer := newTimerWithClock(clock.now)

	clock.advance(16 * time.Millisecond)
	delta, cycle := timer.Tick()
	assert.InDelta(t, 0.016, delta, 1e-9)
	assert.Nil(t, cycle)
}

func TestTimerClampsDelta(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	timer := newTimerWithClock(clock.now)

	clock.advance(5 * time.Second)
	delta, cycle := timer.Tick()
	assert.Equal(t, 1.0, delta)
	require.NotNil(t, cycle)
	assert.Equal(t, 1, cycle.Frames)

	clock.advance(-time.Second)
	delta, _ = timer.Tick()
	assert.Zero(t, delta)
}

func TestTimerCycle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	timer := newTimerWithClock(clock.now)

	var cycles []*Cycle
	for i := 0; i < 8; i++ {
		clock.advance(250 * time.Millisecond)
		if _, c := timer.Tick(); c != nil {
			cycles = append(cycles, c)
		}
	}

	require.Len(t, cycles, 2)
	assert.Equal(t, 4, cycles[0].Frames)
	assert.InDelta(t, 1.0, cycles[0].Elapsed, 1e-9)
	assert.Equal(t, 4, cycles[1].Frames)
}

func TestTimerReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	timer := newTimerWithClock(clock.now)

	clock.advance(900 * time.Millisecond)
	timer.Tick()
	clock.advance(10 * time.Second)
	timer.Reset()

	clock.advance(200 * time.Millisecond)
	delta, cycle := timer.Tick()
	assert.InDelta(t, 0.2, delta, 1e-9)
	assert.Nil(t, cycle)
}

func TestProfilerLogCycleNil(t *testing.T) {
	p := NewProfiler(true)
	assert.NotPanics(t, func() {
		p.LogCycle(nil)
		p.LogCycle(&Cycle{Elapsed: 1, Frames: 60})
	})
}
