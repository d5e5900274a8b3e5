package profiler

import "time"

// Cycle summarizes one completed second of frames.
type Cycle struct {
	// Elapsed is the accumulated frame time of the cycle in seconds (at least 1.0).
	Elapsed float64
	// Frames is the number of ticks that happened during the cycle.
	Frames int
}

// Timer measures the time between frames and reports a Cycle once per second.
type Timer struct {
	now   func() time.Time
	last  time.Time
	cycle float64
	fps   int
}

// NewTimer creates a Timer that starts counting now.
func NewTimer() *Timer {
	return newTimerWithClock(time.Now)
}

func newTimerWithClock(now func() time.Time) *Timer {
	return &Timer{
		now:  now,
		last: now(),
	}
}

// Tick advances the timer by one frame.
//
// Returns:
//   - float64: seconds since the previous tick, clamped to [0, 1]
//   - *Cycle: non-nil once the accumulated time reaches one second
func (t *Timer) Tick() (float64, *Cycle) {
	now := t.now()
	delta := now.Sub(t.last).Seconds()
	t.last = now

	if delta < 0 {
		delta = 0
	} else if delta > 1 {
		delta = 1
	}

	t.cycle += delta
	t.fps++

	if t.cycle >= 1.0 {
		c := &Cycle{Elapsed: t.cycle, Frames: t.fps}
		t.cycle -= 1.0
		t.fps = 0
		return delta, c
	}
	return delta, nil
}

// Reset restarts delta measurement without reporting a cycle, used after a pause.
func (t *Timer) Reset() {
	t.last = t.now()
	t.cycle = 0
	t.fps = 0
}
