package feedview

import "time"

// ScrollTracker consumes raw scroll position samples and derives a debounced
// scroll direction plus a velocity estimate.
//
// Naive delta-sign detection flaps on the sub-pixel jitter most scroll
// signals produce at rest, which re-triggers edge loads spuriously. Two
// filters absorb that: deltas within epsilon of zero read as idle, and the
// reported direction only flips after debounce consecutive samples agree on
// the new direction.
type ScrollTracker struct {
	epsilon  float64
	debounce int

	lastOffset float64
	lastTime   time.Time
	hasSample  bool

	dir       ScrollDirection
	candidate ScrollDirection
	streak    int

	velocity float64 // px/s, signed (positive = down)
}

// NewScrollTracker creates a tracker. epsilon is the dead-zone in pixels
// (>= 0); debounce is the number of consecutive agreeing samples required to
// flip direction (>= 1).
func NewScrollTracker(epsilon float64, debounce int) *ScrollTracker {
	if epsilon < 0 {
		epsilon = 0
	}
	if debounce < 1 {
		debounce = 1
	}
	return &ScrollTracker{epsilon: epsilon, debounce: debounce}
}

// Sample records a raw scroll position and returns the debounced direction.
func (t *ScrollTracker) Sample(offset float64, now time.Time) ScrollDirection {
	if !t.hasSample {
		t.lastOffset = offset
		t.lastTime = now
		t.hasSample = true
		return t.dir
	}

	delta := offset - t.lastOffset
	if dt := now.Sub(t.lastTime).Seconds(); dt > 0 {
		t.velocity = delta / dt
	}

	raw := DirectionIdle
	switch {
	case delta > t.epsilon:
		raw = DirectionDown
	case delta < -t.epsilon:
		raw = DirectionUp
	}

	if raw == t.dir {
		t.candidate = raw
		t.streak = 0
	} else {
		if raw != t.candidate {
			t.candidate = raw
			t.streak = 0
		}
		t.streak++
		if t.streak >= t.debounce {
			t.dir = raw
			t.streak = 0
		}
	}

	t.lastOffset = offset
	t.lastTime = now
	return t.dir
}

// Direction returns the current debounced direction.
func (t *ScrollTracker) Direction() ScrollDirection {
	return t.dir
}

// Velocity returns the last estimated scroll velocity in px/s, signed
// (positive = down). Lets callers distinguish a fast fling from a crawl.
func (t *ScrollTracker) Velocity() float64 {
	return t.velocity
}

// TimeSinceLastSample returns how long ago the last sample arrived.
func (t *ScrollTracker) TimeSinceLastSample(now time.Time) time.Duration {
	if !t.hasSample {
		return 0
	}
	return now.Sub(t.lastTime)
}

// Rebase moves the reference offset without producing a direction change.
// Called after an anchor correction rewrites the scroll offset, so the jump
// introduced by the correction is not mistaken for user movement.
func (t *ScrollTracker) Rebase(offset float64) {
	t.lastOffset = offset
	t.hasSample = true
}

// Reset clears all derived state.
func (t *ScrollTracker) Reset() {
	t.lastOffset = 0
	t.lastTime = time.Time{}
	t.hasSample = false
	t.dir = DirectionIdle
	t.candidate = DirectionIdle
	t.streak = 0
	t.velocity = 0
}
