package feedview

import "log/slog"

// Option configures a Feed instance.
type Option func(*Feed)

// WithBufferItems sets how many extra items to mount beyond the visible
// range on each side (default 2).
func WithBufferItems(n int) Option {
	return func(f *Feed) {
		if n >= 0 {
			f.bufferItems = n
		}
	}
}

// WithLoadThreshold sets how close (in items) the window must get to an edge
// before a load fires (default 2).
func WithLoadThreshold(n int) Option {
	return func(f *Feed) {
		if n >= 0 {
			f.loadThreshold = n
		}
	}
}

// WithDefaultItemHeight sets the height assumed for items that carry no
// estimate and have not been measured yet (default 100).
func WithDefaultItemHeight(h float64) Option {
	return func(f *Feed) {
		if h > 0 {
			f.defaultHeight = h
		}
	}
}

// WithScrollEpsilon sets the dead-zone in pixels under which a scroll delta
// reads as idle (default 0.5).
func WithScrollEpsilon(e float64) Option {
	return func(f *Feed) {
		if e >= 0 {
			f.epsilon = e
		}
	}
}

// WithDebounceSamples sets how many consecutive agreeing samples are needed
// before the reported scroll direction flips (default 2).
func WithDebounceSamples(n int) Option {
	return func(f *Feed) {
		if n >= 1 {
			f.debounce = n
		}
	}
}

// WithLogger substitutes the feed's logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithOnEvent registers a callback for status events (load lifecycle, anchor
// misses, rejected inserts). The callback runs on the tick goroutine and must
// not call back into the feed.
func WithOnEvent(fn func(Event)) Option {
	return func(f *Feed) {
		f.onEvent = fn
	}
}
