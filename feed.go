package feedview

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Feed is one virtual-scrolling feed instance: the backing id/height
// sequence, the scroll tracker, the per-edge load controller, and the anchor
// adjuster, constructed together and torn down together. Instances share no
// state with each other.
//
// All methods except the data-source fetches assume a single cooperative
// timeline: call Update once per frame (or per scroll sample) from one
// goroutine. Fetches run concurrently and only hand their data back through
// an internal channel drained at the top of Update.
type Feed struct {
	source  DataSource
	ledger  *HeightLedger
	tracker *ScrollTracker

	vp     Viewport
	window WindowRange

	bufferItems   int
	loadThreshold int
	defaultHeight float64
	epsilon       float64
	debounce      int

	loads   [edgeCount]LoadState
	cursors [edgeCount]string
	epoch   atomic.Uint64

	results  chan loadResult
	fetchCtx context.Context
	cancel   context.CancelFunc

	onEvent func(Event)
	logger  *slog.Logger
}

// EventKind classifies feed status notifications.
type EventKind int

const (
	EventLoadStarted EventKind = iota
	EventLoadApplied
	EventLoadFailed
	EventEdgeExhausted
	EventInsertRejected
	EventAnchorMiss
)

// Event is a non-fatal status notification. Recoverable conditions (load
// failures, anchor misses) are reported here instead of being returned as
// errors from the windowing path.
type Event struct {
	Kind  EventKind
	Edge  Edge
	Count int
	Err   error
}

// New creates a feed over the given data source.
func New(source DataSource, opts ...Option) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Feed{
		source:        source,
		bufferItems:   2,
		loadThreshold: 2,
		defaultHeight: 100,
		epsilon:       0.5,
		debounce:      2,
		results:       make(chan loadResult, 16),
		fetchCtx:      ctx,
		cancel:        cancel,
		logger:        feedLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.ledger = NewHeightLedger(f.defaultHeight)
	f.tracker = NewScrollTracker(f.epsilon, f.debounce)
	return f
}

// Close cancels any in-flight fetches. The feed must not be updated after
// Close.
func (f *Feed) Close() {
	f.cancel()
}

// Update is the per-tick entry point: feed in the latest raw scroll sample
// and get back the range of items to mount. It applies any completed loads
// first (including the anchor correction for prepends), so the returned
// window and ScrollOffset always reflect the post-mutation geometry.
func (f *Feed) Update(scrollOffset float64, now time.Time) WindowRange {
	dir := f.tracker.Sample(scrollOffset, now)
	f.vp.ScrollOffset = scrollOffset

	f.drainResults()

	f.window = ComputeWindow(f.vp, f.ledger, f.ledger.Len(), f.bufferItems)
	f.maybeLoad(f.window, dir)
	return f.window
}

// SetViewportHeight records the visible height. Call on resize and before
// the first Update.
func (f *Feed) SetViewportHeight(h float64) {
	f.vp.Height = h
}

// ScrollOffset returns the authoritative scroll offset. After a prepend it
// differs from the raw sample passed to Update; the view must apply it
// before the next paint so the visual anchor does not jump.
func (f *Feed) ScrollOffset() float64 {
	return f.vp.ScrollOffset
}

// Window returns the window computed by the last Update.
func (f *Feed) Window() WindowRange {
	return f.window
}

// Len returns the number of items in the backing sequence.
func (f *Feed) Len() int {
	return f.ledger.Len()
}

// ItemID returns the id of the item at index i.
func (f *Feed) ItemID(i int) string {
	return f.ledger.IDAt(i)
}

// ItemTop returns the content-space offset of the top of item i.
func (f *Feed) ItemTop(i int) float64 {
	return f.ledger.CumulativeOffset(i)
}

// ItemHeight returns the current (measured or estimated) height of item i.
func (f *Feed) ItemHeight(i int) float64 {
	return f.ledger.HeightAt(i)
}

// TotalHeight returns the full scroll extent of the feed content.
func (f *Feed) TotalHeight() float64 {
	return f.ledger.TotalHeight()
}

// LoadState returns the current load state for an edge.
func (f *Feed) LoadState(edge Edge) LoadState {
	return f.loads[edge]
}

// Direction returns the debounced scroll direction from the last Update.
func (f *Feed) Direction() ScrollDirection {
	return f.tracker.Direction()
}

// Velocity returns the last estimated scroll velocity in px/s.
func (f *Feed) Velocity() float64 {
	return f.tracker.Velocity()
}

// RecordMeasured replaces an item's estimated height with its measured one.
// Corrections at or above the current anchor route through the anchor
// adjuster so content the user is looking at does not shift; corrections
// below the anchor are applied without compensating the scroll offset, so
// content already scrolled past never moves retroactively.
func (f *Feed) RecordMeasured(id string, height float64) {
	idx, ok := f.ledger.IndexOf(id)
	if !ok || height <= 0 {
		return
	}
	anchorIdx := f.ledger.IndexAtOffset(f.vp.ScrollOffset)
	if idx > anchorIdx {
		f.ledger.RecordMeasured(id, height)
		return
	}
	snap := captureAnchor(f.vp, f.ledger)
	f.ledger.RecordMeasured(id, height)
	f.restoreAnchor(snap)
}

// Push appends externally produced items at the bottom edge (live updates
// outside the load controller). Safe to call from another goroutine: the
// batch enters the tick through the same channel as load results and is
// applied on the next Update.
func (f *Feed) Push(items ...Item) {
	if len(items) == 0 {
		return
	}
	f.results <- loadResult{
		edge:  EdgeBottom,
		epoch: f.epoch.Load(),
		res:   FetchResult{Items: items},
		push:  true,
	}
}

// Reset replaces the backing sequence with a fresh initial page and bumps
// the feed generation so any in-flight load lands dead. Load states revert
// to idle and the scroll offset returns to the top.
func (f *Feed) Reset(items []Item, topCursor, bottomCursor string) error {
	ledger := NewHeightLedger(f.defaultHeight)
	if err := ledger.Append(items...); err != nil {
		return err
	}
	f.epoch.Add(1)
	f.ledger = ledger
	f.loads = [edgeCount]LoadState{}
	f.cursors = [edgeCount]string{topCursor, bottomCursor}
	f.vp.ScrollOffset = 0
	f.window = WindowRange{}
	f.tracker.Reset()
	f.logger.Debug("feed reset", "items", len(items), "epoch", f.epoch.Load())
	return nil
}

// ResetEdge clears an edge's exhaustion latch (e.g. on manual refresh) so
// loads may fire for it again.
func (f *Feed) ResetEdge(edge Edge) {
	if f.loads[edge] == LoadExhausted {
		f.loads[edge] = LoadIdle
	}
}

// Retry re-fires a load for an idle edge immediately, bypassing the window
// threshold check. Intended for an explicit retry affordance after a load
// failure.
func (f *Feed) Retry(edge Edge) {
	if f.loads[edge] == LoadIdle {
		f.fire(edge)
	}
}

// emit delivers a status event to the configured callback, if any.
func (f *Feed) emit(ev Event) {
	if f.onEvent != nil {
		f.onEvent(ev)
	}
}
