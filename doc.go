// Package feedview implements a virtual-scrolling engine for unbounded,
// bidirectionally loaded feeds: windowing over variable-height items,
// debounced scroll-direction detection, top/bottom infinite loading with
// per-edge in-flight tracking, and pixel-stable anchoring across prepends.
//
// The engine owns no item content and does no rendering. It tracks item ids
// and heights, and each tick hands the rendering layer a WindowRange: the
// contiguous index range to mount plus leading/trailing spacer heights that
// preserve the total scroll extent. The rendering layer mounts those items,
// reports real heights back via RecordMeasured, and forwards raw scroll
// samples into Update.
//
// # Usage
//
//	feed := feedview.New(source,
//	    feedview.WithBufferItems(3),
//	    feedview.WithDefaultItemHeight(120),
//	)
//	feed.SetViewportHeight(800)
//	feed.Reset(firstPage, topCursor, bottomCursor)
//
//	// Once per frame / scroll sample:
//	win := feed.Update(rawScrollOffset, time.Now())
//	if corrected := feed.ScrollOffset(); corrected != rawScrollOffset {
//	    // items were prepended above the window; apply the corrected
//	    // offset before painting so the visible content does not jump
//	    view.SetScroll(corrected)
//	}
//	for i := win.Start; i < win.End; i++ {
//	    mount(feed.ItemID(i), feed.ItemTop(i), feed.ItemHeight(i))
//	}
//
// # Loading
//
// A DataSource supplies pages in either direction through opaque cursors.
// The controller fires a top load only when the window reaches the top
// threshold while the user is not scrolling down (and symmetrically for the
// bottom); direction gating prevents a load from re-triggering immediately
// after one lands near an edge the user is moving away from. Each edge holds
// at most one in-flight request, latches on exhaustion, and reverts to idle
// on failure. Failures, exhaustion, and anchor misses are reported through
// the WithOnEvent callback, never thrown across the windowing computation.
//
// # Concurrency
//
// Update, RecordMeasured, Reset and the accessors belong to one cooperative
// timeline: call them from a single goroutine. Fetches run concurrently and
// only return data; their results enter the tick through an internal channel
// drained at the top of Update. A generation counter bumped on Reset makes
// late responses from a previous generation land dead. Push is the one
// cross-goroutine entry point, for live appends from outside the controller.
package feedview
