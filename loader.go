package feedview

import "context"

// DataSource supplies feed pages in either direction. Cursors are opaque to
// the engine; an empty cursor means "no position yet" and its meaning is up
// to the implementation. Fetches run concurrently with scroll handling and
// must be safe to call from a separate goroutine.
type DataSource interface {
	// FetchBefore returns items strictly above the cursor position, in feed
	// order (topmost first).
	FetchBefore(ctx context.Context, cursor string) (FetchResult, error)

	// FetchAfter returns items strictly below the cursor position, in feed
	// order.
	FetchAfter(ctx context.Context, cursor string) (FetchResult, error)
}

// FetchResult is one page of feed data.
type FetchResult struct {
	Items      []Item
	NextCursor string // Cursor for the following page in the same direction
	Exhausted  bool   // No more data beyond this page
}

// loadResult carries an asynchronous fetch outcome (or an externally pushed
// batch) back into the tick. The async side only produces data; all state
// mutation happens on the tick when the result is drained.
type loadResult struct {
	edge  Edge
	epoch uint64
	res   FetchResult
	err   error
	push  bool // Pushed append, not a controller-issued load
}

// maybeLoad fires edge loads according to the window position. A load fires
// only when the window touches the edge's threshold, the debounced direction
// is not moving away from that edge, and the edge is idle. The direction gate
// is the anti-thrash rule: proximity alone must not re-trigger a load right
// after one lands near the edge the user is scrolling away from.
func (f *Feed) maybeLoad(w WindowRange, dir ScrollDirection) {
	n := f.ledger.Len()
	if n == 0 {
		// Empty feed: populate from the bottom edge only.
		if f.loads[EdgeBottom] == LoadIdle {
			f.fire(EdgeBottom)
		}
		return
	}
	if w.Start <= f.loadThreshold && dir != DirectionDown && f.loads[EdgeTop] == LoadIdle {
		f.fire(EdgeTop)
	}
	if w.End >= n-f.loadThreshold && dir != DirectionUp && f.loads[EdgeBottom] == LoadIdle {
		f.fire(EdgeBottom)
	}
}

// fire marks the edge loading and starts the fetch. The state transition is
// synchronous with the decision so two ticks can never both observe an idle
// edge and double-fire.
func (f *Feed) fire(edge Edge) {
	f.loads[edge] = LoadInFlight
	epoch := f.epoch.Load()
	cursor := f.cursors[edge]
	f.logger.Debug("load started", "edge", edge, "cursor", cursor, "epoch", epoch)
	f.emit(Event{Kind: EventLoadStarted, Edge: edge})

	go func() {
		var res FetchResult
		var err error
		if edge == EdgeTop {
			res, err = f.source.FetchBefore(f.fetchCtx, cursor)
		} else {
			res, err = f.source.FetchAfter(f.fetchCtx, cursor)
		}
		f.results <- loadResult{edge: edge, epoch: epoch, res: res, err: err}
	}()
}

// drainResults applies any completed loads or pushed batches. Called at the
// top of every tick, before the window is recomputed.
func (f *Feed) drainResults() {
	for {
		select {
		case r := <-f.results:
			f.applyResult(r)
		default:
			return
		}
	}
}

// applyResult folds one fetch outcome into the backing sequence. Results from
// a previous feed generation are dropped; a reset must not let a late
// response resurrect stale data.
func (f *Feed) applyResult(r loadResult) {
	if r.epoch != f.epoch.Load() {
		f.logger.Debug("stale load dropped", "edge", r.edge, "epoch", r.epoch)
		return
	}

	if r.err != nil {
		f.loads[r.edge] = LoadIdle // retryable; retry is the caller's decision
		err := &LoadError{Edge: r.edge, Cause: r.err}
		f.logger.Warn("load failed", "edge", r.edge, "error", r.err)
		f.emit(Event{Kind: EventLoadFailed, Edge: r.edge, Err: err})
		return
	}

	if err := f.insert(r.edge, r.res.Items); err != nil {
		// Data-integrity violation: reject the insert, keep prior state.
		if !r.push {
			f.loads[r.edge] = LoadIdle
		}
		f.logger.Error("insert rejected", "edge", r.edge, "error", err)
		f.emit(Event{Kind: EventInsertRejected, Edge: r.edge, Err: err})
		return
	}

	if !r.push {
		if r.res.Exhausted {
			f.loads[r.edge] = LoadExhausted
			f.emit(Event{Kind: EventEdgeExhausted, Edge: r.edge})
		} else {
			f.loads[r.edge] = LoadIdle
		}
		if r.res.NextCursor != "" {
			f.cursors[r.edge] = r.res.NextCursor
		}
	}

	f.logger.Debug("load applied",
		"edge", r.edge,
		"count", len(r.res.Items),
		"state", f.loads[r.edge],
		"items", f.ledger.Len())
	f.emit(Event{Kind: EventLoadApplied, Edge: r.edge, Count: len(r.res.Items)})
}

// insert places a batch at the given edge. Top inserts route through the
// anchor adjuster so the visible content stays pixel-stable.
func (f *Feed) insert(edge Edge, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	if edge == EdgeBottom {
		return f.ledger.Append(items...)
	}

	snap := captureAnchor(f.vp, f.ledger)
	if err := f.ledger.Prepend(items); err != nil {
		return err
	}
	f.restoreAnchor(snap)
	return nil
}

// restoreAnchor rewrites the scroll offset so the snapshot's item keeps its
// screen position, and rebases the tracker so the rewrite does not read as
// user movement. A missing anchor is non-fatal: the offset stays put.
func (f *Feed) restoreAnchor(snap AnchorSnapshot) {
	if !snap.Valid() {
		return
	}
	offset, ok := resolveAnchor(snap, f.ledger)
	if !ok {
		f.logger.Warn("anchor correction miss", "anchor", snap.ItemID)
		f.emit(Event{Kind: EventAnchorMiss})
		return
	}
	f.vp.ScrollOffset = offset
	f.tracker.Rebase(offset)
}
