package feedview

// ComputeWindow computes the contiguous index range to mount for the given
// viewport, plus the leading and trailing spacer heights standing in for the
// unmounted items on each side.
//
// The first visible item is located by binary search over the ledger's prefix
// sums, the range is extended backward by buffer items (clamped to 0), then
// forward until the viewport bottom is covered and by buffer more (clamped to
// itemCount). It is a pure function of its inputs so it can be tested in
// isolation; it holds no state between calls.
func ComputeWindow(vp Viewport, ledger *HeightLedger, itemCount, buffer int) WindowRange {
	if itemCount <= 0 || vp.Height <= 0 {
		return WindowRange{}
	}
	if itemCount > ledger.Len() {
		itemCount = ledger.Len()
	}
	if buffer < 0 {
		buffer = 0
	}

	start := ledger.IndexAtOffset(vp.ScrollOffset) - buffer
	if start < 0 {
		start = 0
	}

	// Last index needed to cover the viewport bottom, then the forward buffer.
	end := ledger.IndexAtOffset(vp.ScrollOffset+vp.Height) + 1 + buffer
	if end > itemCount {
		end = itemCount
	}
	if end < start {
		end = start
	}

	return WindowRange{
		Start:          start,
		End:            end,
		LeadingSpacer:  ledger.CumulativeOffset(start),
		TrailingSpacer: ledger.TotalHeight() - ledger.CumulativeOffset(end),
	}
}
