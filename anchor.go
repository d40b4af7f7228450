package feedview

// captureAnchor snapshots the topmost currently-visible item and its offset
// within the viewport. Call immediately before a mutation that shifts indices
// beneath the window (any prepend, or a height correction above the window).
func captureAnchor(vp Viewport, ledger *HeightLedger) AnchorSnapshot {
	if ledger.Len() == 0 {
		return AnchorSnapshot{}
	}
	idx := ledger.IndexAtOffset(vp.ScrollOffset)
	return AnchorSnapshot{
		ItemID: ledger.IDAt(idx),
		Offset: vp.ScrollOffset - ledger.CumulativeOffset(idx),
		valid:  true,
	}
}

// resolveAnchor recomputes the authoritative scroll offset after the mutation
// so the anchor item stays at the same screen position. Returns ok=false when
// the anchor item cannot be found anymore; the caller then leaves the scroll
// offset unchanged and reports a correction miss.
func resolveAnchor(snap AnchorSnapshot, ledger *HeightLedger) (offset float64, ok bool) {
	if !snap.valid {
		return 0, false
	}
	idx, found := ledger.IndexOf(snap.ItemID)
	if !found {
		return 0, false
	}
	return ledger.CumulativeOffset(idx) + snap.Offset, true
}
