package feedview

// HeightLedger tracks known or estimated heights per item id and answers
// cumulative-offset queries over the feed's backing sequence.
//
// Heights are kept in an arena indexed by stable integer position, with a
// Fenwick tree over them so that a height correction after measurement is a
// point update (O(log n)) and offset queries are prefix queries (O(log n)),
// instead of recomputing a full sum per tick. Prepending a batch shifts every
// index, so it rebuilds the tree once (O(n)) per mutation; queries between
// mutations stay logarithmic.
type HeightLedger struct {
	defaultHeight float64

	ids      []string
	heights  []float64
	measured []bool
	index    map[string]int // id -> position in ids

	tree  []float64 // Fenwick tree, 1-based; tree[0] unused
	total float64
}

// NewHeightLedger creates an empty ledger. defaultHeight is used for items
// whose estimated height is unknown; it must be > 0.
func NewHeightLedger(defaultHeight float64) *HeightLedger {
	if defaultHeight <= 0 {
		defaultHeight = 1
	}
	return &HeightLedger{
		defaultHeight: defaultHeight,
		index:         make(map[string]int),
		tree:          []float64{0},
	}
}

// Len returns the number of tracked items.
func (l *HeightLedger) Len() int {
	return len(l.ids)
}

// DefaultHeight returns the configured fallback height.
func (l *HeightLedger) DefaultHeight() float64 {
	return l.defaultHeight
}

// TotalHeight returns the summed height of all items.
func (l *HeightLedger) TotalHeight() float64 {
	return l.total
}

// IndexOf returns the current position of an item id.
func (l *HeightLedger) IndexOf(id string) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// IDAt returns the item id at position i.
func (l *HeightLedger) IDAt(i int) string {
	return l.ids[i]
}

// HeightAt returns the current height of the item at position i.
func (l *HeightLedger) HeightAt(i int) float64 {
	return l.heights[i]
}

// Estimate returns the height on record for an item id, falling back to the
// configured default when the id is unknown.
func (l *HeightLedger) Estimate(id string) float64 {
	if i, ok := l.index[id]; ok {
		return l.heights[i]
	}
	return l.defaultHeight
}

// Measured reports whether the item's height comes from a real measurement
// rather than an estimate.
func (l *HeightLedger) Measured(id string) bool {
	if i, ok := l.index[id]; ok {
		return l.measured[i]
	}
	return false
}

// Append adds items to the bottom of the sequence. Inserting a duplicate id
// rejects the whole batch and leaves the ledger unchanged.
func (l *HeightLedger) Append(items ...Item) error {
	if err := l.checkDuplicates(items); err != nil {
		return err
	}
	for _, it := range items {
		h := it.EstimatedHeight
		if h <= 0 {
			h = l.defaultHeight
		}
		l.appendHeight(it.ID, h)
	}
	return nil
}

// appendHeight grows the arena and the Fenwick tree by one element.
// The new tree node covers (j-lowbit(j), j], so it is seeded from the
// existing prefix sums rather than point-updated from zero.
func (l *HeightLedger) appendHeight(id string, h float64) {
	l.index[id] = len(l.ids)
	l.ids = append(l.ids, id)
	l.heights = append(l.heights, h)
	l.measured = append(l.measured, false)

	j := len(l.ids) // 1-based index of the new element
	low := j & (-j)
	node := l.prefix(j-1) + h - l.prefix(j-low)
	l.tree = append(l.tree, node)
	l.total += h
}

// Prepend adds items above the top of the sequence, preserving their order.
// All existing indices shift by len(items). Inserting a duplicate id rejects
// the whole batch and leaves the ledger unchanged.
func (l *HeightLedger) Prepend(items []Item) error {
	if err := l.checkDuplicates(items); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	n := len(items)
	ids := make([]string, 0, n+len(l.ids))
	heights := make([]float64, 0, n+len(l.heights))
	measured := make([]bool, 0, n+len(l.measured))
	for _, it := range items {
		h := it.EstimatedHeight
		if h <= 0 {
			h = l.defaultHeight
		}
		ids = append(ids, it.ID)
		heights = append(heights, h)
		measured = append(measured, false)
		l.total += h
	}
	ids = append(ids, l.ids...)
	heights = append(heights, l.heights...)
	measured = append(measured, l.measured...)
	l.ids, l.heights, l.measured = ids, heights, measured

	for i, id := range l.ids {
		l.index[id] = i
	}
	l.rebuild()
	return nil
}

// RecordMeasured replaces the height on record for an item with its actual
// measured height. Returns the item's index and the height delta, or ok=false
// when the id is not tracked. Offset compensation for corrections above the
// visible anchor is the caller's concern (see Feed.RecordMeasured).
func (l *HeightLedger) RecordMeasured(id string, height float64) (idx int, delta float64, ok bool) {
	i, found := l.index[id]
	if !found || height <= 0 {
		return 0, 0, false
	}
	delta = height - l.heights[i]
	if delta != 0 {
		l.add(i, delta)
		l.heights[i] = height
		l.total += delta
	}
	l.measured[i] = true
	return i, delta, true
}

// CumulativeOffset returns the summed height of items [0, i). Monotonically
// non-decreasing in i.
func (l *HeightLedger) CumulativeOffset(i int) float64 {
	i = clampi(i, 0, len(l.ids))
	return l.prefix(i)
}

// IndexAtOffset returns the index of the item whose vertical span contains
// offset. Offsets below zero map to the first item, offsets at or beyond the
// total height map to the last. Returns 0 for an empty ledger.
func (l *HeightLedger) IndexAtOffset(offset float64) int {
	n := len(l.ids)
	if n == 0 || offset <= 0 {
		return 0
	}
	if offset >= l.total {
		return n - 1
	}
	// Binary lifting over the Fenwick tree: find the largest idx with
	// prefix(idx) <= offset; that index is the item containing the offset.
	idx := 0
	rem := offset
	for bit := highestBit(n); bit > 0; bit >>= 1 {
		next := idx + bit
		if next <= n && l.tree[next] <= rem {
			rem -= l.tree[next]
			idx = next
		}
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// checkDuplicates rejects batches that collide with tracked ids, repeat an id
// within the batch, or carry an empty id.
func (l *HeightLedger) checkDuplicates(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ID == "" {
			return &DuplicateIDError{ID: it.ID}
		}
		if _, ok := l.index[it.ID]; ok {
			return &DuplicateIDError{ID: it.ID}
		}
		if _, ok := seen[it.ID]; ok {
			return &DuplicateIDError{ID: it.ID}
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// add applies a point update at 0-based index i.
func (l *HeightLedger) add(i int, delta float64) {
	for j := i + 1; j <= len(l.ids); j += j & (-j) {
		l.tree[j] += delta
	}
}

// prefix returns the sum of heights [0, i).
func (l *HeightLedger) prefix(i int) float64 {
	var sum float64
	for j := i; j > 0; j -= j & (-j) {
		sum += l.tree[j]
	}
	return sum
}

// rebuild recomputes the Fenwick tree from the height arena in O(n).
func (l *HeightLedger) rebuild() {
	n := len(l.heights)
	if cap(l.tree) < n+1 {
		l.tree = make([]float64, n+1)
	} else {
		l.tree = l.tree[:n+1]
		for i := range l.tree {
			l.tree[i] = 0
		}
	}
	for i, h := range l.heights {
		j := i + 1
		l.tree[j] += h
		if parent := j + (j & (-j)); parent <= n {
			l.tree[parent] += l.tree[j]
		}
	}
}

// highestBit returns the largest power of two <= n.
func highestBit(n int) int {
	bit := 1
	for bit<<1 <= n {
		bit <<= 1
	}
	return bit
}
