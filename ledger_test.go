package feedview_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/adamsharifc/feedview"
)

func uniformItems(n int, height float64) []feedview.Item {
	items := make([]feedview.Item, n)
	for i := range items {
		items[i] = feedview.Item{ID: fmt.Sprintf("item-%d", i), EstimatedHeight: height}
	}
	return items
}

func TestLedgerAppendOffsets(t *testing.T) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(10, 100)...); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if l.Len() != 10 {
		t.Fatalf("Len = %d, want 10", l.Len())
	}
	if l.TotalHeight() != 1000 {
		t.Errorf("TotalHeight = %v, want 1000", l.TotalHeight())
	}
	for i := 0; i <= 10; i++ {
		want := float64(i) * 100
		if got := l.CumulativeOffset(i); got != want {
			t.Errorf("CumulativeOffset(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestLedgerDefaultHeightForUnknownEstimate(t *testing.T) {
	l := feedview.NewHeightLedger(80)
	if err := l.Append(feedview.Item{ID: "a"}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if got := l.Estimate("a"); got != 80 {
		t.Errorf("Estimate(a) = %v, want default 80", got)
	}
	if got := l.Estimate("missing"); got != 80 {
		t.Errorf("Estimate(missing) = %v, want default 80", got)
	}
	if l.Measured("a") {
		t.Error("unmeasured item reported as measured")
	}
}

func TestLedgerDuplicateIDRejected(t *testing.T) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(5, 100)...); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	err := l.Append(feedview.Item{ID: "fresh"}, feedview.Item{ID: "item-2"})
	if !feedview.IsDuplicateID(err) {
		t.Fatalf("Append with duplicate id: err = %v, want DuplicateIDError", err)
	}
	// The whole batch must be rejected, prior state kept.
	if l.Len() != 5 {
		t.Errorf("Len after rejected batch = %d, want 5", l.Len())
	}
	if _, ok := l.IndexOf("fresh"); ok {
		t.Error("partial batch applied despite rejection")
	}

	if err := l.Prepend([]feedview.Item{{ID: "item-0"}}); !feedview.IsDuplicateID(err) {
		t.Errorf("Prepend with duplicate id: err = %v, want DuplicateIDError", err)
	}
	if err := l.Append(feedview.Item{ID: ""}); !feedview.IsDuplicateID(err) {
		t.Errorf("Append with empty id: err = %v, want DuplicateIDError", err)
	}
}

func TestLedgerPrependShiftsIndices(t *testing.T) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(10, 100)...); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	older := []feedview.Item{
		{ID: "old-0", EstimatedHeight: 50},
		{ID: "old-1", EstimatedHeight: 70},
	}
	if err := l.Prepend(older); err != nil {
		t.Fatalf("Prepend returned error: %v", err)
	}

	if l.Len() != 12 {
		t.Fatalf("Len = %d, want 12", l.Len())
	}
	// Prepended batch keeps its order at the top.
	if l.IDAt(0) != "old-0" || l.IDAt(1) != "old-1" {
		t.Errorf("top ids = %q, %q, want old-0, old-1", l.IDAt(0), l.IDAt(1))
	}
	if idx, _ := l.IndexOf("item-0"); idx != 2 {
		t.Errorf("item-0 index after prepend = %d, want 2", idx)
	}
	if got := l.CumulativeOffset(2); got != 120 {
		t.Errorf("CumulativeOffset(2) = %v, want 120", got)
	}
	if got := l.TotalHeight(); got != 1120 {
		t.Errorf("TotalHeight = %v, want 1120", got)
	}
}

func TestLedgerRecordMeasured(t *testing.T) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(10, 100)...); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	idx, delta, ok := l.RecordMeasured("item-3", 140)
	if !ok || idx != 3 || delta != 40 {
		t.Fatalf("RecordMeasured = (%d, %v, %v), want (3, 40, true)", idx, delta, ok)
	}
	if !l.Measured("item-3") {
		t.Error("item-3 not marked measured")
	}
	// Only offsets at or after the updated index move.
	if got := l.CumulativeOffset(3); got != 300 {
		t.Errorf("CumulativeOffset(3) = %v, want 300", got)
	}
	if got := l.CumulativeOffset(4); got != 440 {
		t.Errorf("CumulativeOffset(4) = %v, want 440", got)
	}
	if got := l.TotalHeight(); got != 1040 {
		t.Errorf("TotalHeight = %v, want 1040", got)
	}

	if _, _, ok := l.RecordMeasured("missing", 140); ok {
		t.Error("RecordMeasured for unknown id reported ok")
	}
}

func TestLedgerIndexAtOffsetBoundaries(t *testing.T) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(5, 100)...); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	cases := []struct {
		offset float64
		want   int
	}{
		{-50, 0},
		{0, 0},
		{99.9, 0},
		{100, 1}, // boundary belongs to the later item
		{250, 2},
		{499.9, 4},
		{500, 4}, // at total height clamps to last
		{900, 4},
	}
	for _, c := range cases {
		if got := l.IndexAtOffset(c.offset); got != c.want {
			t.Errorf("IndexAtOffset(%v) = %d, want %d", c.offset, got, c.want)
		}
	}

	empty := feedview.NewHeightLedger(100)
	if got := empty.IndexAtOffset(123); got != 0 {
		t.Errorf("IndexAtOffset on empty ledger = %d, want 0", got)
	}
}

// Cross-check the prefix structure against a naive sum over a randomized
// mix of appends, prepends and measurements.
func TestLedgerMatchesNaiveSum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	l := feedview.NewHeightLedger(100)
	var naive []float64
	next := 0

	appendOne := func() {
		h := 20 + rng.Float64()*200
		id := fmt.Sprintf("n-%d", next)
		next++
		if err := l.Append(feedview.Item{ID: id, EstimatedHeight: h}); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
		naive = append(naive, h)
	}
	prependBatch := func() {
		n := 1 + rng.Intn(4)
		batch := make([]feedview.Item, n)
		heights := make([]float64, n)
		for i := range batch {
			h := 20 + rng.Float64()*200
			batch[i] = feedview.Item{ID: fmt.Sprintf("n-%d", next), EstimatedHeight: h}
			heights[i] = h
			next++
		}
		if err := l.Prepend(batch); err != nil {
			t.Fatalf("Prepend returned error: %v", err)
		}
		naive = append(heights, naive...)
	}
	measureOne := func() {
		if l.Len() == 0 {
			return
		}
		i := rng.Intn(l.Len())
		h := 20 + rng.Float64()*300
		l.RecordMeasured(l.IDAt(i), h)
		naive[i] = h
	}

	for step := 0; step < 500; step++ {
		switch rng.Intn(3) {
		case 0:
			appendOne()
		case 1:
			prependBatch()
		default:
			measureOne()
		}

		// Spot-check a few prefixes each step.
		for probe := 0; probe < 3; probe++ {
			i := rng.Intn(l.Len() + 1)
			var want float64
			for _, h := range naive[:i] {
				want += h
			}
			if got := l.CumulativeOffset(i); math.Abs(got-want) > 1e-6 {
				t.Fatalf("step %d: CumulativeOffset(%d) = %v, want %v", step, i, got, want)
			}
		}
	}
}

// Monotonicity of cumulative offsets must survive arbitrary height updates.
func TestLedgerOffsetsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(200, 100)...); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	for i := 0; i < 100; i++ {
		l.RecordMeasured(fmt.Sprintf("item-%d", rng.Intn(200)), 1+rng.Float64()*400)
	}

	prev := 0.0
	for i := 0; i <= l.Len(); i++ {
		cur := l.CumulativeOffset(i)
		if cur < prev {
			t.Fatalf("CumulativeOffset(%d) = %v < CumulativeOffset(%d) = %v", i, cur, i-1, prev)
		}
		prev = cur
	}
}

func BenchmarkLedgerRecordMeasured(b *testing.B) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(100_000, 100)...); err != nil {
		b.Fatalf("Append returned error: %v", err)
	}
	ids := make([]string, 1024)
	for i := range ids {
		ids[i] = fmt.Sprintf("item-%d", i*97%100_000)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.RecordMeasured(ids[i%len(ids)], float64(50+i%200))
	}
}

func BenchmarkLedgerIndexAtOffset(b *testing.B) {
	l := feedview.NewHeightLedger(100)
	if err := l.Append(uniformItems(100_000, 100)...); err != nil {
		b.Fatalf("Append returned error: %v", err)
	}
	total := l.TotalHeight()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.IndexAtOffset(float64(i%1000) / 1000 * total)
	}
}
