package sqlitefeed_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/adamsharifc/feedview/source/sqlitefeed"
)

func openSeeded(t *testing.T, n, pageSize int) *sqlitefeed.Store {
	t.Helper()
	store, err := sqlitefeed.Open(sqlitefeed.Options{
		Path:     filepath.Join(t.TempDir(), "feed.db"),
		PageSize: pageSize,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Seed(context.Background(), n); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return store
}

func TestInitialPageReturnsNewestAscending(t *testing.T) {
	store := openSeeded(t, 45, 20)
	ctx := context.Background()

	items, topCur, bottomCur, err := store.InitialPage(ctx)
	if err != nil {
		t.Fatalf("InitialPage: %v", err)
	}
	if len(items) != 20 {
		t.Fatalf("initial page size = %d, want 20", len(items))
	}
	if topCur == "" || bottomCur == "" {
		t.Fatalf("cursors = (%q, %q), want both set", topCur, bottomCur)
	}

	first, err := store.Get(ctx, items[0].ID)
	if err != nil {
		t.Fatalf("Get first: %v", err)
	}
	last, err := store.Get(ctx, items[len(items)-1].ID)
	if err != nil {
		t.Fatalf("Get last: %v", err)
	}
	if first.Seq >= last.Seq {
		t.Errorf("page not ascending: first seq %d, last seq %d", first.Seq, last.Seq)
	}
	if last.Seq != 45 {
		t.Errorf("last seq = %d, want the newest row 45", last.Seq)
	}
}

func TestFetchBeforePagesBackwardsToExhaustion(t *testing.T) {
	store := openSeeded(t, 45, 20)
	ctx := context.Background()

	_, topCur, _, err := store.InitialPage(ctx)
	if err != nil {
		t.Fatalf("InitialPage: %v", err)
	}

	// 45 rows, newest 20 on the initial page: 25 older remain.
	res, err := store.FetchBefore(ctx, topCur)
	if err != nil {
		t.Fatalf("FetchBefore: %v", err)
	}
	if len(res.Items) != 20 || res.Exhausted {
		t.Fatalf("first older page: %d items, exhausted=%v; want 20, false", len(res.Items), res.Exhausted)
	}

	res2, err := store.FetchBefore(ctx, res.NextCursor)
	if err != nil {
		t.Fatalf("FetchBefore: %v", err)
	}
	if len(res2.Items) != 5 || !res2.Exhausted {
		t.Fatalf("second older page: %d items, exhausted=%v; want 5, true", len(res2.Items), res2.Exhausted)
	}

	// Oldest row of all is the head of the final page.
	oldest, err := store.Get(ctx, res2.Items[0].ID)
	if err != nil {
		t.Fatalf("Get oldest: %v", err)
	}
	if oldest.Seq != 1 {
		t.Errorf("oldest seq = %d, want 1", oldest.Seq)
	}
}

func TestFetchBeforeWithoutHistory(t *testing.T) {
	store := openSeeded(t, 3, 20)

	res, err := store.FetchBefore(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchBefore: %v", err)
	}
	if len(res.Items) != 0 || !res.Exhausted {
		t.Errorf("empty cursor: %d items, exhausted=%v; want 0, true", len(res.Items), res.Exhausted)
	}
}

func TestFetchAfterSeesNewInserts(t *testing.T) {
	store := openSeeded(t, 10, 20)
	ctx := context.Background()

	_, _, bottomCur, err := store.InitialPage(ctx)
	if err != nil {
		t.Fatalf("InitialPage: %v", err)
	}

	res, err := store.FetchAfter(ctx, bottomCur)
	if err != nil {
		t.Fatalf("FetchAfter: %v", err)
	}
	if len(res.Items) != 0 || !res.Exhausted {
		t.Fatalf("caught-up fetch: %d items, exhausted=%v; want 0, true", len(res.Items), res.Exhausted)
	}

	inserted, err := store.Insert(ctx, sqlitefeed.Record{Content: "fresh", Height: 140})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err = store.FetchAfter(ctx, bottomCur)
	if err != nil {
		t.Fatalf("FetchAfter: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != inserted.ID {
		t.Fatalf("fetch after insert returned %d items", len(res.Items))
	}
	if res.Items[0].EstimatedHeight != 140 {
		t.Errorf("estimated height = %v, want 140", res.Items[0].EstimatedHeight)
	}
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	store := openSeeded(t, 1, 20)

	_, err := store.Get(context.Background(), "no-such-id")
	if !sqlitefeed.IsNotFound(err) {
		t.Errorf("Get unknown id returned %v, want NotFoundError", err)
	}
}

func TestMalformedCursorRejected(t *testing.T) {
	store := openSeeded(t, 1, 20)

	if _, err := store.FetchAfter(context.Background(), "not-a-seq"); err == nil {
		t.Error("FetchAfter accepted a malformed cursor")
	}
	if _, err := store.FetchBefore(context.Background(), "not-a-seq"); err == nil {
		t.Error("FetchBefore accepted a malformed cursor")
	}
}
