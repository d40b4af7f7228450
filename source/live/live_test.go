package live_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adamsharifc/feedview"
	"github.com/adamsharifc/feedview/source/live"
)

// exhaustedSource never produces items. It lets tests run a feed whose only
// input is Push.
type exhaustedSource struct{}

func (exhaustedSource) FetchBefore(ctx context.Context, cursor string) (feedview.FetchResult, error) {
	return feedview.FetchResult{Exhausted: true}, nil
}

func (exhaustedSource) FetchAfter(ctx context.Context, cursor string) (feedview.FetchResult, error) {
	return feedview.FetchResult{Exhausted: true}, nil
}

func newPushFeed(t *testing.T) *feedview.Feed {
	t.Helper()
	f := feedview.New(exhaustedSource{})
	t.Cleanup(f.Close)
	f.SetViewportHeight(300)
	if err := f.Reset(nil, "", ""); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return f
}

func tickUntil(t *testing.T, f *feedview.Feed, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.Update(f.ScrollOffset(), time.Now())
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestSubscriberPushesReceivedItems(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		msgs := []string{
			`{"id":"live-1","content":"first","imageUrl":"","timestamp":"2026-08-29T10:00:00Z","height":120}`,
			`{"id":"live-2","content":"second","height":90}`,
		}
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		// Hold the connection open until the client goes away.
		conn.ReadMessage()
	}))
	defer srv.Close()

	f := newPushFeed(t)

	var mu sync.Mutex
	contents := map[string]string{}

	sub := live.NewSubscriber("ws"+strings.TrimPrefix(srv.URL, "http"), f)
	sub.OnMessage = func(m live.Message) {
		mu.Lock()
		contents[m.ID] = m.Content
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	tickUntil(t, f, func() bool { return f.Len() == 2 })

	if f.ItemID(0) != "live-1" || f.ItemID(1) != "live-2" {
		t.Errorf("pushed order = %q, %q", f.ItemID(0), f.ItemID(1))
	}
	if got := f.ItemHeight(0); got != 120 {
		t.Errorf("estimated height of live-1 = %v, want 120", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if contents["live-1"] != "first" || contents["live-2"] != "second" {
		t.Errorf("OnMessage contents = %v", contents)
	}
}

// scriptedAfter serves one page of new items, then reports caught-up, and
// records the cursors it was asked for.
type scriptedAfter struct {
	mu      sync.Mutex
	cursors []string
}

func (s *scriptedAfter) FetchBefore(ctx context.Context, cursor string) (feedview.FetchResult, error) {
	return feedview.FetchResult{Exhausted: true}, nil
}

func (s *scriptedAfter) FetchAfter(ctx context.Context, cursor string) (feedview.FetchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors = append(s.cursors, cursor)
	if len(s.cursors) == 1 {
		return feedview.FetchResult{
			Items:      []feedview.Item{{ID: "poll-1", EstimatedHeight: 100}},
			NextCursor: "c2",
		}, nil
	}
	return feedview.FetchResult{Exhausted: true}, nil
}

func TestPollerAdvancesCursor(t *testing.T) {
	f := newPushFeed(t)
	src := &scriptedAfter{}

	p := live.NewPoller(src, f, "c1", 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	tickUntil(t, f, func() bool { return f.Len() == 1 })
	if f.ItemID(0) != "poll-1" {
		t.Fatalf("polled item = %q, want poll-1", f.ItemID(0))
	}

	// Wait for at least one caught-up poll after the page.
	tickUntil(t, f, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.cursors) >= 2
	})

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.cursors[0] != "c1" {
		t.Errorf("first poll cursor = %q, want c1", src.cursors[0])
	}
	if src.cursors[1] != "c2" {
		t.Errorf("second poll cursor = %q, want c2 (cursor did not advance)", src.cursors[1])
	}
}
