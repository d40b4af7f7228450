// Package live delivers newly published items into a feedview.Feed while
// the application runs, either over a websocket subscription or by polling
// a DataSource.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adamsharifc/feedview"
)

const (
	handshakeTimeout = 10 * time.Second
	redialDelay      = 2 * time.Second

	// DefaultPollInterval matches the cadence a human notices as "live
	// enough" without hammering the source.
	DefaultPollInterval = 3 * time.Second
)

// Message is the wire shape of one published feed item.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Timestamp time.Time `json:"timestamp"`
	Height    float64   `json:"height"`
}

// Subscriber maintains a websocket connection to a feed publisher and
// pushes each received item into the feed. Connection drops are retried
// until the context is cancelled.
type Subscriber struct {
	url    string
	feed   *feedview.Feed
	dialer *websocket.Dialer
	log    *slog.Logger

	// OnMessage, when set, observes each decoded message before it is
	// pushed. Views use it to retain content for rendering.
	OnMessage func(Message)
}

// NewSubscriber prepares a subscriber for the given websocket URL.
func NewSubscriber(url string, feed *feedview.Feed) *Subscriber {
	return &Subscriber{
		url:  url,
		feed: feed,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		log: slog.Default().With("component", "live.subscriber"),
	}
}

// Run dials and consumes the subscription until ctx is cancelled,
// redialling after connection failures.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			s.log.Warn("subscription interrupted", "url", s.url, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(redialDelay):
		}
	}
}

func (s *Subscriber) consume(ctx context.Context) error {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	s.log.Info("subscribed", "url", s.url)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("dropping malformed message", "error", err)
			continue
		}
		s.deliver(msg)
	}
}

func (s *Subscriber) deliver(msg Message) {
	if s.OnMessage != nil {
		s.OnMessage(msg)
	}
	s.feed.Push(feedview.Item{ID: msg.ID, EstimatedHeight: msg.Height})
}

// Poller periodically asks a DataSource for items newer than the last seen
// cursor and pushes them into the feed. It is the fallback for sources
// without a push channel.
type Poller struct {
	source   feedview.DataSource
	feed     *feedview.Feed
	cursor   string
	interval time.Duration
	log      *slog.Logger
}

// NewPoller starts polling from the given cursor, typically the bottom
// cursor handed out alongside the initial page. A non-positive interval
// falls back to DefaultPollInterval.
func NewPoller(source feedview.DataSource, feed *feedview.Feed, cursor string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:   source,
		feed:     feed,
		cursor:   cursor,
		interval: interval,
		log:      slog.Default().With("component", "live.poller"),
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	res, err := p.source.FetchAfter(ctx, p.cursor)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("poll failed", "error", err)
		}
		return
	}
	for _, item := range res.Items {
		p.feed.Push(item)
	}
	if res.NextCursor != "" {
		p.cursor = res.NextCursor
	}
}
