// Package sqlitefeed provides a feedview.DataSource backed by a local
// sqlite database, paginating with keyset cursors over an append-only
// items table.
package sqlitefeed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/adamsharifc/feedview"
)

const (
	defaultBusyTimeout = 5 * time.Second
	defaultPageSize    = 20
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS items (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT    NOT NULL UNIQUE,
		content    TEXT    NOT NULL DEFAULT '',
		image_url  TEXT    NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		height     REAL    NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at)`,
}

// Options describes parameters for opening a feed store.
type Options struct {
	Path     string // Database file path, or ":memory:" for tests.
	ReadOnly bool
	PageSize int // Rows per fetch (defaults to 20).
}

// Store reads and writes feed items in sqlite. Its fetch methods satisfy
// feedview.DataSource: cursors are opaque strings wrapping the row sequence
// number, so pagination is stable under concurrent inserts.
type Store struct {
	db       *sql.DB
	pageSize int
}

var _ feedview.DataSource = (*Store)(nil)

// Record is one stored feed item.
type Record struct {
	Seq       int64
	ID        string
	Content   string
	ImageURL  string
	CreatedAt time.Time
	Height    float64
}

// NotFoundError indicates a requested record does not exist.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ID)
}

// IsNotFound returns true when err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// Open initialises the feed store at opts.Path, creating the schema when
// it is missing.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("sqlitefeed: database path is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}

	dsn := opts.Path
	if opts.ReadOnly {
		dsn = fmt.Sprintf("file:%s?mode=ro", opts.Path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitefeed: open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := applyPragmas(ctx, db, opts.ReadOnly); err != nil {
		db.Close()
		return nil, err
	}
	if !opts.ReadOnly {
		if err := applySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{db: db, pageSize: opts.PageSize}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(ctx context.Context, db *sql.DB, readOnly bool) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", int(defaultBusyTimeout.Milliseconds())),
		"PRAGMA foreign_keys = ON",
	}
	if !readOnly {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlitefeed: apply pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitefeed: begin schema transaction: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlitefeed: apply schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitefeed: commit schema transaction: %w", err)
	}
	return nil
}

const recordColumns = "seq, id, content, image_url, created_at, height"

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var createdAt int64
	if err := rows.Scan(&rec.Seq, &rec.ID, &rec.Content, &rec.ImageURL, &createdAt, &rec.Height); err != nil {
		return Record{}, fmt.Errorf("sqlitefeed: scan item: %w", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rec, nil
}

func parseCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	seq, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sqlitefeed: malformed cursor %q: %w", cursor, err)
	}
	return seq, nil
}

func formatCursor(seq int64) string {
	return strconv.FormatInt(seq, 10)
}

// FetchAfter returns up to PageSize items newer than cursor, oldest first.
// An empty cursor starts from the beginning of the table.
func (s *Store) FetchAfter(ctx context.Context, cursor string) (feedview.FetchResult, error) {
	seq, err := parseCursor(cursor)
	if err != nil {
		return feedview.FetchResult{}, err
	}

	query := fmt.Sprintf("SELECT %s FROM items WHERE seq > ? ORDER BY seq ASC LIMIT ?", recordColumns)
	recs, err := s.queryRecords(ctx, query, seq, s.pageSize)
	if err != nil {
		return feedview.FetchResult{}, err
	}

	res := feedview.FetchResult{
		Items:     toItems(recs),
		Exhausted: len(recs) < s.pageSize,
	}
	if len(recs) > 0 {
		res.NextCursor = formatCursor(recs[len(recs)-1].Seq)
	}
	return res, nil
}

// FetchBefore returns up to PageSize items older than cursor, oldest first.
// An empty cursor means there is no older history.
func (s *Store) FetchBefore(ctx context.Context, cursor string) (feedview.FetchResult, error) {
	if cursor == "" {
		return feedview.FetchResult{Exhausted: true}, nil
	}
	seq, err := parseCursor(cursor)
	if err != nil {
		return feedview.FetchResult{}, err
	}

	query := fmt.Sprintf("SELECT %s FROM items WHERE seq < ? ORDER BY seq DESC LIMIT ?", recordColumns)
	recs, err := s.queryRecords(ctx, query, seq, s.pageSize)
	if err != nil {
		return feedview.FetchResult{}, err
	}
	reverse(recs)

	res := feedview.FetchResult{
		Items:     toItems(recs),
		Exhausted: len(recs) < s.pageSize,
	}
	if len(recs) > 0 {
		res.NextCursor = formatCursor(recs[0].Seq)
	}
	return res, nil
}

// InitialPage returns the newest PageSize items plus the cursors to hand to
// feedview.Feed.Reset.
func (s *Store) InitialPage(ctx context.Context) (items []feedview.Item, topCursor, bottomCursor string, err error) {
	query := fmt.Sprintf("SELECT %s FROM items ORDER BY seq DESC LIMIT ?", recordColumns)
	recs, err := s.queryRecords(ctx, query, s.pageSize)
	if err != nil {
		return nil, "", "", err
	}
	reverse(recs)

	if len(recs) > 0 {
		topCursor = formatCursor(recs[0].Seq)
		bottomCursor = formatCursor(recs[len(recs)-1].Seq)
	}
	return toItems(recs), topCursor, bottomCursor, nil
}

// Get returns the stored record for id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	query := fmt.Sprintf("SELECT %s FROM items WHERE id = ?", recordColumns)
	recs, err := s.queryRecords(ctx, query, id)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, NotFoundError{ID: id}
	}
	return recs[0], nil
}

// Insert stores a new record. A zero ID is assigned a fresh UUID, a zero
// CreatedAt the current time. The stored record is returned.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO items (id, content, image_url, created_at, height) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.Content, rec.ImageURL, rec.CreatedAt.Unix(), rec.Height)
	if err != nil {
		return Record{}, fmt.Errorf("sqlitefeed: insert item %s: %w", rec.ID, err)
	}
	rec.Seq, err = result.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("sqlitefeed: insert item %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Seed inserts n placeholder items for demos and tests.
func (s *Store) Seed(ctx context.Context, n int) error {
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		rec := Record{
			Content:   fmt.Sprintf("Feed item %d", i+1),
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/400/200", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := s.Insert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitefeed: query items: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitefeed: iterate items: %w", err)
	}
	return recs, nil
}

func toItems(recs []Record) []feedview.Item {
	items := make([]feedview.Item, len(recs))
	for i, rec := range recs {
		items[i] = feedview.Item{ID: rec.ID, EstimatedHeight: rec.Height}
	}
	return items
}

func reverse(recs []Record) {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
}
