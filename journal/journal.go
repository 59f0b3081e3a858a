// Package journal persists engine events to SQLite so a session can be
// replayed or inspected after the fact.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

//go:embed schema.sql
var schema string

// Journal is an events.Publisher backed by a SQLite table. Write failures
// are logged and never reach the engine.
type Journal struct {
	db     *sql.DB
	logger telemetry.Logger
	turn   int
	now    func() time.Time
}

var _ events.Publisher = (*Journal)(nil)

// Entry is one stored event.
type Entry struct {
	ID         int64
	Turn       int
	Type       string
	Entity     string
	Data       map[string]any
	RecordedAt time.Time
}

// Query filters Events. Zero fields match everything.
type Query struct {
	Entity    string
	Type      string
	SinceTurn int
	Limit     int
	// Newest orders the result newest first, so Limit keeps the most
	// recent events.
	Newest    bool
}

// Open opens (creating if needed) the journal database at path.
func Open(path string, logger telemetry.Logger) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if logger == nil {
		logger = telemetry.Discard
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Journal{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// SetTurn sets the turn stamped on subsequent events, e.g. after a load.
func (j *Journal) SetTurn(turn int) {
	j.turn = turn
}

// Turn reports the turn the next event will be stamped with.
func (j *Journal) Turn() int {
	return j.turn
}

// Publish implements events.Publisher. A round_ended event advances the
// journal's turn counter past the turn it reports.
func (j *Journal) Publish(ctx context.Context, ev types.Event) {
	if j == nil || j.db == nil {
		return
	}
	if err := j.insert(ctx, ev); err != nil {
		telemetry.Diag(j.logger, "journal: %v", err)
	}
	if ev.Type == events.RoundEnded {
		if t, ok := ev.Data["turn"].(int); ok {
			j.turn = t + 1
		}
	}
}

func (j *Journal) insert(ctx context.Context, ev types.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("encode %s data: %w", ev.Type, err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO events (turn, type, entity, data, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		j.turn, ev.Type, ev.Entity, string(data), j.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", ev.Type, err)
	}
	return nil
}

// Events returns stored events matching q, oldest first unless q.Newest
// is set.
func (j *Journal) Events(ctx context.Context, q Query) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if q.Entity != "" {
		where = append(where, "entity = ?")
		args = append(args, q.Entity)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}
	if q.SinceTurn > 0 {
		where = append(where, "turn >= ?")
		args = append(args, q.SinceTurn)
	}
	stmt := "SELECT id, turn, type, entity, data, recorded_at FROM events"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	if q.Newest {
		stmt += " ORDER BY id DESC"
	} else {
		stmt += " ORDER BY id"
	}
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			data string
			at   int64
		)
		if err := rows.Scan(&e.ID, &e.Turn, &e.Type, &e.Entity, &data, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", e.ID, err)
		}
		e.RecordedAt = time.UnixMilli(at).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return out, nil
}

// Count returns the number of stored events.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
