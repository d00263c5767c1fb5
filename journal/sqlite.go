package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists events in a SQLite database. Use ":memory:" as the
// path for an ephemeral store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite-backed store at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// The driver opens one connection per query by default; the versioned
	// append depends on transactions seeing each other, so pin to one.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journal (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		stream_id TEXT NOT NULL,
		version INTEGER NOT NULL,
		type TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		data TEXT,
		UNIQUE(stream_id, version)
	);

	CREATE INDEX IF NOT EXISTS idx_journal_stream ON journal(stream_id, version);
	CREATE INDEX IF NOT EXISTS idx_journal_type ON journal(type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds events to a stream inside one transaction, enforcing the
// expected version.
func (s *SQLiteStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), -1) FROM journal WHERE stream_id = ?`, streamID,
	).Scan(&current)
	if err != nil {
		return -1, fmt.Errorf("reading stream version: %w", err)
	}
	if current != expectedVersion {
		return current, ErrConcurrencyConflict
	}

	for _, ev := range events {
		current++
		ev.StreamID = streamID
		ev.Version = current
		_, err := tx.ExecContext(ctx,
			`INSERT INTO journal (id, stream_id, version, type, timestamp, data) VALUES (?, ?, ?, ?, ?, ?)`,
			ev.ID, streamID, ev.Version, ev.Type,
			ev.Timestamp.UTC().Format(time.RFC3339Nano), string(ev.Data),
		)
		if err != nil {
			return -1, fmt.Errorf("inserting event %s: %w", ev.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("committing: %w", err)
	}
	return current, nil
}

// Read returns a stream's events from the given version onward.
func (s *SQLiteStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stream_id, version, type, timestamp, data
		 FROM journal WHERE stream_id = ? AND version >= ? ORDER BY version`,
		streamID, fromVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("querying stream: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadAll returns every stored event matching the filter, in append order.
func (s *SQLiteStore) ReadAll(ctx context.Context, filter Filter) ([]*Event, error) {
	query := `SELECT id, stream_id, version, type, timestamp, data FROM journal`
	var conds []string
	var args []any
	if filter.StreamID != "" {
		conds = append(conds, "stream_id = ?")
		args = append(args, filter.StreamID)
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		conds = append(conds, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var ev Event
		var ts, data string
		if err := rows.Scan(&ev.ID, &ev.StreamID, &ev.Version, &ev.Type, &ts, &data); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
		}
		ev.Timestamp = parsed
		if data != "" {
			ev.Data = []byte(data)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// StreamVersion returns a stream's current version, -1 if it does not
// exist.
func (s *SQLiteStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), -1) FROM journal WHERE stream_id = ?`, streamID,
	).Scan(&version)
	if err != nil {
		return -1, fmt.Errorf("reading stream version: %w", err)
	}
	return version, nil
}

// DeleteStream removes a stream and its events.
func (s *SQLiteStore) DeleteStream(ctx context.Context, streamID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM journal WHERE stream_id = ?`, streamID)
	if err != nil {
		return fmt.Errorf("deleting stream: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
