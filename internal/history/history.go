// Package history keeps a durable ledger of practice events in SQLite,
// one row per session start, success, or failure. The status store tracks
// only the current streak and score; the ledger preserves the full record.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"reprise/internal/session"
	"reprise/pkg/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// History wraps a *sql.DB holding the practice-event ledger. It is safe for
// concurrent use because the underlying *sql.DB is concurrency-safe.
type History struct {
	conn   *sql.DB
	logger *logrus.Logger

	insertEventStmt *sql.Stmt
}

// NewHistory opens (or creates) the ledger database at the provided path and
// ensures the events table exists. Caller should Close() it when finished.
func NewHistory(dbPath string) (*History, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Single desktop process; one connection avoids SQLite lock contention.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=memory;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	h := &History{
		conn:   conn,
		logger: logger,
	}

	if err := h.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := h.prepareStatements(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("Practice history initialized")
	return h, nil
}

// createTables creates the events table and its indices if they do not
// already exist. Idempotent.
func (h *History) createTables() error {
	eventsTable := `
	CREATE TABLE IF NOT EXISTS practice_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_type TEXT NOT NULL,
		instrument TEXT,
		kind TEXT NOT NULL,
		streak INTEGER NOT NULL DEFAULT 0,
		score REAL NOT NULL DEFAULT 0,
		occurred_at DATETIME NOT NULL
	);`
	if _, err := h.conn.Exec(eventsTable); err != nil {
		return fmt.Errorf("failed to create practice_events table: %w", err)
	}

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_events_item ON practice_events(item_id);",
		"CREATE INDEX IF NOT EXISTS idx_events_session ON practice_events(session_id);",
		"CREATE INDEX IF NOT EXISTS idx_events_occurred ON practice_events(occurred_at);",
	}
	for _, index := range indices {
		if _, err := h.conn.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (h *History) prepareStatements() error {
	stmt, err := h.conn.Prepare(`
		INSERT INTO practice_events (session_id, item_id, item_type, instrument, kind, streak, score, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	h.insertEventStmt = stmt
	return nil
}

// Record appends one event to the ledger. Failures are logged, never
// propagated: losing a ledger row must not interrupt a practice session.
func (h *History) Record(event session.Event) {
	_, err := h.insertEventStmt.Exec(
		event.SessionID,
		event.ItemID,
		string(event.ItemType),
		event.Instrument,
		string(event.Kind),
		event.Streak,
		event.Score,
		event.OccurredAt,
	)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"item_id": event.ItemID,
			"kind":    event.Kind,
		}).Error("Failed to record practice event")
	}
}

// EventsForItem returns the recorded events for one item, newest first.
func (h *History) EventsForItem(itemID string, limit int) ([]session.Event, error) {
	rows, err := h.conn.Query(`
		SELECT session_id, item_id, item_type, instrument, kind, streak, score, occurred_at
		FROM practice_events
		WHERE item_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEventRows(rows)
}

// RecentEvents returns the newest events across all items.
func (h *History) RecentEvents(limit int) ([]session.Event, error) {
	rows, err := h.conn.Query(`
		SELECT session_id, item_id, item_type, instrument, kind, streak, score, occurred_at
		FROM practice_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEventRows(rows)
}

// Close releases prepared statements and the database connection.
func (h *History) Close() error {
	if h.insertEventStmt != nil {
		h.insertEventStmt.Close()
	}
	return h.conn.Close()
}

func scanEventRows(rows *sql.Rows) ([]session.Event, error) {
	var events []session.Event
	for rows.Next() {
		var event session.Event
		var itemType, kind string
		var occurredAt time.Time
		if err := rows.Scan(
			&event.SessionID,
			&event.ItemID,
			&itemType,
			&event.Instrument,
			&kind,
			&event.Streak,
			&event.Score,
			&occurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		event.ItemType = models.ItemType(itemType)
		event.Kind = session.EventKind(kind)
		event.OccurredAt = occurredAt
		events = append(events, event)
	}
	return events, rows.Err()
}
