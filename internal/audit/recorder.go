// Package audit records scheduler observability events to a SQLite
// file. It is telemetry only: nothing here is read back to restore
// runtime state.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/solifugus/mbl/internal/runtime"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	moment_index INTEGER NOT NULL,
	kind         TEXT NOT NULL,
	subject      TEXT NOT NULL,
	payload      TEXT NOT NULL,
	at           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS events_session ON events (session_id, moment_index);
`

// Recorder appends observability events to a SQLite database. One
// recorder represents one session.
type Recorder struct {
	db        *sql.DB
	sessionID string
}

// Open creates or opens the database at path and prepares the schema.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare audit schema: %w", err)
	}
	return &Recorder{db: db, sessionID: uuid.NewString()}, nil
}

// SessionID identifies this recorder's rows.
func (r *Recorder) SessionID() string { return r.sessionID }

// Hook returns an observability hook that appends each event. Write
// failures are swallowed: the hook must not influence execution.
func (r *Recorder) Hook() runtime.Hook {
	return func(ev runtime.Event) {
		_, _ = r.db.Exec(
			`INSERT INTO events (session_id, moment_index, kind, subject, payload, at) VALUES (?, ?, ?, ?, ?, ?)`,
			r.sessionID, int64(ev.MomentIndex), string(ev.Kind), ev.Subject, ev.Payload,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
	}
}

// Count reports how many events this session has recorded.
func (r *Recorder) Count() (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE session_id = ?`, r.sessionID).Scan(&n)
	return n, err
}

// Close flushes and closes the database.
func (r *Recorder) Close() error { return r.db.Close() }
