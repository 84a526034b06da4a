// Package delta tracks filesystem changes made by tool calls so they can be
// reversed on undo. Every write the hashedit tools make is snapshotted
// before it happens, so each one is independently reversible: there is no
// batching of edits into a larger unit — one write in, one undo step out.
package delta

import (
	"database/sql"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Tracker records and replays filesystem deltas for a single server run.
type Tracker struct {
	mu        sync.Mutex
	db        *sql.DB
	sessionID string
}

// New creates a Tracker that writes to the given database.
func New(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// SetSession sets the active session ID, scoping Record*/Undo calls to this
// run so multiple processes sharing one undo database don't see each
// other's history.
func (t *Tracker) SetSession(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = id
}

// RecordModify stores the original content of a file immediately before a
// write, so that write can later be undone on its own. Every call appends a
// new row — edits are never collapsed together, so editing the same file
// twice produces two independently reversible deltas.
func (t *Tracker) RecordModify(filePath string, oldContent []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionID == "" {
		return
	}
	_, err := t.db.Exec(
		`INSERT INTO file_deltas (session_id, file_path, op, old_content, created)
		 VALUES (?, ?, 'modify', ?, strftime('%s','now'))`,
		t.sessionID, filePath, oldContent,
	)
	if err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("failed to record modify delta")
	}
}

// RecordCreate records that a file was created (old_content is NULL).
func (t *Tracker) RecordCreate(filePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionID == "" {
		return
	}
	_, err := t.db.Exec(
		`INSERT INTO file_deltas (session_id, file_path, op, old_content, created)
		 VALUES (?, ?, 'create', NULL, strftime('%s','now'))`,
		t.sessionID, filePath,
	)
	if err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("failed to record create delta")
	}
}

// Undo reverses the most recent n recorded writes for the active session,
// newest first (n < 1 is treated as 1). Modify ops restore old content;
// create ops delete the file. Reversed deltas are removed from the log so a
// second Undo call doesn't replay them. Returns the affected absolute file
// paths in the order they were restored.
func (t *Tracker) Undo(n int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if t.sessionID == "" {
		return nil, nil
	}

	rows, err := t.db.Query(
		`SELECT id, file_path, op, old_content FROM file_deltas
		 WHERE session_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		t.sessionID, n,
	)
	if err != nil {
		return nil, err
	}

	var affected []string
	var ids []int64
	for rows.Next() {
		var id int64
		var filePath, op string
		var oldContent []byte
		if err := rows.Scan(&id, &filePath, &op, &oldContent); err != nil {
			log.Warn().Err(err).Msg("failed to scan delta row")
			continue
		}
		ids = append(ids, id)
		affected = append(affected, filePath)
		switch op {
		case "modify":
			if err := os.WriteFile(filePath, oldContent, 0600); err != nil {
				log.Warn().Err(err).Str("file", filePath).Msg("undo: failed to restore file")
			}
		case "create":
			if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("file", filePath).Msg("undo: failed to remove created file")
			}
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, id := range ids {
		if _, err := t.db.Exec(`DELETE FROM file_deltas WHERE id = ?`, id); err != nil {
			log.Warn().Err(err).Int64("id", id).Msg("failed to remove reversed delta")
		}
	}

	return affected, nil
}

// Clear discards all recorded deltas for the active session without
// reversing them, e.g. once the host considers its history stale.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionID == "" {
		return nil
	}
	_, err := t.db.Exec(`DELETE FROM file_deltas WHERE session_id = ?`, t.sessionID)
	return err
}
