package delta

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_deltas (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	file_path   TEXT NOT NULL,
	op          TEXT NOT NULL CHECK (op IN ('modify', 'create')),
	old_content BLOB,
	created     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_file_deltas_session ON file_deltas (session_id, id);
`

// OpenDB opens (creating if necessary) the SQLite database backing a
// Tracker's undo log at path, applying the file_deltas schema.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open undo database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate undo database: %w", err)
	}
	return db, nil
}
