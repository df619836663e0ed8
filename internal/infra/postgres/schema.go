package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the question tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db DBTX) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			position INTEGER PRIMARY KEY,
			id       TEXT NOT NULL,
			question TEXT NOT NULL,
			answer   TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_id ON questions(id);`,
		`CREATE TABLE IF NOT EXISTS collections (
			id INTEGER PRIMARY KEY CHECK (id BETWEEN 1 AND 184)
		);`,
		`CREATE TABLE IF NOT EXISTS collection_items (
			collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			position      INTEGER NOT NULL,
			question_id   TEXT NOT NULL,
			PRIMARY KEY (collection_id, position)
		);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
