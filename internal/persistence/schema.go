package persistence

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		company_url TEXT NOT NULL,
		company_name TEXT,
		run_mode TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS agent_results (
		run_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		status TEXT NOT NULL,
		progress_pct INTEGER NOT NULL DEFAULT 0,
		current_task TEXT,
		score REAL,
		grade TEXT,
		result_data TEXT,
		error_message TEXT,
		started_at DATETIME,
		completed_at DATETIME,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, agent_name),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_agent_results_run_id ON agent_results(run_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
