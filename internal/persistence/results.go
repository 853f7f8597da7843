package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"auditflow/internal/agent"
)

// SaveProgress upserts the live status row for one agent. Idempotent:
// repeated calls for the same agent overwrite the previous values.
func (s *SQLiteStore) SaveProgress(ctx context.Context, agentName string, percent int, label string, status agent.Status) error {
	if s.runID == "" {
		return fmt.Errorf("no run bound; call StartRun first")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_results (run_id, agent_name, status, progress_pct, current_task, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(run_id, agent_name) DO UPDATE SET
			status = excluded.status,
			progress_pct = excluded.progress_pct,
			current_task = excluded.current_task,
			updated_at = CURRENT_TIMESTAMP
	`, s.runID, agentName, string(status), percent, label)
	if err != nil {
		return fmt.Errorf("failed to upsert progress for %s: %w", agentName, err)
	}
	return nil
}

// SaveResult upserts the terminal record for one agent, including the full
// payload as JSON. Last write wins.
func (s *SQLiteStore) SaveResult(ctx context.Context, rec agent.Record) error {
	if s.runID == "" {
		return fmt.Errorf("no run bound; call StartRun first")
	}

	payloadJSON := ""
	if rec.Payload != nil {
		data, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload for %s: %w", rec.Name, err)
		}
		payloadJSON = string(data)
	}

	var score sql.NullFloat64
	var grade sql.NullString
	if v, ok := rec.Payload["score"].(float64); ok {
		score = sql.NullFloat64{Float64: v, Valid: true}
	}
	if v, ok := rec.Payload["grade"].(string); ok && v != "" {
		grade = sql.NullString{String: v, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_results (run_id, agent_name, status, progress_pct, current_task, score, grade, result_data, error_message, started_at, completed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(run_id, agent_name) DO UPDATE SET
			status = excluded.status,
			progress_pct = excluded.progress_pct,
			current_task = excluded.current_task,
			score = excluded.score,
			grade = excluded.grade,
			result_data = excluded.result_data,
			error_message = excluded.error_message,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			updated_at = CURRENT_TIMESTAMP
	`, s.runID, rec.Name, string(rec.Status), rec.Progress, rec.CurrentTask,
		score, grade, payloadJSON, nullString(rec.ErrorDetail),
		nullTime(rec.StartedAt), nullTime(rec.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert result for %s: %w", rec.Name, err)
	}
	return nil
}

// ListResults loads all agent records stored for the given run.
func (s *SQLiteStore) ListResults(ctx context.Context, runID string) ([]agent.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_name, status, progress_pct, current_task, result_data, error_message, started_at, completed_at
		FROM agent_results
		WHERE run_id = ?
		ORDER BY agent_name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var records []agent.Record
	for rows.Next() {
		var rec agent.Record
		var currentTask, resultData, errorMessage sql.NullString
		var startedAt, completedAt sql.NullTime
		var status string

		if err := rows.Scan(&rec.Name, &status, &rec.Progress, &currentTask, &resultData, &errorMessage, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		rec.Status = agent.Status(status)
		rec.CurrentTask = currentTask.String
		rec.ErrorDetail = errorMessage.String
		if startedAt.Valid {
			rec.StartedAt = startedAt.Time
		}
		if completedAt.Valid {
			rec.CompletedAt = completedAt.Time
		}
		if resultData.Valid && resultData.String != "" {
			var payload map[string]any
			if err := json.Unmarshal([]byte(resultData.String), &payload); err == nil {
				rec.Payload = payload
			}
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
