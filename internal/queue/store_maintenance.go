package queue

import (
	"context"
	"fmt"
	"time"
)

// Stats returns a count of projects grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusFailed:
			health.Failed += count
		case StatusCompleted:
			health.Completed += count
		default:
			if _, ok := processingStatuses[status]; ok {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// ResetStuckProcessing rolls projects left in an in-flight status back to the
// start of their current stage. Called on daemon startup after an unclean stop.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	args := make([]any, 0, len(stageRollbackTransitions)*2+1+len(stageRollbackTransitions))
	caseClause := ""
	whereClause := ""
	for i, tr := range stageRollbackTransitions {
		caseClause += " WHEN ? THEN ?"
		if i > 0 {
			whereClause += ", "
		}
		whereClause += "?"
		args = append(args, tr.from, tr.to)
	}
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	for _, tr := range stageRollbackTransitions {
		args = append(args, tr.from)
	}

	query := `UPDATE projects
        SET status = CASE status` + caseClause + ` ELSE status END,
            progress_stage = 'Reset from stuck processing',
            progress_percent = 0, progress_message = NULL, updated_at = ?
        WHERE status IN (` + whereClause + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck projects: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed projects back to pending for reprocessing. With no
// ids, all failed projects are retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE projects
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed projects: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusFailed)
	query := `UPDATE projects
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = ?`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected projects: %w", err)
	}
	return res.RowsAffected()
}

// TotalUsageSeconds sums synthesized audio usage across completed projects.
func (s *Store) TotalUsageSeconds(ctx context.Context) (float64, error) {
	var total float64
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(usage_seconds), 0) FROM projects`)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum usage: %w", err)
	}
	return total, nil
}
