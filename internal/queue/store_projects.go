package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewProject inserts a project awaiting transcription.
func (s *Store) NewProject(ctx context.Context, sourcePath, targetLanguage string, voiceID int) (*Project, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()
	title := inferTitleFromPath(sourcePath)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO projects (
            id, source_path, title, target_language, voice_id, status,
            created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		sourcePath,
		title,
		targetLanguage,
		voiceID,
		StatusPending,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return s.GetByID(ctx, id)
}

func inferTitleFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetByID fetches a project by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// FindByIDPrefix returns the project whose identifier starts with the given
// prefix, or an error when the prefix is ambiguous.
func (s *Store) FindByIDPrefix(ctx context.Context, prefix string) (*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id LIKE ? ORDER BY created_at LIMIT 2`,
		prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("find by id prefix: %w", err)
	}
	defer rows.Close()

	var matches []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
	}
}

// Update persists changes to an existing project.
func (s *Store) Update(ctx context.Context, project *Project) error {
	if project == nil {
		return errors.New("project is nil")
	}
	project.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE projects
         SET source_path = ?, title = ?, source_language = ?, target_language = ?,
             voice_id = ?, status = ?, transcript_json = ?, translation_json = ?,
             synthesis_file = ?, alignment_json = ?, output_path = ?, error_message = ?,
             usage_seconds = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             updated_at = ?
         WHERE id = ?`,
		project.SourcePath,
		nullableString(project.Title),
		nullableString(project.SourceLanguage),
		project.TargetLanguage,
		project.VoiceID,
		project.Status,
		nullableString(project.TranscriptJSON),
		nullableString(project.TranslationJSON),
		nullableString(project.SynthesisFile),
		nullableString(project.AlignmentJSON),
		nullableString(project.OutputPath),
		nullableString(project.ErrorMessage),
		project.UsageSeconds,
		nullableString(project.ProgressStage),
		project.ProgressPercent,
		nullableString(project.ProgressMessage),
		project.UpdatedAt.Format(time.RFC3339Nano),
		project.ID,
	); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// List returns projects filtered by status set (or all projects when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Project, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + projectColumns + ` FROM projects`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// NextForStatuses returns the oldest project matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Project, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE status IN (` + placeholders + `) ORDER BY created_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Remove deletes a project by identifier along with its synthesized audio.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	if err := s.removeSynthesisArtifacts(ctx, `id = ?`, id); err != nil {
		return false, err
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed projects.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	if err := s.removeSynthesisArtifacts(ctx, `status = ?`, StatusCompleted); err != nil {
		return 0, err
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed projects.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	if err := s.removeSynthesisArtifacts(ctx, `status = ?`, StatusFailed); err != nil {
		return 0, err
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all projects.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if err := s.removeSynthesisArtifacts(ctx, ``); err != nil {
		return 0, err
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// removeSynthesisArtifacts deletes the synthesized audio files belonging to
// the projects a delete statement is about to drop. Files already gone are
// not an error.
func (s *Store) removeSynthesisArtifacts(ctx context.Context, whereClause string, args ...any) error {
	query := `SELECT synthesis_file FROM projects WHERE synthesis_file IS NOT NULL AND synthesis_file != ''`
	if whereClause != "" {
		query += ` AND ` + whereClause
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list synthesis artifacts: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove synthesis artifact %s: %w", path, err)
		}
	}
	return nil
}
