package queue

import (
	"database/sql"
	"errors"
	"time"
)

const projectColumns = "id, source_path, title, source_language, target_language, voice_id, status, transcript_json, translation_json, synthesis_file, alignment_json, output_path, error_message, usage_seconds, progress_stage, progress_percent, progress_message, created_at, updated_at"

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		id              string
		sourcePath      string
		title           sql.NullString
		sourceLanguage  sql.NullString
		targetLanguage  string
		voiceID         sql.NullInt64
		statusStr       string
		transcript      sql.NullString
		translation     sql.NullString
		synthesisFile   sql.NullString
		alignment       sql.NullString
		outputPath      sql.NullString
		errorMessage    sql.NullString
		usageSeconds    sql.NullFloat64
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&title,
		&sourceLanguage,
		&targetLanguage,
		&voiceID,
		&statusStr,
		&transcript,
		&translation,
		&synthesisFile,
		&alignment,
		&outputPath,
		&errorMessage,
		&usageSeconds,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	project := &Project{
		ID:              id,
		SourcePath:      sourcePath,
		Title:           title.String,
		SourceLanguage:  sourceLanguage.String,
		TargetLanguage:  targetLanguage,
		VoiceID:         int(voiceID.Int64),
		Status:          Status(statusStr),
		TranscriptJSON:  transcript.String,
		TranslationJSON: translation.String,
		SynthesisFile:   synthesisFile.String,
		AlignmentJSON:   alignment.String,
		OutputPath:      outputPath.String,
		ErrorMessage:    errorMessage.String,
		UsageSeconds:    usageSeconds.Float64,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		project.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		project.UpdatedAt = updated
	}
	return project, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
