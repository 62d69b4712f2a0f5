package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a dubbing project.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusTranslating  Status = "translating"
	StatusTranslated   Status = "translated"
	StatusSynthesizing Status = "synthesizing"
	StatusSynthesized  Status = "synthesized"
	StatusComposing    Status = "composing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusTranscribing,
	StatusTranscribed,
	StatusTranslating,
	StatusTranslated,
	StatusSynthesizing,
	StatusSynthesized,
	StatusComposing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusTranscribing: {},
	StatusTranslating:  {},
	StatusSynthesizing: {},
	StatusComposing:    {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map an interrupted in-flight status back to the
// completed status that precedes it, so a restarted daemon reruns the stage.
var stageRollbackTransitions = []statusTransition{
	{from: StatusTranscribing, to: StatusPending},
	{from: StatusTranslating, to: StatusTranscribed},
	{from: StatusSynthesizing, to: StatusTranslated},
	{from: StatusComposing, to: StatusSynthesized},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Project represents a dubbing project persisted in SQLite.
type Project struct {
	ID              string
	SourcePath      string
	Title           string
	SourceLanguage  string
	TargetLanguage  string
	VoiceID         int
	Status          Status
	TranscriptJSON  string
	TranslationJSON string
	SynthesisFile   string
	AlignmentJSON   string
	OutputPath      string
	ErrorMessage    string
	UsageSeconds    float64
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (p Project) IsProcessing() bool {
	_, ok := processingStatuses[p.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// SetProgress updates all three progress fields together.
func (p *Project) SetProgress(stage, message string, percent float64) {
	p.ProgressStage = stage
	p.ProgressMessage = message
	p.ProgressPercent = percent
}

// SetFailed marks the project as failed with the given error message.
func (p *Project) SetFailed(message string) {
	p.Status = StatusFailed
	p.ErrorMessage = message
	p.ProgressStage = "Failed"
	p.ProgressPercent = 0
	p.ProgressMessage = message
}
