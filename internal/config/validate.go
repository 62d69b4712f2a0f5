package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration values for consistency. It is called by Load
// after defaults and normalization are applied.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		problems = append(problems, "paths.work_dir must not be empty")
	}
	if c.Transcription.WindowSeconds <= 0 {
		problems = append(problems, "transcription.window_seconds must be positive")
	}
	if c.Transcription.MinWindowMs < 0 {
		problems = append(problems, "transcription.min_window_ms must not be negative")
	}
	if c.Transcription.MinWindowMs >= c.Transcription.WindowSeconds*1000 {
		problems = append(problems, "transcription.min_window_ms must be shorter than the window")
	}
	if c.Translation.ChunkChars <= 0 {
		problems = append(problems, "translation.chunk_chars must be positive")
	}
	if c.Synthesis.MinSilenceMs <= 0 {
		problems = append(problems, "synthesis.min_silence_ms must be positive")
	}
	if c.Synthesis.SilenceThresholdB >= 0 {
		problems = append(problems, "synthesis.silence_threshold_db must be negative")
	}
	if c.Synthesis.PaddingMs < 0 {
		problems = append(problems, "synthesis.padding_ms must not be negative")
	}
	// The synthesizer pause separates adjacent segments in the synthesized
	// audio. If it does not exceed min_silence_ms the detector merges
	// neighboring segments and every later pairing desynchronizes.
	if c.Synthesis.PauseMs < c.Synthesis.MinSilenceMs {
		problems = append(problems, fmt.Sprintf(
			"synthesis.pause_ms (%d) must be at least synthesis.min_silence_ms (%d)",
			c.Synthesis.PauseMs, c.Synthesis.MinSilenceMs))
	}
	if c.Overlay.VolumeReductionDB < 0 {
		problems = append(problems, "overlay.volume_reduction_db must not be negative")
	}
	if c.Overlay.StretchToleranceMs < 0 {
		problems = append(problems, "overlay.stretch_tolerance_ms must not be negative")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		problems = append(problems, "workflow.queue_poll_interval must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
