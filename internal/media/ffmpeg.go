package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"redub/internal/timeline"
)

// ExtractWindow exports a time window of the source's audio as a mono 16 kHz
// WAV file suitable for the transcription endpoint.
func (p *Processor) ExtractWindow(ctx context.Context, source string, startSec, durationSec float64, dest string) error {
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durationSec),
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		dest)
	if err != nil {
		return fmt.Errorf("extract window: %w", err)
	}
	return nil
}

// ExtractAudioTrack pulls the full audio track out of a media file as WAV.
func (p *Processor) ExtractAudioTrack(ctx context.Context, source, dest string) error {
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		dest)
	if err != nil {
		return fmt.Errorf("extract audio track: %w", err)
	}
	return nil
}

// SliceAudio copies the span of an audio file into dest.
func (p *Processor) SliceAudio(ctx context.Context, source string, span timeline.AudioSpan, dest string) error {
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-ss", formatMs(span.Start),
		"-t", formatMs(span.DurationMs()),
		"-i", source,
		"-acodec", "pcm_s16le",
		dest)
	if err != nil {
		return fmt.Errorf("slice audio: %w", err)
	}
	return nil
}

// TimeStretch rescales an audio file's duration by ratio without changing
// pitch. A ratio below 1 compresses the audio to fit a shorter slot. The
// ratio is uncapped; pathological values produce audible distortion but still
// render.
func (p *Processor) TimeStretch(ctx context.Context, source, dest string, ratio float64) error {
	if ratio <= 0 {
		return fmt.Errorf("time stretch: ratio must be positive, got %v", ratio)
	}
	filter := atempoChain(1 / ratio)
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-i", source,
		"-af", filter,
		dest)
	if err != nil {
		return fmt.Errorf("time stretch: %w", err)
	}
	return nil
}

// atempoChain builds an atempo filter chain for an arbitrary tempo factor.
// Each atempo instance only accepts [0.5, 2.0], so larger factors are
// decomposed into a product of in-range stages.
func atempoChain(tempo float64) string {
	var stages []string
	for tempo > 2.0 {
		stages = append(stages, "atempo=2.0")
		tempo /= 2.0
	}
	for tempo < 0.5 {
		stages = append(stages, "atempo=0.5")
		tempo /= 0.5
	}
	stages = append(stages, "atempo="+strconv.FormatFloat(tempo, 'f', 6, 64))
	return strings.Join(stages, ",")
}

// SilentTrack writes a stereo silent audio file of the given duration.
func (p *Processor) SilentTrack(ctx context.Context, durationMs int64, dest string) error {
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", formatMs(durationMs),
		dest)
	if err != nil {
		return fmt.Errorf("silent track: %w", err)
	}
	return nil
}

// AttenuateWindows lowers the source's volume by db decibels inside each of
// the given timeline windows, leaving audio outside the windows untouched.
func (p *Processor) AttenuateWindows(ctx context.Context, source string, windows []timeline.TimeRange, db float64, dest string) error {
	if len(windows) == 0 {
		_, err := p.run(ctx, p.ffmpeg, "-y", "-v", "error", "-i", source, "-acodec", "pcm_s16le", dest)
		if err != nil {
			return fmt.Errorf("attenuate windows: %w", err)
		}
		return nil
	}
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-i", source,
		"-af", attenuationFilter(windows, db),
		dest)
	if err != nil {
		return fmt.Errorf("attenuate windows: %w", err)
	}
	return nil
}

func attenuationFilter(windows []timeline.TimeRange, db float64) string {
	terms := make([]string, len(windows))
	for i, w := range windows {
		terms[i] = fmt.Sprintf("between(t,%s,%s)", formatSeconds(w.Start), formatSeconds(w.End))
	}
	return fmt.Sprintf("volume=volume=-%sdB:enable='%s'",
		strconv.FormatFloat(db, 'f', -1, 64),
		strings.Join(terms, "+"))
}

// OverlayAt mixes the insert audio onto the base track starting at the given
// absolute position. The base track's length is preserved.
func (p *Processor) OverlayAt(ctx context.Context, base, insert string, positionMs int64, dest string) error {
	delay := strconv.FormatInt(positionMs, 10)
	filter := fmt.Sprintf("[1:a]adelay=%s|%s[ins];[0:a][ins]amix=inputs=2:duration=first:normalize=0[out]", delay, delay)
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-i", base,
		"-i", insert,
		"-filter_complex", filter,
		"-map", "[out]",
		dest)
	if err != nil {
		return fmt.Errorf("overlay at %dms: %w", positionMs, err)
	}
	return nil
}

// ReplaceAudio muxes the composed audio track onto the source video, copying
// the video stream so frame rate and quality are untouched.
func (p *Processor) ReplaceAudio(ctx context.Context, video, audio, dest string) error {
	_, err := p.run(ctx, p.ffmpeg,
		"-y", "-v", "error",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		dest)
	if err != nil {
		return fmt.Errorf("replace audio: %w", err)
	}
	return nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func formatMs(ms int64) string {
	return formatSeconds(float64(ms) / 1000)
}
