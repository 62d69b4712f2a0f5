package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// Processor shells out to ffmpeg/ffprobe for all audio and video operations.
type Processor struct {
	ffmpeg  string
	ffprobe string
	run     Runner
}

// NewProcessor creates a processor using the given binary names. Empty values
// fall back to the binaries on PATH.
func NewProcessor(ffmpegBinary, ffprobeBinary string) *Processor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Processor{ffmpeg: ffmpegBinary, ffprobe: ffprobeBinary, run: defaultRunner}
}

// WithRunner sets a custom command runner (for testing).
func (p *Processor) WithRunner(runner Runner) *Processor {
	if runner != nil {
		p.run = runner
	}
	return p
}
