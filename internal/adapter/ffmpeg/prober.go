package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"squish/internal/domain"
	"squish/internal/port"
)

var commandContext = exec.CommandContext

// Prober extracts the media stats needed for bitrate planning by
// shelling out to ffprobe.
type Prober struct {
	binary string
}

func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Probe asks ffprobe for the first audio stream's bitrate and the
// container duration. The two values come back as bare lines, bitrate
// first, because -show_entries output follows stream/format section
// order.
func (p *Prober) Probe(ctx context.Context, path string) (domain.MediaStats, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "format=duration:stream=bit_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	cmd := commandContext(ctx, p.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return domain.MediaStats{}, fmt.Errorf("%w: %v", domain.ErrProbeUnavailable, err)
	}
	if err := cmd.Wait(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return domain.MediaStats{}, fmt.Errorf("%w: %s", domain.ErrProbeFailed, msg)
	}

	return parseProbeOutput(stdout.String())
}

// parseProbeOutput expects exactly two numeric values: audio bitrate in
// bits per second, then duration in seconds. Sources without an audio
// stream, or with a bitrate ffprobe reports as N/A, fail here.
func parseProbeOutput(out string) (domain.MediaStats, error) {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return domain.MediaStats{}, fmt.Errorf("%w: expected 2 values, got %d", domain.ErrProbeParse, len(fields))
	}

	bitrate, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return domain.MediaStats{}, fmt.Errorf("%w: audio bitrate %q", domain.ErrProbeParse, fields[0])
	}
	duration, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return domain.MediaStats{}, fmt.Errorf("%w: duration %q", domain.ErrProbeParse, fields[1])
	}

	return domain.MediaStats{DurationSeconds: duration, AudioBitrateBps: bitrate}, nil
}

var _ port.MediaProber = (*Prober)(nil)
