package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"squish/internal/domain"
	"squish/internal/port"
)

// Encoder runs ffmpeg and streams its stderr diagnostics line by line.
type Encoder struct {
	binary string
}

func NewEncoder(binary string) *Encoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Encoder{binary: binary}
}

func (e *Encoder) OutputPath(inputPath string) string {
	return OutputPath(inputPath)
}

func (e *Encoder) CommandLine(inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan) string {
	return RenderCommand(e.binary, BuildArgs(inputPath, outputPath, settings, plan))
}

// Encode launches ffmpeg and relays every stderr line through onLine
// until the process exits. A spawn failure is reported distinctly from
// an encode failure so callers can tell a missing binary apart from a
// broken input.
func (e *Encoder) Encode(ctx context.Context, inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan, onLine func(string)) error {
	cmd := commandContext(ctx, e.binary, BuildArgs(inputPath, outputPath, settings, plan)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailed, err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if onLine != nil {
			onLine(line)
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read encoder output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return nil
}

// scanProgressLines splits on \n and also on the bare \r that ffmpeg
// uses to redraw its progress line in place.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ port.Encoder = (*Encoder)(nil)
