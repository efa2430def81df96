package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squish/internal/domain"
)

type fakeProber struct {
	stats domain.MediaStats
	err   error
}

func (p *fakeProber) Probe(ctx context.Context, path string) (domain.MediaStats, error) {
	return p.stats, p.err
}

type fakeEncoder struct {
	lines        []string
	encodeErr    error
	createOutput bool
	outputBytes  int
	gotInput     string
	gotPlan      domain.BitratePlan
}

func (e *fakeEncoder) OutputPath(inputPath string) string {
	return inputPath + ".out.mp4"
}

func (e *fakeEncoder) CommandLine(inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan) string {
	return fmt.Sprintf("ffmpeg -i %s %s", inputPath, outputPath)
}

func (e *fakeEncoder) Encode(ctx context.Context, inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan, onLine func(string)) error {
	e.gotInput = inputPath
	e.gotPlan = plan
	for _, line := range e.lines {
		onLine(line)
	}
	if e.createOutput {
		if err := os.WriteFile(outputPath, make([]byte, e.outputBytes), 0o644); err != nil {
			return err
		}
	}
	return e.encodeErr
}

func collect(signals <-chan domain.Signal) []domain.Signal {
	var out []domain.Signal
	for sig := range signals {
		out = append(out, sig)
	}
	return out
}

func testJob(t *testing.T) *domain.Job {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mkv")
	require.NoError(t, os.WriteFile(path, []byte("source"), 0o644))
	return domain.NewJob(path, 6)
}

func TestRunner_SuccessStreamOrder(t *testing.T) {
	prober := &fakeProber{stats: domain.MediaStats{DurationSeconds: 60, AudioBitrateBps: 128_000}}
	encoder := &fakeEncoder{
		lines:        []string{"frame=1", "frame=2"},
		createOutput: true,
		outputBytes:  2048,
	}
	runner := NewRunner(prober, encoder)
	job := testJob(t)

	sigs := collect(runner.Run(context.Background(), job, domain.EncodeSettings{TargetSizeMB: 10}))

	require.Len(t, sigs, 5)
	assert.Equal(t, domain.SignalLine, sigs[0].Kind)
	assert.Contains(t, sigs[0].Line, "running: ffmpeg")
	assert.Equal(t, "frame=1", sigs[1].Line)
	assert.Equal(t, "frame=2", sigs[2].Line)
	assert.Equal(t, domain.SignalOutputSize, sigs[3].Kind)
	assert.Equal(t, int64(2048), sigs[3].OutputSize)
	assert.Equal(t, domain.SignalDone, sigs[4].Kind)
	assert.NoError(t, sigs[4].Err)

	assert.Equal(t, job.SourcePath, encoder.gotInput)
	assert.Positive(t, encoder.gotPlan.VideoBps)
}

func TestRunner_ProbeFailureSkipsEncoder(t *testing.T) {
	probeErr := fmt.Errorf("%w: no audio stream", domain.ErrProbeParse)
	prober := &fakeProber{err: probeErr}
	encoder := &fakeEncoder{}
	runner := NewRunner(prober, encoder)

	sigs := collect(runner.Run(context.Background(), testJob(t), domain.EncodeSettings{TargetSizeMB: 10}))

	require.Len(t, sigs, 2)
	assert.Equal(t, domain.SignalLine, sigs[0].Kind)
	assert.Contains(t, sigs[0].Line, "probe failed")
	assert.Equal(t, domain.SignalDone, sigs[1].Kind)
	assert.ErrorIs(t, sigs[1].Err, domain.ErrProbeParse)

	assert.Empty(t, encoder.gotInput, "encoder must not be spawned on probe failure")
}

func TestRunner_InvalidDurationSkipsEncoder(t *testing.T) {
	prober := &fakeProber{stats: domain.MediaStats{DurationSeconds: 0, AudioBitrateBps: 128_000}}
	encoder := &fakeEncoder{}
	runner := NewRunner(prober, encoder)

	sigs := collect(runner.Run(context.Background(), testJob(t), domain.EncodeSettings{TargetSizeMB: 10}))

	require.Len(t, sigs, 2)
	assert.ErrorIs(t, sigs[1].Err, domain.ErrInvalidDuration)
	assert.Empty(t, encoder.gotInput)
}

func TestRunner_MissingOutputYieldsNoSizeSignal(t *testing.T) {
	prober := &fakeProber{stats: domain.MediaStats{DurationSeconds: 60, AudioBitrateBps: 128_000}}
	encoder := &fakeEncoder{lines: []string{"frame=1"}, createOutput: false}
	runner := NewRunner(prober, encoder)

	sigs := collect(runner.Run(context.Background(), testJob(t), domain.EncodeSettings{TargetSizeMB: 10}))

	for _, sig := range sigs {
		assert.NotEqual(t, domain.SignalOutputSize, sig.Kind)
	}
	last := sigs[len(sigs)-1]
	assert.Equal(t, domain.SignalDone, last.Kind)
	assert.NoError(t, last.Err)
}

func TestRunner_EncoderFailurePropagates(t *testing.T) {
	prober := &fakeProber{stats: domain.MediaStats{DurationSeconds: 60, AudioBitrateBps: 128_000}}
	wantErr := errors.New("exit status 1")
	encoder := &fakeEncoder{lines: []string{"frame=1"}, encodeErr: wantErr}
	runner := NewRunner(prober, encoder)

	sigs := collect(runner.Run(context.Background(), testJob(t), domain.EncodeSettings{TargetSizeMB: 10}))

	last := sigs[len(sigs)-1]
	assert.Equal(t, domain.SignalDone, last.Kind)
	assert.ErrorIs(t, last.Err, wantErr)
}

func TestRunner_DoneIsAlwaysLast(t *testing.T) {
	prober := &fakeProber{stats: domain.MediaStats{DurationSeconds: 60, AudioBitrateBps: 128_000}}
	encoder := &fakeEncoder{lines: []string{"a", "b", "c"}, createOutput: true, outputBytes: 1}
	runner := NewRunner(prober, encoder)

	sigs := collect(runner.Run(context.Background(), testJob(t), domain.EncodeSettings{TargetSizeMB: 10}))

	require.NotEmpty(t, sigs)
	for i, sig := range sigs {
		if sig.Kind == domain.SignalDone {
			assert.Equal(t, len(sigs)-1, i, "Done must be the final signal")
		}
	}
}
