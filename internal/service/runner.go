package service

import (
	"context"
	"os"

	"squish/internal/domain"
	"squish/internal/port"
)

// Runner executes one claimed job: probe the source, plan bitrates,
// spawn the encoder and relay its diagnostic stream. It reports
// everything through the returned signal channel and never touches
// queue state itself.
type Runner struct {
	prober  port.MediaProber
	encoder port.Encoder
}

func NewRunner(prober port.MediaProber, encoder port.Encoder) *Runner {
	return &Runner{prober: prober, encoder: encoder}
}

// Run starts the job and returns its signal stream. Line signals arrive
// in emission order while the process runs; a Done signal is always
// last, after which the channel is closed. Probe and planning failures
// surface as a diagnostic line plus a failed Done without ever spawning
// the encoder.
func (r *Runner) Run(ctx context.Context, job *domain.Job, settings domain.EncodeSettings) <-chan domain.Signal {
	signals := make(chan domain.Signal, 64)

	go func() {
		defer close(signals)

		stats, err := r.prober.Probe(ctx, job.SourcePath)
		if err != nil {
			signals <- domain.LineSignal("probe failed for " + job.Filename() + ": " + err.Error())
			signals <- domain.DoneSignal(err)
			return
		}

		plan, err := Plan(settings.TargetSizeMB, stats.DurationSeconds, stats.AudioBitrateBps)
		if err != nil {
			signals <- domain.LineSignal("bitrate planning failed for " + job.Filename() + ": " + err.Error())
			signals <- domain.DoneSignal(err)
			return
		}

		outputPath := r.encoder.OutputPath(job.SourcePath)
		signals <- domain.LineSignal("running: " + r.encoder.CommandLine(job.SourcePath, outputPath, settings, plan))

		encodeErr := r.encoder.Encode(ctx, job.SourcePath, outputPath, settings, plan, func(line string) {
			signals <- domain.LineSignal(line)
		})
		if encodeErr != nil {
			signals <- domain.LineSignal("encode failed for " + job.Filename() + ": " + encodeErr.Error())
		}

		// Best effort: a missing output file is tolerated and simply
		// yields no size signal.
		if info, statErr := os.Stat(outputPath); statErr == nil {
			signals <- domain.OutputSizeSignal(info.Size())
		}

		signals <- domain.DoneSignal(encodeErr)
	}()

	return signals
}
