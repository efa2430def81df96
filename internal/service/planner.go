package service

import (
	"squish/internal/domain"
)

const (
	minAudioBps = 64_000
	maxAudioBps = 256_000

	// Legacy normalization carried over from the original size math.
	// Kept verbatim so computed bitrates stay label-compatible with
	// files produced by earlier releases.
	gibToGB = 1.073741824

	bytesPerMB = 1_000_000
)

// Plan computes the video/audio bitrate split that targets an output of
// targetSizeMB. Pure: identical inputs always yield identical output.
//
// Audio keeps the source bitrate unless it would eat more than 10% of
// the total budget; in that case it is cut to 10% and clamped to
// [64k, 256k]. Video takes the remainder, floored at zero -- degenerate
// targets produce a zero video bitrate rather than an error.
func Plan(targetSizeMB uint64, durationSeconds float64, sourceAudioBps uint64) (domain.BitratePlan, error) {
	if durationSeconds <= 0 {
		return domain.BitratePlan{}, domain.ErrInvalidDuration
	}

	totalBps := uint64(float64(targetSizeMB) * bytesPerMB * 8 / (gibToGB * durationSeconds))

	audioBps := sourceAudioBps
	if 10*sourceAudioBps > totalBps {
		audioBps = totalBps / 10
		if audioBps < minAudioBps {
			audioBps = minAudioBps
		} else if audioBps > maxAudioBps {
			audioBps = maxAudioBps
		}
	}

	var videoBps uint64
	if totalBps > audioBps {
		videoBps = totalBps - audioBps
	}

	return domain.BitratePlan{VideoBps: videoBps, AudioBps: audioBps}, nil
}
