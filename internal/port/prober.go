package port

import (
	"context"

	"squish/internal/domain"
)

// MediaProber extracts source duration and audio bitrate ahead of
// bitrate planning.
type MediaProber interface {
	Probe(ctx context.Context, path string) (domain.MediaStats, error)
}
