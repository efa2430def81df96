package port

import (
	"context"

	"squish/internal/domain"
)

// Encoder runs the external encode process for one job. Diagnostic
// lines are forwarded through onLine as they arrive, never buffered
// until exit. Encode returns domain.ErrSpawnFailed (wrapped) when the
// process cannot be started, or the wait error on non-zero exit.
type Encoder interface {
	// OutputPath derives the destination file for a source path.
	OutputPath(inputPath string) string
	// CommandLine renders the invocation for diagnostics. The rendering
	// is shell-quoted for display only; execution always passes a
	// discrete argument vector.
	CommandLine(inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan) string
	Encode(ctx context.Context, inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan, onLine func(string)) error
}
