package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strings"

	"squish/internal/domain"
)

// OutputPath derives the encoded file path next to the source: the
// extension is replaced with ".compressed.mp4". A source that is
// already a .compressed.mp4 would be overwritten by its own encode, so
// callers hand ffmpeg the -y flag and accept that.
func OutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".compressed.mp4"
}

// BuildArgs assembles the ffmpeg argument vector for one encode. Flag
// order is stable so rendered command lines are reproducible: input,
// optional video filter chain, video codec and bitrate, audio codec and
// bitrate, optional preset, overwrite flag, output.
func BuildArgs(inputPath, outputPath string, settings domain.EncodeSettings, plan domain.BitratePlan) []string {
	args := []string{"-i", inputPath}

	var filters []string
	if settings.FrameRate > 0 {
		filters = append(filters, fmt.Sprintf("fps=%d", settings.FrameRate))
	}
	if height := settings.Resolution.Height(); height > 0 {
		filters = append(filters, fmt.Sprintf("scale=-1:%d", height))
	}
	if len(filters) > 0 {
		args = append(args, "-filter:v", strings.Join(filters, ","))
	}

	args = append(args,
		"-c:v", settings.Encoder.CodecName(),
		"-b:v", fmt.Sprintf("%d", plan.VideoBps),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%d", plan.AudioBps),
	)
	if settings.Preset != domain.PresetNone {
		args = append(args, "-preset", string(settings.Preset))
	}
	return append(args, "-y", outputPath)
}

// RenderCommand formats a binary and its arguments as a single shell
// style line for diagnostics. Arguments containing spaces or double
// quotes are wrapped in double quotes with embedded quotes escaped.
func RenderCommand(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(binary))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if !strings.ContainsAny(arg, " \"") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}
