package domain

import "fmt"

// EncoderKind selects the H.264 encoder implementation ffmpeg should use.
type EncoderKind string

const (
	EncoderCPU EncoderKind = "cpu"
	EncoderGPU EncoderKind = "gpu"
)

// CodecName maps the encoder choice to the ffmpeg encoder identifier.
func (e EncoderKind) CodecName() string {
	if e == EncoderGPU {
		return "h264_nvenc"
	}
	return "libx264"
}

func ParseEncoderKind(value string) (EncoderKind, error) {
	switch EncoderKind(value) {
	case EncoderCPU, EncoderGPU:
		return EncoderKind(value), nil
	case "":
		return EncoderCPU, nil
	}
	return "", fmt.Errorf("unknown encoder %q (want cpu or gpu)", value)
}

// Resolution is an optional output scaling target. The zero value means
// the source resolution is kept.
type Resolution string

const (
	ResolutionOriginal Resolution = ""
	Resolution1080p    Resolution = "1080p"
	Resolution720p     Resolution = "720p"
	Resolution480p     Resolution = "480p"
)

// Height returns the target frame height, or 0 when no scaling applies.
func (r Resolution) Height() int {
	switch r {
	case Resolution1080p:
		return 1080
	case Resolution720p:
		return 720
	case Resolution480p:
		return 480
	}
	return 0
}

func ParseResolution(value string) (Resolution, error) {
	switch Resolution(value) {
	case ResolutionOriginal, Resolution1080p, Resolution720p, Resolution480p:
		return Resolution(value), nil
	}
	return "", fmt.Errorf("unknown resolution %q (want 1080p, 720p or 480p)", value)
}

// Preset is an optional x264 speed preset. The zero value means no
// -preset flag is emitted.
// https://trac.ffmpeg.org/wiki/Encode/H.264#Preset
type Preset string

const PresetNone Preset = ""

var knownPresets = map[Preset]struct{}{
	"ultrafast": {},
	"superfast": {},
	"veryfast":  {},
	"faster":    {},
	"fast":      {},
	"medium":    {},
	"slow":      {},
	"slower":    {},
	"veryslow":  {},
}

func ParsePreset(value string) (Preset, error) {
	if value == "" {
		return PresetNone, nil
	}
	if _, ok := knownPresets[Preset(value)]; !ok {
		return "", fmt.Errorf("unknown preset %q", value)
	}
	return Preset(value), nil
}

// EncodeSettings is the configuration snapshot read once per job. A job
// claimed mid-run never sees later configuration edits.
type EncodeSettings struct {
	TargetSizeMB uint64
	FrameRate    uint
	Encoder      EncoderKind
	Resolution   Resolution
	Preset       Preset
}

// BitratePlan is the video/audio bitrate split computed for one job.
// Derived per job, never persisted.
type BitratePlan struct {
	VideoBps uint64
	AudioBps uint64
}

// MediaStats holds the probed source properties the planner needs.
type MediaStats struct {
	DurationSeconds float64
	AudioBitrateBps uint64
}
