package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"squish/internal/domain"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"replaces extension", "/media/clip.mkv", "/media/clip.compressed.mp4"},
		{"mp4 source", "/media/clip.mp4", "/media/clip.compressed.mp4"},
		{"no extension", "/media/clip", "/media/clip.compressed.mp4"},
		{"dotted directory kept", "/media/v1.2/clip.avi", "/media/v1.2/clip.compressed.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(tt.input))
		})
	}
}

func TestBuildArgs_AllOptions(t *testing.T) {
	settings := domain.EncodeSettings{
		TargetSizeMB: 10,
		FrameRate:    24,
		Encoder:      domain.EncoderGPU,
		Resolution:   domain.Resolution720p,
		Preset:       domain.Preset("veryslow"),
	}
	plan := domain.BitratePlan{VideoBps: 1_117_587, AudioBps: 124_176}

	args := BuildArgs("/in/clip.mkv", "/in/clip.compressed.mp4", settings, plan)

	assert.Equal(t, []string{
		"-i", "/in/clip.mkv",
		"-filter:v", "fps=24,scale=-1:720",
		"-c:v", "h264_nvenc",
		"-b:v", "1117587",
		"-c:a", "aac",
		"-b:a", "124176",
		"-preset", "veryslow",
		"-y", "/in/clip.compressed.mp4",
	}, args)
}

func TestBuildArgs_NoFilterWhenUnset(t *testing.T) {
	settings := domain.EncodeSettings{TargetSizeMB: 10, Encoder: domain.EncoderCPU}
	plan := domain.BitratePlan{VideoBps: 900_000, AudioBps: 128_000}

	args := BuildArgs("/in/clip.mkv", "/out.mp4", settings, plan)

	assert.Equal(t, []string{
		"-i", "/in/clip.mkv",
		"-c:v", "libx264",
		"-b:v", "900000",
		"-c:a", "aac",
		"-b:a", "128000",
		"-y", "/out.mp4",
	}, args)
	assert.NotContains(t, args, "-filter:v")
	assert.NotContains(t, args, "-preset")
}

func TestBuildArgs_FrameRateOnly(t *testing.T) {
	settings := domain.EncodeSettings{FrameRate: 30, Encoder: domain.EncoderCPU}
	plan := domain.BitratePlan{VideoBps: 1, AudioBps: 1}

	args := BuildArgs("/in.mkv", "/out.mp4", settings, plan)

	assert.Contains(t, args, "fps=30")
	assert.NotContains(t, args, "scale=-1:0")
}

func TestBuildArgs_ScaleOnly(t *testing.T) {
	settings := domain.EncodeSettings{Resolution: domain.Resolution480p, Encoder: domain.EncoderCPU}
	plan := domain.BitratePlan{VideoBps: 1, AudioBps: 1}

	args := BuildArgs("/in.mkv", "/out.mp4", settings, plan)

	assert.Contains(t, args, "scale=-1:480")
}

func TestRenderCommand_QuotesWhereNeeded(t *testing.T) {
	line := RenderCommand("ffmpeg", []string{"-i", "/media/my clip.mkv", "-y", "/media/my clip.compressed.mp4"})

	assert.Equal(t, `ffmpeg -i "/media/my clip.mkv" -y "/media/my clip.compressed.mp4"`, line)
}

func TestRenderCommand_EscapesEmbeddedQuotes(t *testing.T) {
	line := RenderCommand("ffmpeg", []string{"-i", `/media/the "final" cut.mkv`})

	assert.Equal(t, `ffmpeg -i "/media/the \"final\" cut.mkv"`, line)
}

func TestRenderCommand_PlainArgsUnquoted(t *testing.T) {
	line := RenderCommand("ffmpeg", []string{"-i", "/in.mkv", "-b:v", "1117587"})

	assert.Equal(t, "ffmpeg -i /in.mkv -b:v 1117587", line)
}
