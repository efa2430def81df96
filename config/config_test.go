package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squish/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)

	assert.False(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, "127.0.0.1:7460", cfg.Bind)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, 2000, cfg.LogBufferLines)
	assert.Equal(t, uint64(10), cfg.Encode.TargetSizeMB)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
bind = "0.0.0.0:9000"
ffprobe_path = "/usr/local/bin/ffprobe"

[encode]
target_size_mb = 25
frame_rate = 24
encoder = "gpu"
resolution = "720p"
preset = "veryslow"
`)

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)

	assert.True(t, exists)
	assert.Equal(t, "0.0.0.0:9000", cfg.Bind)
	assert.Equal(t, "/usr/local/bin/ffprobe", cfg.FFprobePath)
	assert.Equal(t, uint64(25), cfg.Encode.TargetSizeMB)
	assert.Equal(t, "gpu", cfg.Encode.Encoder)
}

func TestLoad_RejectsUnknownEncoder(t *testing.T) {
	path := writeConfig(t, `
[encode]
target_size_mb = 10
encoder = "quantum"
`)

	_, _, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode.encoder")
}

func TestLoad_RejectsUnknownResolution(t *testing.T) {
	path := writeConfig(t, `
[encode]
target_size_mb = 10
resolution = "4320p"
`)

	_, _, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode.resolution")
}

func TestLoad_RejectsZeroTargetSize(t *testing.T) {
	path := writeConfig(t, `
[encode]
target_size_mb = 0
`)

	_, _, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_size_mb")
}

func TestLoad_ExpandsTilde(t *testing.T) {
	path := writeConfig(t, `data_dir = "~/squish-data"`)

	cfg, _, _, err := Load(path)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "squish-data"), cfg.DataDir)
}

func TestSettings(t *testing.T) {
	path := writeConfig(t, `
[encode]
target_size_mb = 8
frame_rate = 30
encoder = "cpu"
resolution = "480p"
preset = "fast"
`)

	cfg, _, _, err := Load(path)
	require.NoError(t, err)

	settings := cfg.Settings()
	assert.Equal(t, domain.EncodeSettings{
		TargetSizeMB: 8,
		FrameRate:    30,
		Encoder:      domain.EncoderCPU,
		Resolution:   domain.Resolution480p,
		Preset:       domain.Preset("fast"),
	}, settings)
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, WriteSample(path))

	// The sample must itself load cleanly.
	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, uint64(10), cfg.Encode.TargetSizeMB)

	// Existing files are never overwritten.
	assert.Error(t, WriteSample(path))
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("SQUISH_CONFIG", filepath.Join(t.TempDir(), "custom.toml"))

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Contains(t, path, "custom.toml")
}
