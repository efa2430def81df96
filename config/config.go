package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"squish/internal/domain"
)

//go:embed sample_config.toml
var sampleConfig string

// Encode holds the settings snapshot applied to every job at claim
// time. Values are validated against the known encoder, resolution and
// preset names.
type Encode struct {
	TargetSizeMB uint64 `toml:"target_size_mb"`
	FrameRate    uint   `toml:"frame_rate"`
	Encoder      string `toml:"encoder"`
	Resolution   string `toml:"resolution"`
	Preset       string `toml:"preset"`
}

// Config encapsulates all configuration values for the daemon.
type Config struct {
	DataDir        string `toml:"data_dir"`
	Bind           string `toml:"bind"`
	APITokenHash   string `toml:"api_token_hash"`
	FFmpegPath     string `toml:"ffmpeg_path"`
	FFprobePath    string `toml:"ffprobe_path"`
	LogBufferLines int    `toml:"log_buffer_lines"`
	Encode         Encode `toml:"encode"`
}

const (
	defaultDataDir        = "~/.local/share/squish"
	defaultBind           = "127.0.0.1:7460"
	defaultLogBufferLines = 2000
	defaultTargetSizeMB   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DataDir:        defaultDataDir,
		Bind:           defaultBind,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		LogBufferLines: defaultLogBufferLines,
		Encode: Encode{
			TargetSizeMB: defaultTargetSizeMB,
			Encoder:      string(domain.EncoderCPU),
		},
	}
}

// DefaultConfigPath returns the default configuration file location.
// The SQUISH_CONFIG environment variable overrides it.
func DefaultConfigPath() (string, error) {
	if env := os.Getenv("SQUISH_CONFIG"); env != "" {
		return expandPath(env)
	}
	return expandPath("~/.config/squish/config.toml")
}

// Load parses and validates a configuration file. A missing file is not
// an error: defaults apply and exists reports false so callers can
// suggest running config init. Path fields come back expanded.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	defaults := Default()
	cfg = &defaults

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	dataDir, err := expandPath(c.DataDir)
	if err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	c.DataDir = dataDir

	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.LogBufferLines <= 0 {
		c.LogBufferLines = defaultLogBufferLines
	}
	return nil
}

// Validate checks every field against the values the encoder pipeline
// accepts.
func (c *Config) Validate() error {
	if c.Bind == "" {
		return errors.New("bind must not be empty")
	}
	if c.Encode.TargetSizeMB == 0 {
		return errors.New("encode.target_size_mb must be positive")
	}
	if _, err := domain.ParseEncoderKind(c.Encode.Encoder); err != nil {
		return fmt.Errorf("encode.encoder: %w", err)
	}
	if _, err := domain.ParseResolution(c.Encode.Resolution); err != nil {
		return fmt.Errorf("encode.resolution: %w", err)
	}
	if _, err := domain.ParsePreset(c.Encode.Preset); err != nil {
		return fmt.Errorf("encode.preset: %w", err)
	}
	return nil
}

// Settings converts the validated encode section into the domain
// snapshot handed to the runner.
func (c *Config) Settings() domain.EncodeSettings {
	encoder, _ := domain.ParseEncoderKind(c.Encode.Encoder)
	resolution, _ := domain.ParseResolution(c.Encode.Resolution)
	preset, _ := domain.ParsePreset(c.Encode.Preset)
	return domain.EncodeSettings{
		TargetSizeMB: c.Encode.TargetSizeMB,
		FrameRate:    c.Encode.FrameRate,
		Encoder:      encoder,
		Resolution:   resolution,
		Preset:       preset,
	}
}

// WriteSample writes the annotated sample configuration to path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
