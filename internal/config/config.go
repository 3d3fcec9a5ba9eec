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
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	AssetsDir string `toml:"assets_dir"`
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	FontsDir  string `toml:"fonts_dir"`
}

// Tools contains the external binaries the engine shells out to. Plain names
// resolve through PATH; absolute paths are used as-is.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg_binary"`
	FFprobe string `toml:"ffprobe_binary"`
}

// Encode contains the fixed video encode settings. Every video render in a
// run uses these values; they are never supplied per request.
type Encode struct {
	FrameRate int    `toml:"frame_rate"`
	CRF       int    `toml:"crf"`
	Preset    string `toml:"preset"`
}

// Formats carries aspect format overrides as tag to "WIDTHxHEIGHT" strings.
// Entries merge over the compiled-in defaults; parsing happens when the
// format registry is built.
type Formats struct {
	Definitions map[string]string `toml:"definitions"`
}

// Preview contains settings for interactive preview output.
type Preview struct {
	MaxEdge int `toml:"max_edge"`
}

// API contains the local preview service bind address.
type API struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Easel.
//
// Configuration sections by subsystem:
//   - Paths: asset library, render output, state, log, and font directories
//   - Tools: ffmpeg/ffprobe binary resolution
//   - Encode: frame rate, CRF, and preset applied to every video render
//   - Formats: aspect format overrides merged over the compiled-in set
//   - Preview: display downscale bound for preview frames
//   - API: preview service bind address
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Encode  Encode  `toml:"encode"`
	Formats Formats `toml:"formats"`
	Preview Preview `toml:"preview"`
	API     API     `toml:"api"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/easel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
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
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("easel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes to. The assets
// directory is created best-effort so a fresh install can run scan without
// erroring before any assets exist.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.AssetsDir) != "" {
		_ = os.MkdirAll(c.Paths.AssetsDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for video rendering and
// frame extraction.
func (c *Config) FFmpegBinary() string {
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	return c.Tools.FFprobe
}

// PositionsDatabasePath returns the sqlite database holding saved overlay
// positions.
func (c *Config) PositionsDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "positions.db")
}

// LogFilePath returns the JSON log file the CLI appends to.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "easel.log")
}

// OutputDirFor returns the directory batch renders for one format land in.
func (c *Config) OutputDirFor(formatTag, batchName string) string {
	return filepath.Join(c.Paths.OutputDir, formatTag, batchName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
