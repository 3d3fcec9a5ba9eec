package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"easel/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantAssets := filepath.Join(tempHome, "easel", "assets")
	if cfg.Paths.AssetsDir != wantAssets {
		t.Fatalf("unexpected assets dir: got %q want %q", cfg.Paths.AssetsDir, wantAssets)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, ".local", "share", "easel") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if cfg.Encode.FrameRate != 30 || cfg.Encode.CRF != 18 || cfg.Encode.Preset != "medium" {
		t.Fatalf("unexpected encode defaults: %+v", cfg.Encode)
	}
	if cfg.Preview.MaxEdge != 600 {
		t.Fatalf("unexpected preview max edge: %d", cfg.Preview.MaxEdge)
	}
	if cfg.API.Bind != "127.0.0.1:8750" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "easel.toml")

	type payload struct {
		Paths struct {
			AssetsDir string `toml:"assets_dir"`
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Encode struct {
			FrameRate int    `toml:"frame_rate"`
			CRF       int    `toml:"crf"`
			Preset    string `toml:"preset"`
		} `toml:"encode"`
		Formats struct {
			Definitions map[string]string `toml:"definitions"`
		} `toml:"formats"`
	}
	custom := payload{}
	custom.Paths.AssetsDir = filepath.Join(tempDir, "assets")
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Encode.FrameRate = 25
	custom.Encode.CRF = 23
	custom.Encode.Preset = "Slow"
	custom.Formats.Definitions = map[string]string{" 2X3 ": "1080x1620"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.AssetsDir != custom.Paths.AssetsDir {
		t.Fatalf("expected assets dir from file, got %q", cfg.Paths.AssetsDir)
	}
	if cfg.Encode.FrameRate != 25 || cfg.Encode.CRF != 23 {
		t.Fatalf("expected encode overrides, got %+v", cfg.Encode)
	}
	if cfg.Encode.Preset != "slow" {
		t.Fatalf("expected preset lowercased, got %q", cfg.Encode.Preset)
	}
	if got := cfg.Formats.Definitions["2x3"]; got != "1080x1620" {
		t.Fatalf("expected format key normalized, got %v", cfg.Formats.Definitions)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "easel.toml")
	body := "[paths]\nassets_dir = \"" + filepath.Join(tempDir, "assets") + "\"\nbogus_key = true\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parse")
	}
}

func TestValidateRejectsBadEncode(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"crf too high", func(c *config.Config) { c.Encode.CRF = 52 }, "encode.crf"},
		{"frame rate too high", func(c *config.Config) { c.Encode.FrameRate = 600 }, "encode.frame_rate"},
		{"unknown preset", func(c *config.Config) { c.Encode.Preset = "warp9" }, "encode.preset"},
		{"preview too small", func(c *config.Config) { c.Preview.MaxEdge = 10 }, "preview.max_edge"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %s, got %v", tc.want, err)
			}
		})
	}
}

func TestEnvOverridesToolBinaries(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("EASEL_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("EASEL_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env ffmpeg, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("expected env ffprobe, got %q", cfg.FFprobeBinary())
	}
}

func TestCreateSampleParses(t *testing.T) {
	tempDir := t.TempDir()
	samplePath := filepath.Join(tempDir, "config.toml")
	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(samplePath)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Encode.Preset != "medium" {
		t.Fatalf("unexpected preset in sample: %q", cfg.Encode.Preset)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/var/lib/easel"
	cfg.Paths.OutputDir = "/srv/renders"
	if got := cfg.PositionsDatabasePath(); got != "/var/lib/easel/positions.db" {
		t.Fatalf("unexpected positions db path: %q", got)
	}
	if got := cfg.OutputDirFor("9x16", "spring"); got != "/srv/renders/9x16/spring" {
		t.Fatalf("unexpected output dir: %q", got)
	}
	if got := cfg.LogFilePath(); !strings.HasSuffix(got, "easel.log") {
		t.Fatalf("unexpected log file path: %q", got)
	}
}
