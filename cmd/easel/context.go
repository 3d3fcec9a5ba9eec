package main

import (
	"log/slog"
	"strings"
	"sync"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/compositor"
	"easel/internal/config"
	"easel/internal/logging"
	"easel/internal/media/ffmpeg"
	"easel/internal/media/ffprobe"
	"easel/internal/positions"
	"easel/internal/preview"
	"easel/internal/sampler"
)

// commandContext lazily resolves the shared services subcommands depend on.
// Config and logger are built at most once per invocation; everything else is
// cheap enough to construct on demand.
type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) registry() (*aspect.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return aspect.NewRegistry(cfg.Formats.Definitions)
}

func (c *commandContext) library() (*assets.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return assets.Scan(cfg.Paths.AssetsDir)
}

func (c *commandContext) openStore() (*positions.SQLite, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return positions.Open(cfg)
}

func (c *commandContext) ffmpegRunner() (*ffmpeg.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ffmpeg.NewRunner(cfg.FFmpegBinary())
}

func (c *commandContext) prober() (ffprobe.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return ffprobe.Client{}, err
	}
	return ffprobe.NewClient(cfg.FFprobeBinary()), nil
}

func (c *commandContext) frameSampler() (*sampler.Sampler, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	runner, err := c.ffmpegRunner()
	if err != nil {
		return nil, err
	}
	prober, err := c.prober()
	if err != nil {
		return nil, err
	}
	return sampler.New(runner, prober, logger), nil
}

func (c *commandContext) previewGenerator(store positions.Store) (*preview.Generator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	registry, err := c.registry()
	if err != nil {
		return nil, err
	}
	frames, err := c.frameSampler()
	if err != nil {
		return nil, err
	}
	return preview.NewGenerator(registry, store, frames, cfg.Preview.MaxEdge, logger), nil
}

func (c *commandContext) videoCompositor() (*compositor.Video, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	runner, err := c.ffmpegRunner()
	if err != nil {
		return nil, err
	}
	prober, err := c.prober()
	if err != nil {
		return nil, err
	}
	encode := compositor.EncodeSettings{
		FrameRate: cfg.Encode.FrameRate,
		CRF:       cfg.Encode.CRF,
		Preset:    cfg.Encode.Preset,
	}
	return compositor.NewVideo(runner, prober, encode, logger), nil
}
