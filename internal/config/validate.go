package config

import (
	"errors"
	"fmt"
	"strings"
)

var encodePresets = map[string]struct{}{
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

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateFormats(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.assets_dir": c.Paths.AssetsDir,
		"paths.output_dir": c.Paths.OutputDir,
		"paths.data_dir":   c.Paths.DataDir,
		"paths.log_dir":    c.Paths.LogDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		return errors.New("tools.ffmpeg_binary must be set")
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		return errors.New("tools.ffprobe_binary must be set")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.FrameRate < 1 || c.Encode.FrameRate > 120 {
		return errors.New("encode.frame_rate must be between 1 and 120")
	}
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return errors.New("encode.crf must be between 0 and 51")
	}
	if _, ok := encodePresets[c.Encode.Preset]; !ok {
		return fmt.Errorf("encode.preset %q is not a recognized x264 preset", c.Encode.Preset)
	}
	return nil
}

func (c *Config) validateFormats() error {
	for tag, resolution := range c.Formats.Definitions {
		if strings.TrimSpace(resolution) == "" {
			return fmt.Errorf("formats.definitions[%q] must be WIDTHxHEIGHT", tag)
		}
	}
	return nil
}

func (c *Config) validatePreview() error {
	if c.Preview.MaxEdge < 64 {
		return errors.New("preview.max_edge must be at least 64")
	}
	return nil
}
