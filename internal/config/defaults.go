package config

const (
	defaultAssetsDir      = "~/easel/assets"
	defaultOutputDir      = "~/easel/outputs"
	defaultDataDir        = "~/.local/share/easel"
	defaultLogDir         = "~/.local/share/easel/logs"
	defaultFontsDir       = "~/easel/fonts"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultFrameRate      = 30
	defaultCRF            = 18
	defaultPreset         = "medium"
	defaultPreviewMaxEdge = 600
	defaultAPIBind        = "127.0.0.1:8750"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir: defaultAssetsDir,
			OutputDir: defaultOutputDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			FontsDir:  defaultFontsDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Encode: Encode{
			FrameRate: defaultFrameRate,
			CRF:       defaultCRF,
			Preset:    defaultPreset,
		},
		Formats: Formats{
			Definitions: map[string]string{},
		},
		Preview: Preview{
			MaxEdge: defaultPreviewMaxEdge,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
