package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"easel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every directory check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryRead("Assets directory", cfg.Paths.AssetsDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.FontsDir != "" {
		results = append(results, checkFontsDir(cfg.Paths.FontsDir))
	}
	return results
}

// checkFontsDir treats a missing fonts directory as healthy since text
// rendering falls back to the embedded face.
func checkFontsDir(path string) Result {
	const name = "Fonts directory"
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (absent, embedded fallback in use)", path)}
	}
	return CheckDirectoryRead(name, path)
}
