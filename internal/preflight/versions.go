package preflight

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// ToolVersion reports the detected release of an external binary.
type ToolVersion struct {
	Name    string
	Command string
	Version string
	Found   bool
}

// ProbeVersion runs the binary's -version banner with a short timeout and
// extracts the release token. ffmpeg and ffprobe both print
// "NAME version X.Y ..." on the first line.
func ProbeVersion(name, binary string) ToolVersion {
	probe := ToolVersion{Name: name, Command: strings.TrimSpace(binary)}
	if probe.Command == "" {
		return probe
	}
	if _, err := exec.LookPath(probe.Command); err != nil {
		return probe
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, probe.Command, "-version").Output()
	if err != nil {
		return probe
	}
	probe.Found = true
	probe.Version = parseVersionBanner(string(output))
	return probe
}

func parseVersionBanner(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(line)
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return "unknown"
}

// Detail renders a display-friendly summary for the doctor table.
func (v ToolVersion) Detail() string {
	if !v.Found {
		return "not found"
	}
	return "version " + v.Version
}
