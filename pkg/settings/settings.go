// Package settings provides build metadata, runtime configuration, and
// context helpers used across the trainctl CLI and library packages.
package settings

import "io"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "trainctl"

// EnvPrefix is the prefix for environment variables that override config keys
// (TRAINCTL_API_BASE_URL, TRAINCTL_API_TOKEN, ...).
const EnvPrefix = "TRAINCTL"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	ConfigFile  string
	LogFile     string // empty = stderr; browse mode needs a file to keep the screen clean
	IsQuiet     bool
	NoColor     bool
	AssumeYes   bool

	logFile io.Closer
}

// AttachLogFile records the file opened for LogFile so Close releases it.
func (r *Run) AttachLogFile(c io.Closer) { r.logFile = c }

// Close releases the log file, if one was attached. It is safe to call twice.
func (r *Run) Close() error {
	if r.logFile == nil {
		return nil
	}
	err := r.logFile.Close()
	r.logFile = nil
	return err
}

// NewCliParams initializes and returns a pointer to a Run struct with default CLI parameters.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		AssumeYes:   false,
	}
}
