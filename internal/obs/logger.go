// Package obs configures process logging.
package obs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogRotationConfig holds configuration for log rotation.
type LogRotationConfig struct {
	Filename   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// DefaultLogRotationConfig returns default log rotation settings.
func DefaultLogRotationConfig(logFile string) *LogRotationConfig {
	return &LogRotationConfig{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	}
}

// NewRotatingWriter creates a rotating log writer with the given
// configuration.
func NewRotatingWriter(cfg *LogRotationConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// DefaultLogFile returns the engine log path under the user's home
// directory.
func DefaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "inkport.log"
	}
	return filepath.Join(home, ".inkport", "log", "inkport.log")
}

// Setup points logrus at stderr plus a rotating log file. An empty logFile
// selects the default location.
func Setup(logFile string) {
	if logFile == "" {
		logFile = DefaultLogFile()
	}
	writer := NewRotatingWriter(DefaultLogRotationConfig(logFile))
	logrus.SetOutput(io.MultiWriter(os.Stderr, writer))
}
