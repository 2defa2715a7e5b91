// Package logger owns the process-wide logging sink. The host initialises
// it once before the first query; domain types receive the logger instance
// through their constructors.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

func init() {
	// Silence the default charmbracelet/log logger; everything should go
	// through the instance Init builds.
	log.SetLevel(log.FatalLevel)
}

var (
	// Log is the global logger instance.
	Log *log.Logger

	logFile *os.File
)

// logPath places the log file under the XDG cache directory.
func logPath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		homeDir, _ := os.UserHomeDir()
		cacheDir = filepath.Join(homeDir, ".cache")
	}
	return filepath.Join(cacheDir, "loadstone", "loadstone.log")
}

// Init initialises the global logger. Logs always go to the log file;
// verbose additionally mirrors them to stderr at debug level. Failure to
// open the file falls back to stderr only.
func Init(verbose bool) {
	var output io.Writer = os.Stderr

	path := logPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			logFile = f
			if verbose {
				output = io.MultiWriter(f, os.Stderr)
			} else {
				output = f
			}
		}
	}

	Log = log.NewWithOptions(output, log.Options{ReportTimestamp: true})
	if verbose {
		Log.SetLevel(log.DebugLevel)
	} else {
		Log.SetLevel(log.InfoLevel)
	}
}

// Close closes the log file.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// GetLogPath returns the path of the log file.
func GetLogPath() string { return logPath() }

// Convenience functions over the global logger. Safe before Init.

func Debug(msg interface{}, keyvals ...interface{}) {
	if Log != nil {
		Log.Debug(msg, keyvals...)
	}
}

func Info(msg interface{}, keyvals ...interface{}) {
	if Log != nil {
		Log.Info(msg, keyvals...)
	}
}

func Warn(msg interface{}, keyvals ...interface{}) {
	if Log != nil {
		Log.Warn(msg, keyvals...)
	}
}

func Error(msg interface{}, keyvals ...interface{}) {
	if Log != nil {
		Log.Error(msg, keyvals...)
	}
}
