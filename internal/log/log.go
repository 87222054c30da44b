package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

const LogFileName = "ghsync.log"

var Log = logrus.New()

var logFilePath string

// InitLogger points the logger at the log file. The terminal is reserved for the
// progress display, so nothing is ever logged to stdout or stderr.
func InitLogger(verbose bool) {
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Log.SetOutput(openLogFile())
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		Log.Debugln("Verbose (debug) logging enabled")
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

func openLogFile() io.Writer {
	candidates := make([]string, 0, 2)
	if statePath, err := xdg.StateFile(filepath.Join("ghsync", LogFileName)); err == nil {
		candidates = append(candidates, statePath)
	}
	if cwdPath, err := filepath.Abs(LogFileName); err == nil {
		candidates = append(candidates, cwdPath)
	}
	for _, path := range candidates {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logFilePath = path
			return file
		}
	}
	logFilePath = ""
	return io.Discard
}

// GetLogFilePath returns the file the logger writes to, or "" when logging is discarded.
func GetLogFilePath() string {
	return logFilePath
}
