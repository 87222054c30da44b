package view

import (
	"fmt"

	"ghsync/internal/color"
	"ghsync/internal/ext"
)

type ErrorView struct {
	errorCount  func() int
	logFilePath string
}

// NewErrorView shows how many errors occurred so far and where the log file is.
func NewErrorView(errorCount func() int, logFilePath string) *ErrorView {
	return &ErrorView{
		errorCount:  errorCount,
		logFilePath: logFilePath,
	}
}

func (v ErrorView) Render(width int) string {
	count := v.errorCount()
	if count == 0 {
		return ""
	}
	if v.logFilePath == "" {
		return fmt.Sprintf("--- %s errors ---\n", color.FgRed("%d", count))
	}
	prefix := fmt.Sprintf("--- %d errors --- See log file: ", count)
	path := ShortenFront(max(width-len(prefix), 10), ext.ReplaceHomeDirWithTilde(v.logFilePath))
	return fmt.Sprintf("--- %s errors --- See log file: %s\n", color.FgRed("%d", count), color.FgMagenta(path))
}
