package ext

import (
	"os"
	"path/filepath"
	"strings"
)

// ReplaceHomeDirWithTilde replaces the home directory in an absolute path with ~
func ReplaceHomeDirWithTilde(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return path
	}
	if path == homeDir || strings.HasPrefix(path, homeDir+string(filepath.Separator)) {
		return "~" + strings.TrimPrefix(path, homeDir)
	}
	return path
}

// ExpandTilde is the inverse of ReplaceHomeDirWithTilde for paths read from configuration.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
