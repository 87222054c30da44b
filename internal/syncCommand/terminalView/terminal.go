package terminalView

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns a function reporting the current width of file, which
// follows resizes. Non-terminals report defaultWidth.
func TerminalWidth(file *os.File) func() int {
	return func() int {
		width, _, err := term.GetSize(int(file.Fd()))
		if err != nil || width <= 0 {
			return defaultWidth
		}
		return width
	}
}
