// Package color wraps fatih/color so views can colour a fragment inline.
// Colouring is switched off automatically when stdout is not a terminal.
package color

import "github.com/fatih/color"

var (
	red     = color.New(color.FgRed)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	cyan    = color.New(color.FgCyan)
	magenta = color.New(color.FgMagenta)
)

// paint formats text only when arguments are given, so text containing '%' is safe.
func paint(c *color.Color, text string, a []any) string {
	if len(a) == 0 {
		return c.Sprint(text)
	}
	return c.Sprintf(text, a...)
}

func FgRed(text string, a ...any) string {
	return paint(red, text, a)
}

func FgGreen(text string, a ...any) string {
	return paint(green, text, a)
}

func FgYellow(text string, a ...any) string {
	return paint(yellow, text, a)
}

func FgCyan(text string, a ...any) string {
	return paint(cyan, text, a)
}

func FgMagenta(text string, a ...any) string {
	return paint(magenta, text, a)
}

// Disable forces plain output, regardless of the terminal.
func Disable() {
	color.NoColor = true
}
