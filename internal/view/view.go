package view

import (
	"fmt"
	"strings"
)

// View renders itself as complete lines, each terminated by "\n", fitted to width.
// A view with nothing to show renders "".
type View interface {
	Render(width int) string
}

type CompositeView struct {
	views []View
}

func NewCompositeView(views []View) *CompositeView {
	return &CompositeView{views: views}
}

func (cv *CompositeView) Render(w int) string {
	var sb strings.Builder
	for _, view := range cv.views {
		sb.WriteString(view.Render(w))
	}
	return sb.String()
}

func LineCount(out string) int {
	return strings.Count(out, "\n")
}

func ansiLineOffset(lines int) string {
	if lines <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dA", lines)
}

const clearToEnd = "\r\033[J"

// Frame keeps a footer pinned below output that scrolls past it. It remembers how
// many lines it drew last so the next update can move back over them.
type Frame struct {
	lines int
}

// Update returns the escape sequence that erases the previous footer, prints
// scrolled (which must end in "\n" unless empty), and draws footer in its place.
func (f *Frame) Update(scrolled, footer string) string {
	out := ansiLineOffset(f.lines) + clearToEnd + scrolled + footer
	f.lines = LineCount(footer)
	return out
}

// Clear erases the footer for good, leaving the cursor where it started.
func (f *Frame) Clear() string {
	out := ansiLineOffset(f.lines) + clearToEnd
	f.lines = 0
	return out
}

// Lines is the height of the footer currently on screen.
func (f *Frame) Lines() int {
	return f.lines
}
