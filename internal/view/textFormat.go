package view

import (
	"fmt"
	"strings"
)

// TruncateTextToWidth Cuts off front of text and adds ellipsis to indicate that text was shortened. Fills lines with spaces.
func TruncateTextToWidth(width int, out string) string {
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if len(line) > width {
			if width > 3 {
				lines[i] = "..." + line[len(line)-width+3:]
			} else {
				lines[i] = line[len(line)-width:]
			}
		} else {
			lines[i] = fmt.Sprintf("%-*s", width, line)
		}
	}
	out = strings.Join(lines, "\n")
	return out
}

// ShortenFront cuts off the front of a single line longer than width and marks the cut with an ellipsis.
// Unlike TruncateTextToWidth it does not pad.
func ShortenFront(width int, line string) string {
	if len(line) <= width {
		return line
	}
	return strings.TrimRight(TruncateTextToWidth(width, line), " ")
}

// ShortenBack cuts off the end of a single line longer than width, marking the cut with an ellipsis.
func ShortenBack(width int, line string) string {
	if len(line) <= width {
		return line
	}
	if width <= 3 {
		return line[:max(width, 0)]
	}
	return line[:width-3] + "..."
}
