package view

import (
	"fmt"
	"time"

	"ghsync/internal/color"
)

type TimeElapsedView struct {
	startTime time.Time
	since     func(time.Time) time.Duration // Custom Since function
}

func NewTimeElapsedView(startTime time.Time, since func(time.Time) time.Duration) *TimeElapsedView {
	return &TimeElapsedView{
		startTime: startTime,
		since:     since,
	}
}

// Text is the elapsed time without colour, e.g. "12.3s".
func (t *TimeElapsedView) Text() string {
	return fmt.Sprintf("%.1fs", t.since(t.startTime).Seconds())
}

func (t *TimeElapsedView) Render(int) string {
	return color.FgGreen(t.Text()) + "\n"
}
