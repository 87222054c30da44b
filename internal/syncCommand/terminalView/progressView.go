package terminalView

import (
	"fmt"
	"strings"

	"ghsync/internal/color"
	"ghsync/internal/ext"
	"ghsync/internal/view"
)

const barWidth = 20

// ProgressView is the single line pinned to the bottom of the terminal:
// "[#####...............] 5/20 3.1s alpha, beta".
type ProgressView struct {
	viewModel *SyncViewModel
	elapsed   *view.TimeElapsedView
}

func NewProgressView(vm *SyncViewModel, elapsed *view.TimeElapsedView) *ProgressView {
	return &ProgressView{viewModel: vm, elapsed: elapsed}
}

func bar(done, total int) string {
	filled := barWidth
	if total > 0 {
		filled = ext.Clamp(barWidth*done/total, 0, barWidth)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func (v *ProgressView) Render(width int) string {
	done, total := v.viewModel.Completed(), v.viewModel.Total()
	counts := fmt.Sprintf("%d/%d", done, total)
	elapsed := v.elapsed.Text()
	plain := bar(done, total) + " " + counts + " " + elapsed

	line := bar(done, total) + " " + color.FgMagenta(counts) + " " + color.FgGreen(elapsed)
	if names := v.viewModel.InFlight(); len(names) > 0 && width-len(plain)-1 > 3 {
		line += " " + view.ShortenBack(width-len(plain)-1, strings.Join(names, ", "))
	}
	if len(plain) > width {
		return view.ShortenBack(width, plain) + "\n"
	}
	return line + "\n"
}

// StatusView shows a single line of text, shortened to the terminal width.
type StatusView struct {
	Text string
}

func (v StatusView) Render(width int) string {
	if v.Text == "" {
		return ""
	}
	return view.ShortenFront(width, v.Text) + "\n"
}
