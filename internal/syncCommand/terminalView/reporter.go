package terminalView

import (
	"fmt"
	"io"
	"time"

	"ghsync/internal/gitrepo"
	"ghsync/internal/log"
	"ghsync/internal/view"
)

type Mode int

const (
	// Interactive keeps a progress footer pinned below the scrolling result lines.
	Interactive Mode = iota
	// Plain prints one line per repository and no escape sequences.
	Plain
	// Quiet prints only repositories that need attention.
	Quiet
	// Silent prints nothing but the final tally.
	Silent
)

// ModeFor picks the display mode. Verbosity is the number of -v flags minus the number of -q flags.
func ModeFor(isTTY bool, verbosity int) Mode {
	switch {
	case verbosity <= -2:
		return Silent
	case verbosity == -1:
		return Quiet
	case isTTY:
		return Interactive
	default:
		return Plain
	}
}

type ReporterOptions struct {
	Mode        Mode
	Verbosity   int
	DryRun      bool
	Width       func() int
	LogFilePath string
	StartTime   time.Time
	Since       func(time.Time) time.Duration
}

// Reporter turns run events into terminal output. All methods must be called from
// the same goroutine; none of them block on anything but writing to out.
type Reporter struct {
	out       io.Writer
	options   ReporterOptions
	viewModel *SyncViewModel
	frame     view.Frame
	status    StatusView
	elapsed   *view.TimeElapsedView
	footer    view.View
}

func NewReporter(out io.Writer, options ReporterOptions) *Reporter {
	if options.Width == nil {
		options.Width = func() int { return defaultWidth }
	}
	if options.Since == nil {
		options.Since = time.Since
	}
	if options.StartTime.IsZero() {
		options.StartTime = time.Now()
	}
	return &Reporter{
		out:     out,
		options: options,
		elapsed: view.NewTimeElapsedView(options.StartTime, options.Since),
	}
}

// Status replaces the footer with a line of text while no run is in progress yet.
func (r *Reporter) Status(text string) {
	if r.options.Mode != Interactive {
		return
	}
	r.status = StatusView{Text: text}
	r.write(r.frame.Update("", r.status.Render(r.options.Width())))
}

// Begin starts displaying a run.
func (r *Reporter) Begin(vm *SyncViewModel) {
	r.viewModel = vm
	r.status = StatusView{}
	r.footer = view.NewCompositeView([]view.View{
		view.NewErrorView(vm.Errors, r.options.LogFilePath),
		NewProgressView(vm, r.elapsed),
	})
	r.redraw("")
}

func (r *Reporter) Started(task gitrepo.Task) {
	r.viewModel.Started(task)
	r.redraw("")
}

func (r *Reporter) Finished(task gitrepo.Task, outcome gitrepo.Outcome) {
	r.viewModel.Finished(task, outcome)
	r.redraw(r.outcomeLines(task, outcome))
}

// Tick refreshes the footer so elapsed time keeps moving while nothing finishes.
func (r *Reporter) Tick() {
	r.redraw("")
}

// End removes the footer and prints the final tally.
func (r *Reporter) End() {
	if r.options.Mode == Interactive {
		r.write(r.frame.Clear())
	}
	if r.viewModel == nil {
		return
	}
	if r.viewModel.Interrupted {
		r.write("Interrupted\n")
	}
	r.write(r.viewModel.Tally.Summary(r.options.DryRun) + "\n")
}

func (r *Reporter) outcomeLines(task gitrepo.Task, outcome gitrepo.Outcome) string {
	switch r.options.Mode {
	case Silent:
		return ""
	case Quiet:
		if outcome.Clean() {
			return ""
		}
	}
	return OutcomeView{Task: task, Outcome: outcome, Verbosity: r.options.Verbosity}.Render(r.options.Width())
}

func (r *Reporter) redraw(scrolled string) {
	if r.options.Mode != Interactive {
		r.write(scrolled)
		return
	}
	if r.footer == nil {
		r.write(r.frame.Update(scrolled, r.status.Render(r.options.Width())))
		return
	}
	r.write(r.frame.Update(scrolled, r.footer.Render(r.options.Width())))
}

func (r *Reporter) write(out string) {
	if out == "" {
		return
	}
	if _, err := fmt.Fprint(r.out, out); err != nil {
		logger.Log.Debugf("Failed to write to terminal: %v", err)
	}
}
