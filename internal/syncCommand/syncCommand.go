package syncCommand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"ghsync/internal/appConfig"
	"ghsync/internal/color"
	"ghsync/internal/counter"
	"ghsync/internal/gitrepo"
	"ghsync/internal/github"
	"ghsync/internal/httpcache"
	"ghsync/internal/log"
	"ghsync/internal/syncCommand/terminalView"
)

const tickInterval = 100 * time.Millisecond

// SyncCommand is one invocation: list, then sync every listed repository.
type SyncCommand struct {
	Config *appConfig.AppConfig
	Out    io.Writer
	Err    io.Writer
	IsTTY  bool
	Width  func() int
	// Interrupts delivers user interrupts. The first stops dispatching, the second abandons running tasks.
	Interrupts <-chan os.Signal

	// API and Git default to the GitHub REST API and the git binary.
	API github.PageSource
	Git gitrepo.Git
}

// Execute runs the command and returns the process exit status.
func (c *SyncCommand) Execute(ctx context.Context) int {
	config := c.Config
	if err := config.Validate(); err != nil {
		c.fatal(err)
		return counter.ExitFatal
	}

	work, abandon := context.WithCancel(ctx)
	defer abandon()
	dispatch, stop := context.WithCancel(work)
	defer stop()
	done := make(chan struct{})
	defer close(done)
	go c.watchInterrupts(done, stop, abandon)

	if !c.IsTTY {
		color.Disable()
	}
	reporter := terminalView.NewReporter(c.Out, terminalView.ReporterOptions{
		Mode:        terminalView.ModeFor(c.IsTTY, config.Verbosity),
		Verbosity:   config.Verbosity,
		DryRun:      config.DryRun,
		Width:       c.Width,
		LogFilePath: logger.GetLogFilePath(),
	})

	token := config.ResolveToken()
	api, stats, err := c.api(token)
	if err != nil {
		c.fatal(err)
		return counter.ExitFatal
	}
	defer stats()

	repos, err := c.list(dispatch, api, token != "", reporter)
	if errors.Is(err, context.Canceled) {
		reporter.End()
		return counter.ExitInterrupted
	}
	if err != nil {
		reporter.End()
		logger.Log.Errorf("Listing failed: %v", err)
		c.fatal(err)
		return counter.ExitFatal
	}

	cloneRoot := config.GetCloneDirectory()
	if !config.DryRun {
		if err := os.MkdirAll(cloneRoot, os.ModePerm); err != nil {
			reporter.End()
			c.fatal(fmt.Errorf("failed to create clone directory: %w", err))
			return counter.ExitFatal
		}
	}
	tasks, skipped := Plan(repos, cloneRoot, config.StartFrom)
	logger.Log.Infof("Syncing %d repositories into %s (%d skipped), concurrency %d",
		len(tasks), color.FgCyan(cloneRoot), skipped, config.GetConcurrency())

	git := c.Git
	if git == nil {
		git = gitrepo.NewShell()
	}
	inspector := gitrepo.NewInspector(git, gitrepo.InspectorOptions{
		DryRun:        config.DryRun,
		Diagnostics:   config.Verbosity >= 1,
		VerboseErrors: config.Verbosity >= 1,
		Interrupted:   func() bool { return dispatch.Err() != nil },
	})
	dispatcher := NewDispatcher(inspector, config.GetConcurrency(), config.RateLimitPerSecond)

	viewModel := terminalView.NewSyncViewModel(len(tasks), skipped)
	reporter.Begin(viewModel)
	c.consume(dispatch, work, dispatcher.Run(dispatch, work, tasks), viewModel, reporter)
	reporter.End()

	return viewModel.Tally.ExitCode(viewModel.Interrupted)
}

// consume is the coordinating loop: the only place run state and the terminal are touched.
func (c *SyncCommand) consume(dispatch, work context.Context, events <-chan Event, vm *terminalView.SyncViewModel, reporter *terminalView.Reporter) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	stopped := dispatch.Done()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				vm.Interrupted = vm.Interrupted || dispatch.Err() != nil
				return
			}
			switch event.Kind {
			case Started:
				reporter.Started(event.Task)
			case Finished:
				reporter.Finished(event.Task, event.Outcome)
			}
		case <-ticker.C:
			reporter.Tick()
		case <-stopped:
			stopped = nil
			vm.Interrupted = true
			logger.Log.Infof("Interrupted, waiting for %d running tasks", len(vm.InFlight()))
			reporter.Tick()
		case <-work.Done():
			vm.Interrupted = true
			logger.Log.Warnf("Abandoning %d running tasks", len(vm.InFlight()))
			return
		}
	}
}

func (c *SyncCommand) watchInterrupts(done <-chan struct{}, stop, abandon context.CancelFunc) {
	received := 0
	for {
		select {
		case <-c.Interrupts:
			received++
			if received == 1 {
				stop()
			} else {
				abandon()
				return
			}
		case <-done:
			return
		}
	}
}

func (c *SyncCommand) list(ctx context.Context, api github.PageSource, authenticated bool, reporter *terminalView.Reporter) ([]gitrepo.Repository, error) {
	config := c.Config
	message := fmt.Sprintf("Fetching list of %s's %s from GitHub...", config.Owner(), config.Kind())
	reporter.Status(message)
	lister := github.NewLister(api, authenticated)
	lister.Progress = func(n int) {
		reporter.Status(fmt.Sprintf("%s (%d)", message, n))
	}
	return lister.List(ctx, config.Owner(), config.Kind(), config.Filter())
}

// api builds the listing client. The returned func logs cache statistics and releases the cache.
func (c *SyncCommand) api(token string) (github.PageSource, func(), error) {
	if c.API != nil {
		return c.API, func() {}, nil
	}
	config := c.Config
	var transport http.RoundTripper
	cleanup := func() {}
	if path := config.GetHTTPCachePath(); path != "" {
		store, err := httpcache.NewSQLiteStore(path, httpcache.DefaultTTL)
		if err != nil {
			logger.Log.Warnf("HTTP cache %s unavailable, continuing without it: %v", path, err)
		} else {
			cached := httpcache.NewTransport(http.DefaultTransport, store)
			transport = cached
			cleanup = func() {
				hits, misses := cached.Stats()
				logger.Log.Debugf("HTTP cache: %d hits, %d misses", hits, misses)
				if err := store.Close(); err != nil {
					logger.Log.Warnf("Failed to close HTTP cache: %v", err)
				}
			}
		}
	}
	client, err := github.NewAPIClient(github.ClientOptions{
		Token:     token,
		BaseURL:   config.APIURL,
		Transport: transport,
		UseHTTPS:  config.UseHTTPS(),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return client, cleanup, nil
}

func (c *SyncCommand) fatal(err error) {
	errOut := c.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	_, _ = fmt.Fprintf(errOut, "ghsync: %v\n", err)
}
