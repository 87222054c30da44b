package syncCommand

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"ghsync/internal/gitrepo"
	"ghsync/internal/log"
	"ghsync/internal/pipe"
)

type EventKind int

const (
	Started EventKind = iota
	Finished
)

// Event reports a task starting or finishing. Outcome is only set for Finished.
type Event struct {
	Kind    EventKind
	Task    gitrepo.Task
	Outcome gitrepo.Outcome
}

type Syncer interface {
	Sync(ctx context.Context, task gitrepo.Task) gitrepo.Outcome
}

// Dispatcher runs tasks with bounded concurrency.
type Dispatcher struct {
	syncer        Syncer
	concurrency   int
	ratePerSecond int
}

func NewDispatcher(syncer Syncer, concurrency, ratePerSecond int) *Dispatcher {
	return &Dispatcher{syncer: syncer, concurrency: max(concurrency, 1), ratePerSecond: ratePerSecond}
}

// Run starts tasks in order, never more than the concurrency limit at once, and
// reports every start and finish on the returned channel, which is closed once
// the last started task has finished. Cancelling dispatch stops new tasks from
// starting; running tasks carry on with work, which is what their git commands
// are bound to.
func (d *Dispatcher) Run(dispatch, work context.Context, tasks []gitrepo.Task) <-chan Event {
	// room for every event, so workers never wait on the consumer
	events := make(chan Event, 2*len(tasks))
	go func() {
		defer close(events)
		slots := semaphore.NewWeighted(int64(d.concurrency))
		var group errgroup.Group
		for task := range pipe.RateLimit(dispatch, pipe.FromSlice(tasks), d.ratePerSecond, 0) {
			if err := slots.Acquire(dispatch, 1); err != nil {
				break
			}
			// Acquire may succeed on a cancelled context when a slot is free
			if dispatch.Err() != nil {
				slots.Release(1)
				break
			}
			logger.Log.Debugf("Dispatching %s", task.Repository.Name)
			events <- Event{Kind: Started, Task: task}
			group.Go(func() error {
				defer slots.Release(1)
				outcome := d.syncer.Sync(work, task)
				events <- Event{Kind: Finished, Task: task, Outcome: outcome}
				return nil
			})
		}
		_ = group.Wait()
	}()
	return events
}

// Plan turns the sorted repository list into tasks, skipping every repository
// that sorts before startFrom. Skipped repositories are counted, not dispatched.
func Plan(repos []gitrepo.Repository, cloneRoot, startFrom string) (tasks []gitrepo.Task, skipped int) {
	for i, repo := range repos {
		if startFrom != "" && repo.Name < startFrom {
			skipped++
			continue
		}
		tasks = append(tasks, gitrepo.NewTask(i, repo, cloneRoot))
	}
	return tasks, skipped
}
