package terminalView

import (
	"sort"

	"ghsync/internal/counter"
	"ghsync/internal/gitrepo"
)

// SyncViewModel is the state of one run as seen by the display. It is only ever
// touched by the goroutine consuming worker events.
type SyncViewModel struct {
	Tally       *counter.Tally
	Interrupted bool
	inFlight    []gitrepo.Task
}

func NewSyncViewModel(total, skipped int) *SyncViewModel {
	return &SyncViewModel{Tally: counter.NewTally(total, skipped)}
}

func (vm *SyncViewModel) Started(task gitrepo.Task) {
	i := sort.Search(len(vm.inFlight), func(i int) bool { return vm.inFlight[i].Index >= task.Index })
	vm.inFlight = append(vm.inFlight, gitrepo.Task{})
	copy(vm.inFlight[i+1:], vm.inFlight[i:])
	vm.inFlight[i] = task
}

func (vm *SyncViewModel) Finished(task gitrepo.Task, outcome gitrepo.Outcome) {
	for i, t := range vm.inFlight {
		if t.Index == task.Index {
			vm.inFlight = append(vm.inFlight[:i], vm.inFlight[i+1:]...)
			break
		}
	}
	vm.Tally.Add(outcome)
}

// InFlight lists the names of running tasks in listing order.
func (vm *SyncViewModel) InFlight() []string {
	names := make([]string, len(vm.inFlight))
	for i, task := range vm.inFlight {
		names[i] = task.Repository.Name
	}
	return names
}

func (vm *SyncViewModel) Completed() int {
	return vm.Tally.Completed()
}

func (vm *SyncViewModel) Total() int {
	return vm.Tally.Total()
}

func (vm *SyncViewModel) Errors() int {
	return vm.Tally.Count(gitrepo.Failed)
}
