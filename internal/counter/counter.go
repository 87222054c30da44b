package counter

import "sync"

// Counter is a running total that any number of goroutines may add to.
type Counter struct {
	addChan   chan int
	countChan chan int
	done      chan struct{}
	stopped   chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewCounter creates and initializes a new Counter
func NewCounter() *Counter {
	c := &Counter{
		addChan:   make(chan int),
		countChan: make(chan int),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	go c.receiveCounts()
	return c
}

func (c *Counter) receiveCounts() {
	var total int
	for {
		select {
		case add := <-c.addChan:
			total += add
			c.wg.Done()
		case c.countChan <- total:
			// Sends the current total when requested
		case <-c.done:
			close(c.countChan)
			close(c.stopped)
			return
		}
	}
}

// Add adds a value to the counter safely
func (c *Counter) Add(value int) {
	c.wg.Add(1)
	c.addChan <- value
}

func (c *Counter) Inc() {
	c.Add(1)
}

// Count returns the current count safely. After Close it returns 0.
func (c *Counter) Count() int {
	c.wg.Wait()
	return <-c.countChan
}

// Close stops the goroutine backing the counter. Add must not be called afterwards.
func (c *Counter) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	<-c.stopped
}
