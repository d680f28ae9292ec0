package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
)

// Job is a unit of work run on one of the JobSystem workers. OnComplete and
// OnFailure are called on the worker goroutine.
type Job struct {
	Name       string
	Run        func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan Job
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")
var ErrJobQueueFull = errors.New("job queue is full")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job Job) {
	result, err := func() (res interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job %q panicked: %v", job.Name, r)
			}
		}()
		return job.Run()
	}()

	if err != nil {
		core.LogError("job %q failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

// Submit queues a job. It blocks while the queue is full and fails once the
// system has been shut down.
func (js *JobSystem) Submit(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no Run function", job.Name)
	}
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- job
	return nil
}

// TrySubmit queues a job if there is room and fails with ErrJobQueueFull
// otherwise. It never blocks.
func (js *JobSystem) TrySubmit(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no Run function", job.Name)
	}
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	select {
	case js.jobQueue <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Shutdown stops accepting jobs and waits for the queued ones to finish.
// Calling it more than once is a no-op.
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}
