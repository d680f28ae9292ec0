package assets

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/systems"
)

const DEFAULT_LOADER_QUEUE_SIZE = 8

// Loader decodes models in the background. Only the most recent submission
// matters: a path submitted while another one still waits in the queue
// replaces it, and a result superseded by a newer one is released without
// ever being handed out.
type Loader struct {
	jobs   *systems.JobSystem
	decode func(path string) (*Model, error)

	mu       sync.Mutex
	next     uint64
	pending  string
	queued   bool
	ready    *Model
	readySeq uint64
	closed   bool
}

type decoded struct {
	seq   uint64
	model *Model
}

func NewLoader(workers int) (*Loader, error) {
	jobs, err := systems.NewJobSystem(workers, DEFAULT_LOADER_QUEUE_SIZE)
	if err != nil {
		return nil, fmt.Errorf("asset loader: %w", err)
	}
	return &Loader{jobs: jobs, decode: Load}, nil
}

// Submit schedules path for decoding and returns immediately.
func (l *Loader) Submit(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		core.LogWarn("asset loader is shut down, ignoring %s", path)
		return
	}
	l.next++
	l.pending = path
	core.LogInfo("loading model %s", path)
	if l.queued {
		return
	}

	err := l.jobs.TrySubmit(systems.Job{
		Name: "load model",
		Run:  l.decodePending,
		OnComplete: func(result interface{}) {
			d := result.(decoded)
			l.complete(d.seq, d.model)
		},
	})
	if err != nil {
		core.LogError("failed to queue model %s: %s", path, err)
		return
	}
	l.queued = true
}

// decodePending runs on a worker and decodes whatever was submitted last.
func (l *Loader) decodePending() (interface{}, error) {
	l.mu.Lock()
	path, seq := l.pending, l.next
	l.pending = ""
	l.queued = false
	l.mu.Unlock()

	m, err := l.decode(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decoded{seq: seq, model: m}, nil
}

func (l *Loader) complete(seq uint64, m *Model) {
	l.mu.Lock()
	var drop *Model
	switch {
	case l.closed || seq < l.readySeq:
		drop = m
	default:
		drop = l.ready
		l.ready = m
		l.readySeq = seq
	}
	l.mu.Unlock()

	if drop != nil {
		drop.Release()
	}
	if drop != m {
		core.LogInfo("model %s ready (%s)", m.Metadata().Name, m.ID())
	}
}

// TryTakeCompleted hands out the latest decoded model, if any. Each model is
// handed out once.
func (l *Loader) TryTakeCompleted() (Asset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready == nil {
		return nil, false
	}
	m := l.ready
	l.ready = nil
	return m, true
}

// Shutdown waits for queued decodes and releases anything not taken.
func (l *Loader) Shutdown() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.jobs.Shutdown()

	l.mu.Lock()
	ready := l.ready
	l.ready = nil
	l.mu.Unlock()
	if ready != nil {
		ready.Release()
	}
}
