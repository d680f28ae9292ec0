package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	require.NoError(t, err)

	var completed, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		fail := i%2 == 0
		require.NoError(t, js.Submit(Job{
			Name: "work",
			Run: func() (interface{}, error) {
				if fail {
					return nil, errors.New("boom")
				}
				return 42, nil
			},
			OnComplete: func(result interface{}) {
				assert.Equal(t, 42, result)
				completed.Add(1)
				wg.Done()
			},
			OnFailure: func(err error) {
				assert.EqualError(t, err, "boom")
				failed.Add(1)
				wg.Done()
			},
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(5), completed.Load())
	assert.Equal(t, int32(5), failed.Load())
	require.NoError(t, js.Shutdown())
}

func TestJobPanicIsReportedAsFailure(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	require.NoError(t, js.Submit(Job{
		Name:      "panics",
		Run:       func() (interface{}, error) { panic("bad input") },
		OnFailure: func(err error) { done <- err },
	}))
	assert.ErrorContains(t, <-done, "bad input")
	require.NoError(t, js.Shutdown())
}

func TestShutdownDrainsAndRejects(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)

	var ran atomic.Int32
	for i := 0; i < 4; i++ {
		require.NoError(t, js.Submit(Job{Name: "n", Run: func() (interface{}, error) {
			ran.Add(1)
			return nil, nil
		}}))
	}
	require.NoError(t, js.Shutdown())
	assert.Equal(t, int32(4), ran.Load())

	assert.ErrorIs(t, js.Submit(Job{Name: "late", Run: func() (interface{}, error) { return nil, nil }}), ErrJobSystemClosed)
	assert.NoError(t, js.Shutdown())
}

func TestSubmitRequiresRun(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)
	defer js.Shutdown()
	assert.Error(t, js.Submit(Job{Name: "empty"}))
}

func TestTrySubmitNeverBlocks(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	started := make(chan struct{})
	gate := make(chan struct{})
	busy := func() (interface{}, error) {
		started <- struct{}{}
		<-gate
		return nil, nil
	}
	require.NoError(t, js.TrySubmit(Job{Name: "running", Run: busy}))
	<-started
	require.NoError(t, js.TrySubmit(Job{Name: "queued", Run: func() (interface{}, error) { return nil, nil }}))

	assert.ErrorIs(t, js.TrySubmit(Job{Name: "overflow", Run: func() (interface{}, error) { return nil, nil }}), ErrJobQueueFull)

	close(gate)
	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, js.TrySubmit(Job{Name: "late", Run: func() (interface{}, error) { return nil, nil }}), ErrJobSystemClosed)
}
