package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedDecoder stands in for the glTF decoder: every decode announces its
// path on started and then blocks until its gate is closed.
type gatedDecoder struct {
	gates   map[string]chan struct{}
	models  map[string]*Model
	started chan string
}

func gatedLoader(t *testing.T, workers int, paths ...string) (*Loader, *gatedDecoder) {
	t.Helper()
	l, err := NewLoader(workers)
	require.NoError(t, err)

	d := &gatedDecoder{
		gates:   make(map[string]chan struct{}),
		models:  make(map[string]*Model),
		started: make(chan string, len(paths)),
	}
	for _, p := range paths {
		d.gates[p] = make(chan struct{})
		d.models[p] = NewModel(p, &Metadata{Name: p})
	}
	l.decode = func(path string) (*Model, error) {
		gate, ok := d.gates[path]
		if !ok {
			return nil, errors.New("unknown path")
		}
		d.started <- path
		<-gate
		return d.models[path], nil
	}
	return l, d
}

func (d *gatedDecoder) nextStarted(t *testing.T) string {
	t.Helper()
	select {
	case p := <-d.started:
		return p
	case <-time.After(time.Second):
		t.Fatal("no decode started")
		return ""
	}
}

func waitReady(t *testing.T, l *Loader) Asset {
	t.Helper()
	var got Asset
	require.Eventually(t, func() bool {
		a, ok := l.TryTakeCompleted()
		got = a
		return ok
	}, time.Second, time.Millisecond)
	return got
}

func waitHolding(t *testing.T, l *Loader, m *Model) {
	t.Helper()
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.ready == m
	}, time.Second, time.Millisecond)
}

func TestLoaderHandsOutOnce(t *testing.T) {
	l, d := gatedLoader(t, 1, "a.glb")
	defer l.Shutdown()

	_, ok := l.TryTakeCompleted()
	assert.False(t, ok)

	l.Submit("a.glb")
	close(d.gates["a.glb"])
	assert.Same(t, d.models["a.glb"], waitReady(t, l))

	_, ok = l.TryTakeCompleted()
	assert.False(t, ok)
}

func TestLoaderLatestWins(t *testing.T) {
	l, d := gatedLoader(t, 2, "old.glb", "new.glb")
	defer l.Shutdown()

	l.Submit("old.glb")
	require.Equal(t, "old.glb", d.nextStarted(t))
	l.Submit("new.glb")
	require.Equal(t, "new.glb", d.nextStarted(t))

	// The newer submission finishes first; the older result must not
	// replace it when it arrives later.
	close(d.gates["new.glb"])
	waitHolding(t, l, d.models["new.glb"])
	close(d.gates["old.glb"])
	require.Eventually(t, d.models["old.glb"].Released, time.Second, time.Millisecond)

	assert.Same(t, d.models["new.glb"], waitReady(t, l))
	assert.False(t, d.models["new.glb"].Released())
}

func TestLoaderReleasesSupersededUnclaimedModel(t *testing.T) {
	l, d := gatedLoader(t, 1, "first.glb", "second.glb")
	defer l.Shutdown()

	l.Submit("first.glb")
	close(d.gates["first.glb"])
	waitHolding(t, l, d.models["first.glb"])

	l.Submit("second.glb")
	close(d.gates["second.glb"])
	waitHolding(t, l, d.models["second.glb"])

	assert.True(t, d.models["first.glb"].Released())
	assert.Same(t, d.models["second.glb"], waitReady(t, l))
	assert.False(t, d.models["second.glb"].Released())
}

func TestLoaderSubmitDoesNotWaitForBusyWorkers(t *testing.T) {
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("model%02d.glb", i)
	}
	l, d := gatedLoader(t, 1, paths...)
	defer l.Shutdown()

	l.Submit(paths[0])
	require.Equal(t, paths[0], d.nextStarted(t))

	// More submissions than the queue holds, all while the only worker is
	// stuck in a decode.
	done := make(chan struct{})
	go func() {
		for _, p := range paths[1:] {
			l.Submit(p)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit waited for a running decode")
	}

	last := paths[len(paths)-1]
	close(d.gates[paths[0]])
	close(d.gates[last])
	assert.Equal(t, last, d.nextStarted(t), "queued submissions collapse into the newest one")

	waitHolding(t, l, d.models[last])
	assert.True(t, d.models[paths[0]].Released())
	assert.Same(t, d.models[last], waitReady(t, l))
	assert.Empty(t, d.started, "intermediate paths are never decoded")
}

func TestLoaderShutdownReleasesUnclaimed(t *testing.T) {
	l, d := gatedLoader(t, 1, "a.glb")
	l.Submit("a.glb")
	close(d.gates["a.glb"])
	waitHolding(t, l, d.models["a.glb"])

	l.Shutdown()
	assert.True(t, d.models["a.glb"].Released())
	_, ok := l.TryTakeCompleted()
	assert.False(t, ok)

	// Submissions after shutdown are ignored.
	l.Submit("a.glb")
	l.Shutdown()
}

func TestLoaderDecodesFromDisk(t *testing.T) {
	l, err := NewLoader(1)
	require.NoError(t, err)
	defer l.Shutdown()

	path := filepath.Join(t.TempDir(), "box.gltf")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o644))

	l.Submit(filepath.Join(t.TempDir(), "missing.gltf"))
	l.Submit(path)
	a := waitReady(t, l)
	assert.Equal(t, path, a.Path())
	assert.Equal(t, "box", a.Metadata().Name)
	assert.Len(t, a.Materials(), 2)
}
