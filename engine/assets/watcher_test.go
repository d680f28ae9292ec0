package assets

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissions struct {
	mu    sync.Mutex
	paths []string
}

func (s *submissions) submit(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
}

func (s *submissions) get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func TestWatcherReloadsActiveFile(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "fox.glb")
	other := filepath.Join(dir, "other.glb")
	require.NoError(t, os.WriteFile(model, []byte("v1"), 0o644))

	var subs submissions
	w, err := NewWatcher(subs.submit)
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 20 * time.Millisecond

	require.NoError(t, w.Watch(model))
	assert.Equal(t, model, w.Path())

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	// Several writes collapse into a single reload.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(model, []byte("v2"), 0o644))
	}

	require.Eventually(t, func() bool { return len(subs.get()) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{model}, subs.get())
}

func TestWatcherRepoint(t *testing.T) {
	first := filepath.Join(t.TempDir(), "a.gltf")
	second := filepath.Join(t.TempDir(), "b.gltf")
	require.NoError(t, os.WriteFile(first, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("{}"), 0o644))

	var subs submissions
	w, err := NewWatcher(subs.submit)
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 10 * time.Millisecond

	require.NoError(t, w.Watch(first))
	require.NoError(t, w.Watch(second))

	require.NoError(t, os.WriteFile(first, []byte("{ }"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("{ }"), 0o644))
	require.Eventually(t, func() bool { return len(subs.get()) >= 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	for _, p := range subs.get() {
		assert.Equal(t, second, p)
	}

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "gone", "c.gltf")))
	assert.Empty(t, w.Path())
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(func(string) {})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
