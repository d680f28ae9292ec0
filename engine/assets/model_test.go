package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *Model {
	return NewModel("fox.glb", &Metadata{
		Name:       "fox",
		Materials:  []MaterialInfo{{Name: "fur"}},
		Animations: []Animation{{Name: "survey", Duration: 2}, {Name: "run", Duration: 1}},
	})
}

func TestModelIdentity(t *testing.T) {
	a, b := testModel(), testModel()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "fox.glb", a.Path())
	assert.Len(t, a.Materials(), 1)
}

func TestPlaybackLoop(t *testing.T) {
	m := testModel()
	p := m.Playback()
	require.True(t, p.HasAnimation())
	assert.Equal(t, PLAYBACK_STATE_PLAYING, p.State)

	m.Update(1.5)
	assert.InDelta(t, 1.5, p.Time, 1e-6)
	m.Update(1.0)
	assert.InDelta(t, 0.5, p.Time, 1e-6)
	assert.Equal(t, PLAYBACK_STATE_PLAYING, p.State)
}

func TestPlaybackOnceStopsAtEnd(t *testing.T) {
	m := testModel()
	p := m.Playback()
	p.ToggleMode()
	assert.Equal(t, PLAYBACK_MODE_ONCE, p.Mode)

	m.Update(5)
	assert.Equal(t, float32(2), p.Time)
	assert.Equal(t, PLAYBACK_STATE_STOPPED, p.State)

	// A stopped animation does not advance.
	m.Update(1)
	assert.Equal(t, float32(2), p.Time)
}

func TestPlaybackControls(t *testing.T) {
	p := testModel().Playback()
	p.Toggle()
	assert.Equal(t, PLAYBACK_STATE_PAUSED, p.State)
	p.Advance(1)
	assert.Zero(t, p.Time)
	p.Toggle()
	p.Advance(0.5)
	assert.InDelta(t, 0.5, p.Time, 1e-6)

	p.Next()
	anim, ok := p.Animation()
	require.True(t, ok)
	assert.Equal(t, "run", anim.Name)
	assert.Zero(t, p.Time)
	p.Next()
	assert.Equal(t, 0, p.Current)

	p.Select(7)
	assert.Equal(t, 0, p.Current)

	p.Advance(0.5)
	p.Reset()
	assert.Zero(t, p.Time)
	p.Stop()
	assert.Equal(t, PLAYBACK_STATE_STOPPED, p.State)
	p.Toggle()
	assert.Equal(t, PLAYBACK_STATE_PLAYING, p.State)
}

func TestPlaybackWithoutAnimations(t *testing.T) {
	m := NewModel("cube.gltf", &Metadata{Name: "cube"})
	p := m.Playback()
	assert.False(t, p.HasAnimation())
	assert.Equal(t, PLAYBACK_STATE_STOPPED, p.State)
	p.Toggle()
	p.Next()
	m.Update(1)
	assert.Equal(t, PLAYBACK_STATE_STOPPED, p.State)
	assert.Zero(t, p.Time)
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := testModel()
	m.Release()
	m.Release()
	assert.True(t, m.Released())
	assert.Nil(t, m.Materials())
}
