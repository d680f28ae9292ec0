package assets

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

// Asset is a loaded model as the viewer sees it.
type Asset interface {
	ID() string
	Path() string
	Metadata() *Metadata
	Materials() []Material
	Playback() *Playback
	Update(delta float32)
	Release()
}

type PlaybackState uint8

const (
	PLAYBACK_STATE_STOPPED PlaybackState = iota
	PLAYBACK_STATE_PLAYING
	PLAYBACK_STATE_PAUSED
)

func (s PlaybackState) String() string {
	switch s {
	case PLAYBACK_STATE_PLAYING:
		return "playing"
	case PLAYBACK_STATE_PAUSED:
		return "paused"
	}
	return "stopped"
}

type PlaybackMode uint8

const (
	PLAYBACK_MODE_LOOP PlaybackMode = iota
	PLAYBACK_MODE_ONCE
)

func (m PlaybackMode) String() string {
	if m == PLAYBACK_MODE_ONCE {
		return "once"
	}
	return "loop"
}

// Playback is the animation cursor of a model.
type Playback struct {
	animations []Animation
	Current    int
	Time       float32
	Mode       PlaybackMode
	State      PlaybackState
}

func newPlayback(animations []Animation) *Playback {
	p := &Playback{animations: animations, Current: -1}
	if len(animations) > 0 {
		p.Current = 0
		p.State = PLAYBACK_STATE_PLAYING
	}
	return p
}

func (p *Playback) HasAnimation() bool {
	return p.Current >= 0 && p.Current < len(p.animations)
}

// Animation returns the selected clip.
func (p *Playback) Animation() (Animation, bool) {
	if !p.HasAnimation() {
		return Animation{}, false
	}
	return p.animations[p.Current], true
}

// Toggle switches between playing and paused. A stopped animation starts
// from the beginning.
func (p *Playback) Toggle() {
	if !p.HasAnimation() {
		return
	}
	switch p.State {
	case PLAYBACK_STATE_PLAYING:
		p.State = PLAYBACK_STATE_PAUSED
	default:
		p.State = PLAYBACK_STATE_PLAYING
	}
}

func (p *Playback) Stop() {
	p.State = PLAYBACK_STATE_STOPPED
	p.Time = 0
}

func (p *Playback) Reset() {
	p.Time = 0
}

func (p *Playback) ToggleMode() {
	if p.Mode == PLAYBACK_MODE_LOOP {
		p.Mode = PLAYBACK_MODE_ONCE
	} else {
		p.Mode = PLAYBACK_MODE_LOOP
	}
}

// Select switches to animation index and rewinds it. Out of range indices
// are ignored.
func (p *Playback) Select(index int) {
	if index < 0 || index >= len(p.animations) {
		return
	}
	p.Current = index
	p.Time = 0
}

// Next selects the following animation, wrapping around.
func (p *Playback) Next() {
	if len(p.animations) == 0 {
		return
	}
	p.Select((p.Current + 1) % len(p.animations))
}

// Advance moves the cursor by delta seconds.
func (p *Playback) Advance(delta float32) {
	anim, ok := p.Animation()
	if !ok || p.State != PLAYBACK_STATE_PLAYING || delta <= 0 {
		return
	}
	p.Time += delta
	if anim.Duration <= 0 {
		p.Time = 0
		return
	}
	if p.Time < anim.Duration {
		return
	}
	if p.Mode == PLAYBACK_MODE_LOOP {
		p.Time = math.Wrap(p.Time, anim.Duration)
		return
	}
	p.Time = anim.Duration
	p.State = PLAYBACK_STATE_STOPPED
}

// Model is a decoded glTF file.
type Model struct {
	id        uuid.UUID
	path      string
	metadata  *Metadata
	materials []Material
	playback  *Playback
	released  atomic.Bool
}

func NewModel(path string, meta *Metadata) *Model {
	return &Model{
		id:        uuid.New(),
		path:      path,
		metadata:  meta,
		materials: PackMaterials(meta.Materials),
		playback:  newPlayback(meta.Animations),
	}
}

// Load decodes path into a new Model.
func Load(path string) (*Model, error) {
	meta, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return NewModel(path, meta), nil
}

func (m *Model) ID() string            { return m.id.String() }
func (m *Model) Path() string          { return m.path }
func (m *Model) Metadata() *Metadata   { return m.metadata }
func (m *Model) Materials() []Material { return m.materials }
func (m *Model) Playback() *Playback   { return m.playback }

func (m *Model) Update(delta float32) {
	m.playback.Advance(delta)
}

func (m *Model) Released() bool {
	return m.released.Load()
}

// Release drops the model's data. Only the first call has an effect.
func (m *Model) Release() {
	if !m.released.CompareAndSwap(false, true) {
		return
	}
	core.LogDebug("releasing model %s (%s)", m.metadata.Name, m.id)
	m.materials = nil
}
