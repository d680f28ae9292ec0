package gui

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	SSAO_RADIUS_STEP       float32 = 0.01
	SSAO_STRENGTH_STEP     float32 = 0.1
	EMISSIVE_STEP          float32 = 1.0
	ANIMATION_SPEED_STEP   float32 = 0.05
	MIN_ANIMATION_SPEED    float32 = 0.05
	MAX_ANIMATION_SPEED    float32 = 5.0
	DEFAULT_OVERLAY_MARGIN         = 8
	DEFAULT_OVERLAY_PAD            = 6
)

var (
	panelColor = [4]float32{0.08, 0.08, 0.1, 1}
	textColor  = [4]float32{0.92, 0.92, 0.92, 1}
	hintColor  = [4]float32{0.55, 0.75, 1, 1}
)

// AnimationControls are the playback requests gathered since the last take.
type AnimationControls struct {
	Toggle     bool
	Stop       bool
	Reset      bool
	ToggleMode bool
	Next       bool
}

func (c AnimationControls) Any() bool {
	return c.Toggle || c.Stop || c.Reset || c.ToggleMode || c.Next
}

// pending holds setting changes not yet picked up by the viewer.
type pending struct {
	emissive     *float32
	ssaoEnabled  *bool
	ssaoKernel   *uint32
	ssaoRadius   *float32
	ssaoStrength *float32
	toneMap      *metadata.ToneMapMode
	output       *metadata.OutputMode
}

type modelInfo struct {
	id   string
	meta *assets.Metadata
}

// Overlay is the heads-up display. It turns key presses into setting and
// playback requests and draws a text panel as solid rectangles.
type Overlay struct {
	font    Font
	scale   int
	visible bool

	settings metadata.Settings
	pending  pending
	controls AnimationControls
	speed    float32
	reset    bool

	model    *modelInfo
	playback *assets.Playback
	eye      math.Vec3
	distance float32
	fps      float64
	frameMs  float64

	cursorX, cursorY float32
	lines            []string
	panel            image.Rectangle
}

func NewOverlay(font Font, scale int, visible bool, settings metadata.Settings) *Overlay {
	if scale < 1 {
		scale = 1
	}
	return &Overlay{
		font:     font,
		scale:    scale,
		visible:  visible,
		settings: settings,
		speed:    1,
	}
}

// HandleEvent reacts to one window event.
func (o *Overlay) HandleEvent(e core.EventContext) {
	switch e.Type {
	case core.EVENT_CODE_MOUSE_MOVED:
		me := e.Data.(*core.MouseEvent)
		o.cursorX, o.cursorY = me.PosX, me.PosY
	case core.EVENT_CODE_KEY_PRESSED:
		o.onKey(e.Data.(*core.KeyEvent).KeyCode)
	}
}

func (o *Overlay) onKey(key core.KeyCode) {
	s := &o.settings
	switch key {
	case core.KEY_T:
		s.ToneMapMode = s.ToneMapMode.Next()
		v := s.ToneMapMode
		o.pending.toneMap = &v
	case core.KEY_O:
		s.OutputMode = s.OutputMode.Next()
		v := s.OutputMode
		o.pending.output = &v
	case core.KEY_F:
		s.SSAOEnabled = !s.SSAOEnabled
		v := s.SSAOEnabled
		o.pending.ssaoEnabled = &v
	case core.KEY_LBRACKET, core.KEY_RBRACKET:
		step := SSAO_RADIUS_STEP
		if key == core.KEY_LBRACKET {
			step = -step
		}
		s.SSAORadius = math.Clamp(s.SSAORadius+step, metadata.MIN_SSAO_RADIUS, metadata.MAX_SSAO_RADIUS)
		v := s.SSAORadius
		o.pending.ssaoRadius = &v
	case core.KEY_MINUS, core.KEY_PLUS:
		step := SSAO_STRENGTH_STEP
		if key == core.KEY_MINUS {
			step = -step
		}
		s.SSAOStrength = math.Clamp(s.SSAOStrength+step, metadata.MIN_SSAO_STRENGTH, metadata.MAX_SSAO_STRENGTH)
		v := s.SSAOStrength
		o.pending.ssaoStrength = &v
	case core.KEY_K:
		s.SSAOKernelSize = nextKernelSize(s.SSAOKernelSize)
		v := s.SSAOKernelSize
		o.pending.ssaoKernel = &v
	case core.KEY_Q, core.KEY_E:
		step := EMISSIVE_STEP
		if key == core.KEY_Q {
			step = -step
		}
		s.EmissiveIntensity = math.Clamp(s.EmissiveIntensity+step, metadata.MIN_EMISSIVE_INTENSITY, metadata.MAX_EMISSIVE_INTENSITY)
		v := s.EmissiveIntensity
		o.pending.emissive = &v
	case core.KEY_SPACE:
		o.controls.Toggle = true
	case core.KEY_S:
		o.controls.Stop = true
	case core.KEY_BACKSPACE:
		o.controls.Reset = true
	case core.KEY_L:
		o.controls.ToggleMode = true
	case core.KEY_N:
		o.controls.Next = true
	case core.KEY_COMMA:
		o.speed = math.Clamp(o.speed-ANIMATION_SPEED_STEP, MIN_ANIMATION_SPEED, MAX_ANIMATION_SPEED)
	case core.KEY_PERIOD:
		o.speed = math.Clamp(o.speed+ANIMATION_SPEED_STEP, MIN_ANIMATION_SPEED, MAX_ANIMATION_SPEED)
	case core.KEY_C:
		o.reset = true
	case core.KEY_H:
		o.visible = !o.visible
	}
}

func nextKernelSize(current uint32) uint32 {
	sizes := metadata.SSAOKernelSizes
	for i, s := range sizes {
		if s == current {
			return sizes[(i+1)%len(sizes)]
		}
	}
	return sizes[0]
}

func (o *Overlay) NewEmissiveIntensity() (float32, bool) {
	return take(&o.pending.emissive)
}

func (o *Overlay) NewSSAOEnabled() (bool, bool) {
	return take(&o.pending.ssaoEnabled)
}

func (o *Overlay) NewSSAOKernelSize() (uint32, bool) {
	return take(&o.pending.ssaoKernel)
}

func (o *Overlay) NewSSAORadius() (float32, bool) {
	return take(&o.pending.ssaoRadius)
}

func (o *Overlay) NewSSAOStrength() (float32, bool) {
	return take(&o.pending.ssaoStrength)
}

func (o *Overlay) NewToneMapMode() (metadata.ToneMapMode, bool) {
	return take(&o.pending.toneMap)
}

func (o *Overlay) NewOutputMode() (metadata.OutputMode, bool) {
	return take(&o.pending.output)
}

func take[T any](p **T) (T, bool) {
	var zero T
	if *p == nil {
		return zero, false
	}
	v := **p
	*p = nil
	return v, true
}

// TakeAnimationControls returns and clears the playback requests.
func (o *Overlay) TakeAnimationControls() AnimationControls {
	c := o.controls
	o.controls = AnimationControls{}
	return c
}

func (o *Overlay) AnimationSpeed() float32 {
	return o.speed
}

// ShouldResetCamera is true once per request.
func (o *Overlay) ShouldResetCamera() bool {
	r := o.reset
	o.reset = false
	return r
}

// WantsPointer reports whether the cursor is over the visible panel.
func (o *Overlay) WantsPointer() bool {
	if !o.visible {
		return false
	}
	return image.Pt(int(o.cursorX), int(o.cursorY)).In(o.panel)
}

func (o *Overlay) Visible() bool {
	return o.visible
}

// SetModelMetadata shows the active model; nil clears it.
func (o *Overlay) SetModelMetadata(id string, meta *assets.Metadata) {
	if meta == nil {
		o.model = nil
		o.playback = nil
		return
	}
	o.model = &modelInfo{id: id, meta: meta}
}

// SetPlayback snapshots the animation cursor shown in the panel.
func (o *Overlay) SetPlayback(p *assets.Playback) {
	if p == nil {
		o.playback = nil
		return
	}
	snapshot := *p
	o.playback = &snapshot
}

func (o *Overlay) SetCamera(eye math.Vec3, distance float32) {
	o.eye = eye
	o.distance = distance
}

func (o *Overlay) SetFrameStats(fps, frameMs float64) {
	o.fps = fps
	o.frameMs = frameMs
}

// PrepareFrame builds the panel text and its bounds for this frame.
func (o *Overlay) PrepareFrame() {
	o.lines = o.lines[:0]
	if !o.visible {
		o.panel = image.Rectangle{}
		return
	}
	o.lines = append(o.lines, fmt.Sprintf("%.0f fps  %.2f ms", o.fps, o.frameMs))
	if o.model == nil {
		o.lines = append(o.lines, "no model: drop a .gltf or .glb file")
	} else {
		m := o.model.meta
		name := m.Name
		if name == "" {
			name = "unnamed"
		}
		id := o.model.id
		if len(id) > 8 {
			id = id[:8]
		}
		o.lines = append(o.lines,
			fmt.Sprintf("model %s [%s]", name, id),
			fmt.Sprintf("meshes %d  prims %d  mats %d  tex %d", m.Meshes, m.Primitives, len(m.Materials), m.Textures),
		)
		if o.playback != nil {
			if anim, ok := o.playback.Animation(); ok {
				o.lines = append(o.lines, fmt.Sprintf("anim %s %.2f/%.2fs %s %s x%.2f",
					anim.Name, o.playback.Time, anim.Duration, o.playback.State, o.playback.Mode, o.speed))
			}
		}
	}
	s := o.settings
	ssao := "off"
	if s.SSAOEnabled {
		ssao = "on"
	}
	o.lines = append(o.lines,
		fmt.Sprintf("tone map %s  output %s", s.ToneMapMode, s.OutputMode),
		fmt.Sprintf("ssao %s  kernel %d  radius %.2f  strength %.1f", ssao, s.SSAOKernelSize, s.SSAORadius, s.SSAOStrength),
		fmt.Sprintf("emissive %.0f", s.EmissiveIntensity),
		fmt.Sprintf("camera %.2f  eye %.2f %.2f %.2f", o.distance, o.eye.X, o.eye.Y, o.eye.Z),
		"H hide  C camera  T/O modes",
	)

	width := 0
	for _, l := range o.lines {
		if w := TextWidth(o.font, l); w > width {
			width = w
		}
	}
	margin := DEFAULT_OVERLAY_MARGIN * o.scale
	pad := DEFAULT_OVERLAY_PAD * o.scale
	height := len(o.lines) * o.font.LineHeight()
	o.panel = image.Rect(margin, margin, margin+width*o.scale+2*pad, margin+height*o.scale+2*pad)
}

// Render emits the panel for a framebuffer of the given extent. Geometry
// outside the extent is dropped.
func (o *Overlay) Render(extent driver.Extent2D) metadata.DrawData {
	var dd metadata.DrawData
	if !o.visible || len(o.lines) == 0 {
		return dd
	}
	bounds := image.Rect(0, 0, int(extent.Width), int(extent.Height))
	add := func(r image.Rectangle, color [4]float32) {
		r = r.Intersect(bounds)
		if r.Empty() {
			return
		}
		dd.Add(metadata.Rect{
			X:      int32(r.Min.X),
			Y:      int32(r.Min.Y),
			Width:  uint32(r.Dx()),
			Height: uint32(r.Dy()),
			Color:  color,
		})
	}

	add(o.panel, panelColor)
	pad := DEFAULT_OVERLAY_PAD * o.scale
	lineHeight := o.font.LineHeight() * o.scale
	for i, line := range o.lines {
		color := textColor
		if i == len(o.lines)-1 {
			color = hintColor
		}
		penX := o.panel.Min.X + pad
		penY := o.panel.Min.Y + pad + i*lineHeight
		for _, r := range line {
			g := o.font.Glyph(r)
			for _, b := range g.Boxes {
				add(image.Rect(
					penX+b.Min.X*o.scale, penY+b.Min.Y*o.scale,
					penX+b.Max.X*o.scale, penY+b.Max.Y*o.scale,
				), color)
			}
			penX += g.Advance * o.scale
		}
	}
	return dd
}
