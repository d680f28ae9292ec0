package gui

import (
	"image"
	"sync"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph is the solid geometry of one character. Boxes are relative to the
// top-left of the line at the pen position.
type Glyph struct {
	Advance int
	Boxes   []image.Rectangle
}

// Font turns characters into boxes the overlay pass can clear.
type Font interface {
	LineHeight() int
	Glyph(r rune) Glyph
}

// BasicFont renders the 7x13 fixed font from x/image as horizontal pixel
// runs, one box per run.
type BasicFont struct {
	face *basicfont.Face

	mu    sync.Mutex
	cache map[rune]Glyph
}

func NewBasicFont() *BasicFont {
	return &BasicFont{face: basicfont.Face7x13, cache: make(map[rune]Glyph)}
}

func (f *BasicFont) LineHeight() int {
	return f.face.Height
}

func (f *BasicFont) Glyph(r rune) Glyph {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.cache[r]; ok {
		return g
	}

	dot := fixed.P(0, f.face.Ascent)
	dr, mask, maskp, advance, ok := f.face.Glyph(dot, r)
	if !ok {
		dr, mask, maskp, advance, _ = f.face.Glyph(dot, '?')
	}
	g := Glyph{Advance: advance.Round()}
	for y := 0; y < dr.Dy(); y++ {
		start := -1
		for x := 0; x <= dr.Dx(); x++ {
			solid := false
			if x < dr.Dx() {
				_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
				solid = a >= 0x8000
			}
			switch {
			case solid && start < 0:
				start = x
			case !solid && start >= 0:
				g.Boxes = append(g.Boxes, image.Rect(dr.Min.X+start, dr.Min.Y+y, dr.Min.X+x, dr.Min.Y+y+1))
				start = -1
			}
		}
	}
	f.cache[r] = g
	return g
}

// BitmapFont uses the metrics of an AngelCode BMFont descriptor. Each glyph
// is drawn as its cell box.
type BitmapFont struct {
	desc *bmfont.Descriptor
}

func LoadBitmapFont(path string) (*BitmapFont, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}
	return NewBitmapFont(font.Descriptor), nil
}

func NewBitmapFont(desc *bmfont.Descriptor) *BitmapFont {
	return &BitmapFont{desc: desc}
}

func (f *BitmapFont) LineHeight() int {
	return int(f.desc.Common.LineHeight)
}

func (f *BitmapFont) Glyph(r rune) Glyph {
	ch, ok := f.desc.Chars[r]
	if !ok {
		if ch, ok = f.desc.Chars['?']; !ok {
			return Glyph{Advance: int(f.desc.Common.LineHeight) / 2}
		}
	}
	g := Glyph{Advance: int(ch.XAdvance)}
	if ch.Width > 0 && ch.Height > 0 && r != ' ' {
		x, y := int(ch.XOffset), int(ch.YOffset)
		g.Boxes = []image.Rectangle{image.Rect(x, y, x+int(ch.Width), y+int(ch.Height))}
	}
	return g
}

// TextWidth is the advance of s in unscaled pixels.
func TextWidth(font Font, s string) int {
	w := 0
	for _, r := range s {
		w += font.Glyph(r).Advance
	}
	return w
}
