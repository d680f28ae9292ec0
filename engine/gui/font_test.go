package gui

import (
	"testing"

	"github.com/fzipp/bmfont"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicFontGlyph(t *testing.T) {
	f := NewBasicFont()
	assert.Equal(t, 13, f.LineHeight())

	g := f.Glyph('A')
	assert.Equal(t, 7, g.Advance)
	require.NotEmpty(t, g.Boxes)
	for _, b := range g.Boxes {
		assert.Equal(t, 1, b.Dy())
		assert.True(t, b.Min.X >= 0 && b.Max.X <= 7, "box %v outside cell", b)
		assert.True(t, b.Min.Y >= 0 && b.Max.Y <= 13, "box %v outside line", b)
	}

	space := f.Glyph(' ')
	assert.Equal(t, 7, space.Advance)
	assert.Empty(t, space.Boxes)

	// cached copy is the same geometry
	assert.Equal(t, g, f.Glyph('A'))
}

func TestBitmapFontGlyph(t *testing.T) {
	desc := &bmfont.Descriptor{
		Common: bmfont.Common{LineHeight: 18, Base: 14},
		Chars: map[rune]bmfont.Char{
			'A': {ID: 'A', X: 0, Y: 0, Width: 8, Height: 10, XOffset: 1, YOffset: 4, XAdvance: 9},
			'?': {ID: '?', X: 9, Y: 0, Width: 6, Height: 10, XOffset: 0, YOffset: 4, XAdvance: 7},
			' ': {ID: ' ', XAdvance: 5},
		},
	}
	f := NewBitmapFont(desc)
	assert.Equal(t, 18, f.LineHeight())

	g := f.Glyph('A')
	assert.Equal(t, 9, g.Advance)
	require.Len(t, g.Boxes, 1)
	assert.Equal(t, 1, g.Boxes[0].Min.X)
	assert.Equal(t, 4, g.Boxes[0].Min.Y)
	assert.Equal(t, 8, g.Boxes[0].Dx())
	assert.Equal(t, 10, g.Boxes[0].Dy())

	assert.Empty(t, f.Glyph(' ').Boxes)
	assert.Equal(t, 7, f.Glyph('Z').Advance, "missing glyphs fall back to '?'")
	assert.Equal(t, 9+5+9, TextWidth(f, "A A"))
}
