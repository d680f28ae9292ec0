package metadata

// Rect is a solid rectangle in framebuffer pixels, origin top-left.
type Rect struct {
	X, Y          int32
	Width, Height uint32
	Color         [4]float32
}

// DrawData is everything the overlay pass draws for one frame.
type DrawData struct {
	Rects []Rect
}

func (d *DrawData) Add(r Rect) {
	if r.Width == 0 || r.Height == 0 {
		return
	}
	d.Rects = append(d.Rects, r)
}

func (d DrawData) Empty() bool {
	return len(d.Rects) == 0
}
