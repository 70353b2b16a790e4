package layout

// Cursor tracks the vertical write position of a flow layout. It is the
// only component that starts new pages.
type Cursor struct {
	canvas       *Canvas
	y            float64
	margin       float64
	bottomMargin float64
	breaks       int
}

// NewCursor starts at y on the canvas's current page. margin is the top
// margin used after a page break. Content may run to the page bottom until
// ReserveFooterBand is called.
func NewCursor(canvas *Canvas, y, margin float64) *Cursor {
	return &Cursor{
		canvas: canvas,
		y:      y,
		margin: margin,
	}
}

func (c *Cursor) Position() float64      { return c.y }
func (c *Cursor) Advance(amount float64) { c.y += amount }
func (c *Cursor) SetPosition(y float64)  { c.y = y }
func (c *Cursor) Breaks() int            { return c.breaks }

// Available returns the writable height left on the current page.
func (c *Cursor) Available() float64 {
	return c.canvas.Height() - c.bottomMargin - c.y
}

// EnsureSpace starts a new page when required does not fit above the bottom
// margin and reports whether it did.
func (c *Cursor) EnsureSpace(required float64) bool {
	if c.y+required <= c.canvas.Height()-c.bottomMargin {
		return false
	}
	c.canvas.AddPage()
	c.y = c.margin
	c.breaks++
	return true
}

// ReserveFooterBand keeps a band of height at the page bottom free of flow
// content.
func (c *Cursor) ReserveFooterBand(height float64) {
	c.bottomMargin = c.margin + height + 20
}
