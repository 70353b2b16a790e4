package layout

import (
	"github.com/wudi/invoicekit/builder"
	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/ir/semantic"
)

// A4 page size in points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// Align positions a line inside its text box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle selects the face and size used to measure and draw text.
type TextStyle struct {
	Font    string
	Size    float64
	LineGap float64 // extra space added below every line
	Color   builder.Color
}

// TextBox bounds a block of text. A zero Width disables wrapping.
type TextBox struct {
	Style TextStyle
	Width float64
	Align Align
}

// Measurer reports the height text occupies when wrapped to maxWidth. It is
// the same computation Canvas.Text uses to draw.
type Measurer interface {
	HeightOfString(text string, maxWidth float64, style TextStyle) (float64, error)
}

var _ Measurer = (*Canvas)(nil)

// Canvas draws in top-down coordinates (origin top-left, y grows downward)
// over a PDF builder. One Canvas serves one document.
type Canvas struct {
	b        builder.PDFBuilder
	registry *fonts.Registry
	page     builder.PageBuilder
	width    float64
	height   float64
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithPageSize sets the dimensions of every page.
func WithPageSize(width, height float64) Option {
	return func(c *Canvas) {
		c.width = width
		c.height = height
	}
}

// WithFonts resolves font names against r instead of the default registry.
func WithFonts(r *fonts.Registry) Option {
	return func(c *Canvas) {
		c.registry = r
	}
}

// NewCanvas creates a canvas holding one empty page.
func NewCanvas(opts ...Option) *Canvas {
	c := &Canvas{
		width:  A4Width,
		height: A4Height,
	}
	for _, opt := range opts {
		opt(c)
	}
	var bopts []builder.Option
	if c.registry != nil {
		bopts = append(bopts, builder.WithFonts(c.registry))
	}
	c.b = builder.NewBuilder(bopts...)
	c.AddPage()
	return c
}

// AddPage appends a page; subsequent drawing goes to it.
func (c *Canvas) AddPage() {
	if c.page != nil {
		c.page.Finish()
	}
	c.page = c.b.NewPage(c.width, c.height)
}

func (c *Canvas) PageCount() int  { return c.b.PageCount() }
func (c *Canvas) Width() float64  { return c.width }
func (c *Canvas) Height() float64 { return c.height }

// SetInfo sets the document information dictionary.
func (c *Canvas) SetInfo(info *semantic.DocumentInfo) { c.b.SetInfo(info) }

// SetLanguage sets the natural language of the document text.
func (c *Canvas) SetLanguage(lang string) { c.b.SetLanguage(lang) }

// Rect fills the rectangle whose top-left corner is (x, y).
func (c *Canvas) Rect(x, y, w, h float64, fill builder.Color) {
	c.page.DrawRectangle(x, c.height-y-h, w, h, builder.RectOptions{
		Fill:      true,
		FillColor: fill,
	})
}

// Line strokes a straight line.
func (c *Canvas) Line(x1, y1, x2, y2, width float64, color builder.Color) {
	c.page.DrawLine(x1, c.height-y1, x2, c.height-y2, builder.LineOptions{
		StrokeColor: color,
		LineWidth:   width,
	})
}

// Text draws text with the top of its first line at y, wrapping and
// aligning it inside box. It returns the height consumed, which equals
// HeightOfString for the same input.
func (c *Canvas) Text(text string, x, y float64, box TextBox) (float64, error) {
	face, err := c.b.Face(box.Style.Font)
	if err != nil {
		return 0, err
	}
	lines, err := wrap(face, text, box.Width, box.Style.Size)
	if err != nil {
		return 0, err
	}
	step := lineStep(face, box.Style)
	ascent := face.Metrics().Ascent * box.Style.Size / 1000
	opts := builder.TextOptions{
		Font:     box.Style.Font,
		FontSize: box.Style.Size,
		Color:    box.Style.Color,
	}
	for i, line := range lines {
		if line == "" {
			continue
		}
		lx := x
		if box.Width > 0 && box.Align != AlignLeft {
			w, err := c.b.MeasureText(line, box.Style.Size, box.Style.Font)
			if err != nil {
				return 0, err
			}
			switch box.Align {
			case AlignCenter:
				lx += (box.Width - w) / 2
			case AlignRight:
				lx += box.Width - w
			}
		}
		baseline := y + float64(i)*step + ascent
		c.page.DrawText(line, lx, c.height-baseline, opts)
	}
	return float64(len(lines)) * step, c.b.Err()
}

// Wrap breaks text into the lines Text would draw.
func (c *Canvas) Wrap(text string, maxWidth float64, style TextStyle) ([]string, error) {
	face, err := c.b.Face(style.Font)
	if err != nil {
		return nil, err
	}
	return wrap(face, text, maxWidth, style.Size)
}

// HeightOfString implements Measurer.
func (c *Canvas) HeightOfString(text string, maxWidth float64, style TextStyle) (float64, error) {
	face, err := c.b.Face(style.Font)
	if err != nil {
		return 0, err
	}
	lines, err := wrap(face, text, maxWidth, style.Size)
	if err != nil {
		return 0, err
	}
	return float64(len(lines)) * lineStep(face, style), nil
}

// Finish completes the document. Any drawing failure recorded since the
// canvas was created is returned here.
func (c *Canvas) Finish() (*semantic.Document, error) {
	if c.page != nil {
		c.page.Finish()
	}
	return c.b.Build()
}

func lineStep(face fonts.Face, style TextStyle) float64 {
	return face.Metrics().LineHeight(style.Size) + style.LineGap
}
