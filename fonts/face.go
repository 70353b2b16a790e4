package fonts

import (
	"errors"

	"github.com/wudi/invoicekit/ir/semantic"
)

var (
	// ErrUnknownFont is returned when a font name is not registered.
	ErrUnknownFont = errors.New("unknown font")
	// ErrInvalidText is returned for text that is not valid UTF-8.
	ErrInvalidText = errors.New("invalid text")
)

// Metrics are vertical font metrics in 1/1000 em.
type Metrics struct {
	Ascent  float64
	Descent float64 // negative below the baseline
	LineGap float64
}

// LineHeight returns the distance between baselines at size, excluding any
// extra gap the caller adds.
func (m Metrics) LineHeight(size float64) float64 {
	return size * (m.Ascent - m.Descent + m.LineGap) / 1000
}

// Glyph is one positioned glyph of a laid out run.
type Glyph struct {
	ID      int     // glyph id (composite faces) or WinAnsi code
	Advance float64 // shaped advance in 1/1000 em
	Width   float64 // advance recorded in the font's width table
	Runes   []rune  // source text this glyph stands for
}

// Run is text prepared for drawing with one face.
type Run struct {
	Glyphs []Glyph
	Width  float64 // sum of advances in 1/1000 em
}

// WidthAt returns the advance of the run at size in user space units.
func (r Run) WidthAt(size float64) float64 { return r.Width * size / 1000 }

// Face measures and encodes text for one font. Implementations are safe for
// concurrent use.
type Face interface {
	// BaseFont is the PostScript name written into the PDF.
	BaseFont() string
	Metrics() Metrics
	// Layout maps text to glyphs. It fails with ErrInvalidText when text is
	// not valid UTF-8.
	Layout(text string) (Run, error)
	// Composite reports whether codes are two-byte glyph ids (Type0).
	Composite() bool
	// Resource returns the font resource template. Callers must copy it
	// before attaching per-document state.
	Resource() *semantic.Font
}

// Encode returns the bytes a content stream shows for run.
func Encode(f Face, run Run) []byte {
	if !f.Composite() {
		out := make([]byte, len(run.Glyphs))
		for i, g := range run.Glyphs {
			out[i] = byte(g.ID)
		}
		return out
	}
	out := make([]byte, 0, 2*len(run.Glyphs))
	for _, g := range run.Glyphs {
		out = append(out, byte(g.ID>>8), byte(g.ID))
	}
	return out
}

// MeasureString returns the advance of text at size.
func MeasureString(f Face, text string, size float64) (float64, error) {
	run, err := f.Layout(text)
	if err != nil {
		return 0, err
	}
	return run.WidthAt(size), nil
}
