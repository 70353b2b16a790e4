package fonts

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	gtfont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/invoicekit/ir/semantic"
)

// TrueTypeFace is an embedded TrueType font drawn as Type0/Identity-H, so
// glyph ids are written directly as two-byte codes.
type TrueTypeFace struct {
	name     string
	metrics  Metrics
	widths   map[int]int
	resource *semantic.Font
	data     []byte

	// parsed shaping faces; a go-text face caches per-glyph state and must
	// not be shared between goroutines
	faces sync.Pool
}

// LoadTrueType parses a TrueType/OpenType font, extracts basic metrics, and
// returns a face whose resource embeds the full font as a FontFile2 stream.
// The writer may subset it to the glyphs a document uses.
func LoadTrueType(name string, data []byte) (*TrueTypeFace, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	// validate the shaping side once; the pool re-parses on demand
	shapeFace, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse truetype for shaping: %w", err)
	}

	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		baseName = ps
	}
	if baseName == "" {
		baseName = "CustomTT"
	}

	widths := glyphWidths(font, buf, unitsPerEm, ppem)
	defaultWidth := widths[0]
	if defaultWidth == 0 {
		defaultWidth = 1000
	}

	m, err := font.Metrics(buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("truetype metrics: %w", err)
	}
	bounds, _ := font.Bounds(buf, ppem, xfont.HintingNone)
	metrics := Metrics{
		Ascent:  scaleFixed(m.Ascent, unitsPerEm),
		Descent: -scaleFixed(m.Descent, unitsPerEm),
	}
	// sfnt reports Height as the baseline-to-baseline distance
	metrics.LineGap = math.Max(0, scaleFixed(m.Height, unitsPerEm)-metrics.Ascent+metrics.Descent)

	descriptor := &semantic.FontDescriptor{
		FontName:    baseName,
		Flags:       32, // nonsymbolic
		ItalicAngle: italicAngle(font),
		Ascent:      metrics.Ascent,
		Descent:     metrics.Descent,
		CapHeight:   scaleFixed(m.CapHeight, unitsPerEm),
		StemV:       80,
		FontBBox: [4]float64{
			scaleFixed(bounds.Min.X, unitsPerEm),
			-scaleFixed(bounds.Max.Y, unitsPerEm),
			scaleFixed(bounds.Max.X, unitsPerEm),
			-scaleFixed(bounds.Min.Y, unitsPerEm),
		},
		FontFile:     data,
		FontFileType: "FontFile2",
	}

	f := &TrueTypeFace{
		name:    baseName,
		metrics: metrics,
		widths:  widths,
		data:    data,
		resource: &semantic.Font{
			Subtype:  "Type0",
			BaseFont: baseName,
			Encoding: "Identity-H",
			DescendantFont: &semantic.CIDFont{
				Subtype:    "CIDFontType2",
				BaseFont:   baseName,
				DW:         defaultWidth,
				W:          widths,
				Descriptor: descriptor,
			},
			Descriptor: descriptor,
		},
	}
	f.faces.New = func() any {
		face, err := gtfont.ParseTTF(bytes.NewReader(f.data))
		if err != nil {
			return nil
		}
		return face
	}
	f.faces.Put(shapeFace)
	return f, nil
}

func (f *TrueTypeFace) BaseFont() string         { return f.name }
func (f *TrueTypeFace) Metrics() Metrics         { return f.metrics }
func (f *TrueTypeFace) Composite() bool          { return true }
func (f *TrueTypeFace) Resource() *semantic.Font { return f.resource }

// Layout shapes text with HarfBuzz. Glyph advances come from shaping, so
// kerning is part of the measured width; Width keeps the hmtx advance the
// PDF viewer would use without adjustment.
func (f *TrueTypeFace) Layout(text string) (Run, error) {
	if !utf8.ValidString(text) {
		return Run{}, ErrInvalidText
	}
	if text == "" {
		return Run{}, nil
	}
	face, _ := f.faces.Get().(*gtfont.Face)
	if face == nil {
		return Run{}, fmt.Errorf("font %s: shaping face unavailable", f.name)
	}
	defer f.faces.Put(face)

	runes := []rune(strings.ReplaceAll(text, "\t", " "))
	shaped := shapeRunes(face, runes)
	run := Run{Glyphs: make([]Glyph, 0, len(shaped))}
	for _, g := range shaped {
		w := float64(f.widths[g.ID])
		run.Glyphs = append(run.Glyphs, Glyph{ID: g.ID, Advance: g.XAdvance, Width: w, Runes: g.Runes})
		run.Width += g.XAdvance
	}
	return run, nil
}

func glyphWidths(font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) map[int]int {
	glyphs := font.NumGlyphs()
	widths := make(map[int]int, glyphs)
	for i := 0; i < glyphs; i++ {
		adv, err := font.GlyphAdvance(buf, sfnt.GlyphIndex(i), ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		widths[i] = int(math.Round(scaleFixed(adv, unitsPerEm)))
	}
	return widths
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}
