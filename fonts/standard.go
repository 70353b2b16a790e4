package fonts

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/invoicekit/ir/semantic"
)

// Standard 14 font names provided without embedding.
const (
	Helvetica            = "Helvetica"
	HelveticaBold        = "Helvetica-Bold"
	HelveticaOblique     = "Helvetica-Oblique"
	HelveticaBoldOblique = "Helvetica-BoldOblique"
)

// AFM advance widths for WinAnsi codes 32..126, sixteen per row.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

// Widths of WinAnsi characters above 126 that do not decompose to an ASCII
// base letter.
var helveticaExtra = map[rune]int{
	'€': 556, '‚': 222, 'ƒ': 556, '„': 333, '…': 1000, '†': 556, '‡': 556, 'ˆ': 333,
	'‰': 1000, '‹': 333, 'Œ': 1000, '‘': 222, '’': 222, '“': 333, '”': 333, '•': 350,
	'–': 556, '—': 1000, '˜': 333, '™': 1000, '›': 333, 'œ': 944, '\u00a0': 278, '¡': 333,
	'¢': 556, '£': 556, '¤': 556, '¥': 556, '¦': 260, '§': 556, '¨': 333, '©': 737,
	'ª': 370, '«': 556, '¬': 584, '\u00ad': 333, '®': 737, '¯': 333, '°': 400, '±': 584,
	'²': 333, '³': 333, '´': 333, 'µ': 556, '¶': 537, '·': 278, '¸': 333, '¹': 333,
	'º': 365, '»': 556, '¼': 834, '½': 834, '¾': 834, '¿': 611, 'Æ': 1000, 'Ð': 722,
	'×': 584, 'Ø': 778, 'Þ': 667, 'ß': 611, 'æ': 889, 'ð': 556, '÷': 584, 'ø': 611,
	'þ': 556,
}

var helveticaBoldExtra = map[rune]int{
	'€': 556, '‚': 278, 'ƒ': 556, '„': 500, '…': 1000, '†': 556, '‡': 556, 'ˆ': 333,
	'‰': 1000, '‹': 333, 'Œ': 1000, '‘': 278, '’': 278, '“': 500, '”': 500, '•': 350,
	'–': 556, '—': 1000, '˜': 333, '™': 1000, '›': 333, 'œ': 944, '\u00a0': 278, '¡': 333,
	'¢': 556, '£': 556, '¤': 556, '¥': 556, '¦': 280, '§': 556, '¨': 333, '©': 737,
	'ª': 370, '«': 556, '¬': 584, '\u00ad': 333, '®': 737, '¯': 333, '°': 400, '±': 584,
	'²': 333, '³': 333, '´': 333, 'µ': 611, '¶': 556, '·': 278, '¸': 333, '¹': 333,
	'º': 365, '»': 556, '¼': 834, '½': 834, '¾': 834, '¿': 611, 'Æ': 1000, 'Ð': 722,
	'×': 584, 'Ø': 778, 'Þ': 667, 'ß': 611, 'æ': 889, 'ð': 611, '÷': 584, 'ø': 611,
	'þ': 611,
}

const (
	fallbackCode  = '?'
	fallbackWidth = 556
)

// StandardFace is one of the Helvetica family fonts every PDF reader
// provides. Text is encoded as WinAnsi; runes outside it become '?'.
type StandardFace struct {
	name     string
	widths   *[95]int
	extra    map[rune]int
	metrics  Metrics
	resource *semantic.Font
}

// NewStandardFace returns the face for a Helvetica family name.
func NewStandardFace(name string) (*StandardFace, error) {
	f := &StandardFace{name: name}
	switch name {
	case Helvetica, HelveticaOblique:
		f.widths, f.extra = &helveticaWidths, helveticaExtra
		f.metrics = Metrics{Ascent: 718, Descent: -207, LineGap: 231}
	case HelveticaBold, HelveticaBoldOblique:
		f.widths, f.extra = &helveticaBoldWidths, helveticaBoldExtra
		f.metrics = Metrics{Ascent: 718, Descent: -207, LineGap: 265}
	default:
		return nil, ErrUnknownFont
	}
	f.resource = f.buildResource()
	return f, nil
}

func (f *StandardFace) BaseFont() string         { return f.name }
func (f *StandardFace) Metrics() Metrics         { return f.metrics }
func (f *StandardFace) Composite() bool          { return false }
func (f *StandardFace) Resource() *semantic.Font { return f.resource }

// Layout encodes text as WinAnsi codes.
func (f *StandardFace) Layout(text string) (Run, error) {
	if !utf8.ValidString(text) {
		return Run{}, ErrInvalidText
	}
	run := Run{Glyphs: make([]Glyph, 0, len(text))}
	for _, r := range text {
		code := f.code(r)
		w := float64(f.codeWidth(code))
		run.Glyphs = append(run.Glyphs, Glyph{ID: int(code), Advance: w, Width: w, Runes: []rune{r}})
		run.Width += w
	}
	return run, nil
}

func (f *StandardFace) code(r rune) byte {
	if r == '\t' {
		return ' '
	}
	if r < 0x20 {
		return fallbackCode
	}
	b, ok := charmap.Windows1252.EncodeRune(r)
	if !ok {
		return fallbackCode
	}
	return b
}

func (f *StandardFace) codeWidth(code byte) int {
	if code >= 32 && code <= 126 {
		return f.widths[code-32]
	}
	r := charmap.Windows1252.DecodeByte(code)
	if w, ok := f.extra[r]; ok {
		return w
	}
	// Accented letters take the width of their base letter.
	if base, _ := utf8.DecodeRuneInString(norm.NFD.String(string(r))); base >= 32 && base <= 126 {
		return f.widths[base-32]
	}
	return fallbackWidth
}

func (f *StandardFace) buildResource() *semantic.Font {
	widths := make(map[int]int, 224)
	for c := 32; c <= 255; c++ {
		widths[c] = f.codeWidth(byte(c))
	}
	return &semantic.Font{
		Subtype:  "Type1",
		BaseFont: f.name,
		Encoding: "WinAnsiEncoding",
		Widths:   widths,
		Descriptor: &semantic.FontDescriptor{
			FontName: f.name,
			Ascent:   f.metrics.Ascent,
			Descent:  f.metrics.Descent,
		},
	}
}
