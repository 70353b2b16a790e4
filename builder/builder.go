package builder

import (
	"errors"
	"fmt"
	"math"

	"github.com/wudi/invoicekit/contentstream"
	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/ir/semantic"
)

// ErrInvalidGeometry is recorded when a drawing call receives NaN, infinite
// or negative extents.
var ErrInvalidGeometry = errors.New("invalid geometry")

// PDFBuilder provides a fluent API for PDF construction. Drawing calls do
// not return errors; the first failure is kept and reported by Build.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	SetLanguage(lang string) PDFBuilder
	// Face resolves a font name against the builder's registry.
	Face(name string) (fonts.Face, error)
	// MeasureText returns the advance of text in user space units.
	MeasureText(text string, fontSize float64, fontName string) (float64, error)
	PageCount() int
	Err() error
	Build() (*semantic.Document, error)
}

// PageBuilder provides a fluent API for page construction. Coordinates are
// PDF user space: origin bottom-left, y grows upward, x/y of text is the
// baseline origin.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	Page() *semantic.Page
	Finish() PDFBuilder
}

// TextOptions configures text drawing.
type TextOptions struct {
	Font     string
	FontSize float64
	Color    Color
}

// PathOptions configures path drawing.
type PathOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	LineCap     contentstream.LineCap
	LineJoin    contentstream.LineJoin
	DashPattern []float64
	DashPhase   float64
	Fill        bool
	Stroke      bool
}

// RectOptions configures rectangle drawing (defaults to stroke if neither fill nor stroke is set).
type RectOptions = PathOptions

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
	LineCap     contentstream.LineCap
	DashPattern []float64
	DashPhase   float64
}

// Color represents an RGB color with components in [0,1].
type Color struct {
	R, G, B float64
}

// RGB255 builds a Color from 8-bit components.
func RGB255(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

type fontResource struct {
	key  string
	face fonts.Face
	font *semantic.Font
}

type builderImpl struct {
	pages    []*semantic.Page
	info     *semantic.DocumentInfo
	lang     string
	registry *fonts.Registry
	fonts    map[string]*fontResource
	err      error
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *semantic.Page
}

const defaultFontName = fonts.Helvetica

// Option configures a builder.
type Option func(*builderImpl)

// WithFonts resolves font names against r instead of a fresh registry.
func WithFonts(r *fonts.Registry) Option {
	return func(b *builderImpl) {
		if r != nil {
			b.registry = r
		}
	}
}

// NewBuilder constructs a PDFBuilder.
func NewBuilder(opts ...Option) PDFBuilder {
	b := &builderImpl{fonts: make(map[string]*fontResource)}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = fonts.NewRegistry()
	}
	return b
}

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	if !validExtent(w) || !validExtent(h) || w == 0 || h == 0 {
		b.fail(fmt.Errorf("%w: page size %vx%v", ErrInvalidGeometry, w, h))
	}
	p := &semantic.Page{
		Index:     len(b.pages),
		MediaBox:  semantic.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h},
		Resources: &semantic.Resources{Fonts: make(map[string]*semantic.Font)},
	}
	b.pages = append(b.pages, p)
	return &pageBuilderImpl{parent: b, page: p}
}

func (b *builderImpl) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) SetLanguage(lang string) PDFBuilder {
	b.lang = lang
	return b
}

func (b *builderImpl) Face(name string) (fonts.Face, error) {
	if name == "" {
		name = defaultFontName
	}
	return b.registry.Lookup(name)
}

func (b *builderImpl) MeasureText(text string, fontSize float64, fontName string) (float64, error) {
	face, err := b.Face(fontName)
	if err != nil {
		return 0, err
	}
	return fonts.MeasureString(face, text, fontSize)
}

func (b *builderImpl) PageCount() int { return len(b.pages) }

func (b *builderImpl) Err() error { return b.err }

func (b *builderImpl) Build() (*semantic.Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{
		Pages: b.pages,
		Info:  b.info,
		Lang:  b.lang,
	}, nil
}

func (b *builderImpl) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// fontForName returns the document-level resource for a font, creating it
// on first use. Resource keys are F1, F2, ... in first-use order.
func (b *builderImpl) fontForName(name string) (*fontResource, error) {
	if name == "" {
		name = defaultFontName
	}
	if f, ok := b.fonts[name]; ok {
		return f, nil
	}
	face, err := b.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	res := &fontResource{
		key:  fmt.Sprintf("F%d", len(b.fonts)+1),
		face: face,
		font: documentFont(face),
	}
	b.fonts[name] = res
	return res, nil
}

// documentFont copies the face's resource template for composite fonts,
// which collect ToUnicode entries and may be subset per document.
func documentFont(face fonts.Face) *semantic.Font {
	tmpl := face.Resource()
	if !face.Composite() {
		return tmpl
	}
	font := *tmpl
	font.ToUnicode = make(map[int][]rune)
	if tmpl.Descriptor != nil {
		desc := *tmpl.Descriptor
		font.Descriptor = &desc
	}
	if tmpl.DescendantFont != nil {
		cid := *tmpl.DescendantFont
		cid.Descriptor = font.Descriptor
		font.DescendantFont = &cid
	}
	return &font
}

func (p *pageBuilderImpl) Page() *semantic.Page { return p.page }

func (p *pageBuilderImpl) Finish() PDFBuilder { return p.parent }

func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	if !validCoord(x) || !validCoord(y) || !validExtent(opts.FontSize) {
		p.parent.fail(fmt.Errorf("%w: text at (%v, %v) size %v", ErrInvalidGeometry, x, y, opts.FontSize))
		return p
	}
	res, err := p.parent.fontForName(opts.Font)
	if err != nil {
		p.parent.fail(fmt.Errorf("draw text: %w", err))
		return p
	}
	run, err := res.face.Layout(text)
	if err != nil {
		p.parent.fail(fmt.Errorf("draw text %q: %w", text, err))
		return p
	}
	if len(run.Glyphs) == 0 {
		return p
	}
	p.page.Resources.Fonts[res.key] = res.font
	size := opts.FontSize
	if size == 0 {
		size = 12
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpBeginText})
	*ops = append(*ops, semantic.Operation{
		Operator: contentstream.OpFont,
		Operands: []semantic.Operand{semantic.NameOperand{Value: res.key}, semantic.NumberOperand{Value: size}},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: contentstream.OpTextMatrix,
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: 1},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 1},
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
		},
	})
	p.appendColorOp(ops, opts.Color, false)
	if res.face.Composite() {
		recordToUnicode(res.font, run)
		*ops = append(*ops, semantic.Operation{
			Operator: contentstream.OpShowTextArray,
			Operands: []semantic.Operand{showTextArray(res.face, run)},
		})
	} else {
		*ops = append(*ops, semantic.Operation{
			Operator: contentstream.OpShowText,
			Operands: []semantic.Operand{semantic.StringOperand{Value: fonts.Encode(res.face, run)}},
		})
	}
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpEndText})
	return p
}

// showTextArray emits glyph ids with positioning adjustments so each glyph
// advances by its shaped advance rather than its hmtx width.
func showTextArray(face fonts.Face, run fonts.Run) semantic.ArrayOperand {
	var arr semantic.ArrayOperand
	var pending []byte
	for _, g := range run.Glyphs {
		pending = append(pending, byte(g.ID>>8), byte(g.ID))
		adj := g.Width - g.Advance
		if math.Abs(adj) < 0.001 {
			continue
		}
		arr.Values = append(arr.Values, semantic.StringOperand{Value: pending}, semantic.NumberOperand{Value: adj})
		pending = nil
	}
	if len(pending) > 0 {
		arr.Values = append(arr.Values, semantic.StringOperand{Value: pending})
	}
	return arr
}

func recordToUnicode(font *semantic.Font, run fonts.Run) {
	if font.ToUnicode == nil {
		return
	}
	for _, g := range run.Glyphs {
		if len(g.Runes) == 0 {
			continue
		}
		if _, ok := font.ToUnicode[g.ID]; !ok {
			font.ToUnicode[g.ID] = append([]rune(nil), g.Runes...)
		}
	}
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	if !validCoord(x) || !validCoord(y) || !validExtent(width) || !validExtent(height) {
		p.parent.fail(fmt.Errorf("%w: rectangle (%v, %v, %v, %v)", ErrInvalidGeometry, x, y, width, height))
		return p
	}
	po := opts
	if !po.Stroke && !po.Fill {
		po.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpSave})
	p.applyPathState(ops, po)
	*ops = append(*ops, semantic.Operation{
		Operator: contentstream.OpRect,
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
			semantic.NumberOperand{Value: width},
			semantic.NumberOperand{Value: height},
		},
	})
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(po.Fill, po.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpRestore})
	return p
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	if !validCoord(x1) || !validCoord(y1) || !validCoord(x2) || !validCoord(y2) || !validExtent(opts.LineWidth) {
		p.parent.fail(fmt.Errorf("%w: line (%v, %v)-(%v, %v)", ErrInvalidGeometry, x1, y1, x2, y2))
		return p
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpSave})
	po := PathOptions{
		StrokeColor: opts.StrokeColor,
		LineWidth:   opts.LineWidth,
		LineCap:     opts.LineCap,
		DashPattern: opts.DashPattern,
		DashPhase:   opts.DashPhase,
		Stroke:      true,
	}
	p.applyPathState(ops, po)
	*ops = append(*ops, semantic.Operation{
		Operator: contentstream.OpMoveTo,
		Operands: []semantic.Operand{semantic.NumberOperand{Value: x1}, semantic.NumberOperand{Value: y1}},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: contentstream.OpLineTo,
		Operands: []semantic.Operand{semantic.NumberOperand{Value: x2}, semantic.NumberOperand{Value: y2}},
	})
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpStroke})
	*ops = append(*ops, semantic.Operation{Operator: contentstream.OpRestore})
	return p
}

func (p *pageBuilderImpl) ensureContentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}

func (p *pageBuilderImpl) appendColorOp(ops *[]semantic.Operation, c Color, stroking bool) {
	op := contentstream.OpFillRGB
	if stroking {
		op = contentstream.OpStrokeRGB
	}
	*ops = append(*ops, semantic.Operation{
		Operator: op,
		Operands: colorOperands(c),
	})
}

func (p *pageBuilderImpl) applyPathState(ops *[]semantic.Operation, opts PathOptions) {
	if opts.Fill {
		p.appendColorOp(ops, opts.FillColor, false)
	}
	if opts.Stroke {
		p.appendColorOp(ops, opts.StrokeColor, true)
		if opts.LineWidth > 0 {
			*ops = append(*ops, semantic.Operation{Operator: contentstream.OpLineWidth, Operands: []semantic.Operand{semantic.NumberOperand{Value: opts.LineWidth}}})
		}
		if opts.LineCap != 0 {
			*ops = append(*ops, semantic.Operation{Operator: contentstream.OpLineCap, Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.LineCap)}}})
		}
		if opts.LineJoin != 0 {
			*ops = append(*ops, semantic.Operation{Operator: contentstream.OpLineJoin, Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.LineJoin)}}})
		}
		if len(opts.DashPattern) > 0 {
			vals := make([]semantic.Operand, 0, len(opts.DashPattern))
			for _, v := range opts.DashPattern {
				vals = append(vals, semantic.NumberOperand{Value: v})
			}
			*ops = append(*ops, semantic.Operation{
				Operator: contentstream.OpDash,
				Operands: []semantic.Operand{
					semantic.ArrayOperand{Values: vals},
					semantic.NumberOperand{Value: opts.DashPhase},
				},
			})
		}
	}
}

func colorOperands(c Color) []semantic.Operand {
	return []semantic.Operand{
		semantic.NumberOperand{Value: clamp01(c.R)},
		semantic.NumberOperand{Value: clamp01(c.G)},
		semantic.NumberOperand{Value: clamp01(c.B)},
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func paintOperator(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return contentstream.OpFillStroke
	case fill:
		return contentstream.OpFill
	default:
		return contentstream.OpStroke
	}
}

func validCoord(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func validExtent(v float64) bool { return validCoord(v) && v >= 0 }
