package builder

import (
	"errors"
	"math"
	"testing"

	"github.com/wudi/invoicekit/contentstream"
	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/ir/semantic"
)

func operators(ops []semantic.Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Operator
	}
	return out
}

func TestBuilder_DrawTextPopulatesResourcesAndOps(t *testing.T) {
	b := NewBuilder()
	b.NewPage(200, 200).
		DrawText("Hello", 10, 20, TextOptions{
			Font:     fonts.HelveticaBold,
			FontSize: 16,
			Color:    Color{R: 0.1, G: 0.2, B: 0.3},
		}).
		Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected one page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	font := page.Resources.Fonts["F1"]
	if font == nil || font.BaseFont != "Helvetica-Bold" {
		t.Fatalf("font not registered on page resources: %+v", page.Resources.Fonts)
	}
	ops := page.Contents[0].Operations
	expectOperators := []string{"BT", "Tf", "Tm", "rg", "Tj", "ET"}
	got := operators(ops)
	if len(got) != len(expectOperators) {
		t.Fatalf("Expected operators %v, got %v", expectOperators, got)
	}
	for i, op := range expectOperators {
		if got[i] != op {
			t.Fatalf("operation %d = %s, want %s", i, got[i], op)
		}
	}
	if tm := ops[2].Operands; tm[4].(semantic.NumberOperand).Value != 10 || tm[5].(semantic.NumberOperand).Value != 20 {
		t.Fatalf("Tm coordinates not set: %+v", tm)
	}
	if tj := ops[4].Operands[0].(semantic.StringOperand); string(tj.Value) != "Hello" {
		t.Fatalf("Tj text mismatch: %q", tj.Value)
	}
}

func TestBuilder_FontKeysInFirstUseOrder(t *testing.T) {
	b := NewBuilder()
	b.NewPage(100, 100).
		DrawText("a", 0, 0, TextOptions{Font: fonts.HelveticaBold, FontSize: 8}).
		DrawText("b", 0, 0, TextOptions{Font: fonts.Helvetica, FontSize: 8}).
		DrawText("c", 0, 0, TextOptions{Font: fonts.HelveticaBold, FontSize: 8})
	b.NewPage(100, 100).DrawText("d", 0, 0, TextOptions{Font: fonts.Helvetica, FontSize: 8})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	first := doc.Pages[0].Resources.Fonts
	if first["F1"].BaseFont != fonts.HelveticaBold || first["F2"].BaseFont != fonts.Helvetica {
		t.Errorf("unexpected font keys on page 1: %v, %v", first["F1"].BaseFont, first["F2"].BaseFont)
	}
	second := doc.Pages[1].Resources.Fonts
	if len(second) != 1 || second["F2"] != first["F2"] {
		t.Errorf("Expected page 2 to share F2 only, got %v", second)
	}
	if doc.Pages[1].Index != 1 {
		t.Errorf("Expected page index 1, got %d", doc.Pages[1].Index)
	}
}

func TestBuilder_CompositeTextUsesGlyphIDs(t *testing.T) {
	b := NewBuilder()
	b.NewPage(300, 100).DrawText("Total", 5, 5, TextOptions{Font: fonts.GoRegular, FontSize: 10})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	ops := doc.Pages[0].Contents[0].Operations
	var tj *semantic.Operation
	for i := range ops {
		if ops[i].Operator == contentstream.OpShowTextArray {
			tj = &ops[i]
		}
	}
	if tj == nil {
		t.Fatalf("Expected TJ for composite font, got %v", operators(ops))
	}
	var n int
	for _, v := range tj.Operands[0].(semantic.ArrayOperand).Values {
		if s, ok := v.(semantic.StringOperand); ok {
			n += len(s.Value)
		}
	}
	if n != 10 {
		t.Errorf("Expected 5 two-byte glyph ids, got %d bytes", n)
	}
	font := doc.Pages[0].Resources.Fonts["F1"]
	if len(font.ToUnicode) != 5 {
		t.Errorf("Expected 5 ToUnicode entries, got %d", len(font.ToUnicode))
	}
	face, _ := fonts.NewRegistry().Lookup(fonts.GoRegular)
	if font == face.Resource() {
		t.Error("Expected a per-document copy of the composite font")
	}
}

func TestBuilder_TextArrayAdjustmentsMatchShapedAdvances(t *testing.T) {
	face, _ := fonts.NewRegistry().Lookup(fonts.GoRegular)
	run, err := face.Layout("AVATAR")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	arr := showTextArray(face, run)
	// drawn advance = sum(W) - sum(adjustments)
	var drawn float64
	for _, v := range arr.Values {
		switch x := v.(type) {
		case semantic.StringOperand:
			for i := 0; i+1 < len(x.Value); i += 2 {
				drawn += float64(face.Resource().DescendantFont.W[int(x.Value[i])<<8|int(x.Value[i+1])])
			}
		case semantic.NumberOperand:
			drawn -= x.Value
		}
	}
	if math.Abs(drawn-run.Width) > 0.01 {
		t.Errorf("Expected drawn advance %v to equal shaped width %v", drawn, run.Width)
	}
}

func TestBuilder_DrawShapes(t *testing.T) {
	b := NewBuilder()
	b.NewPage(100, 100).
		DrawRectangle(10, 20, 30, 40, RectOptions{Fill: true, Stroke: true, FillColor: Color{R: 1}, StrokeColor: Color{B: 1}, LineWidth: 2}).
		DrawLine(0, 0, 5, 5, LineOptions{StrokeColor: Color{G: 1}, LineWidth: 1.5, LineCap: contentstream.LineCapRound, DashPattern: []float64{3, 1}}).
		Finish()

	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	got := operators(doc.Pages[0].Contents[0].Operations)
	want := []string{"q", "rg", "RG", "w", "re", "B", "Q", "q", "RG", "w", "J", "d", "m", "l", "S", "Q"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestBuilder_FillOnlyRectangle(t *testing.T) {
	b := NewBuilder()
	b.NewPage(100, 100).DrawRectangle(0, 0, 10, 10, RectOptions{Fill: true, FillColor: RGB255(79, 70, 229)})
	doc, _ := b.Build()
	ops := doc.Pages[0].Contents[0].Operations
	if got := operators(ops); len(got) != 5 || got[3] != "f" {
		t.Fatalf("Expected q rg re f Q, got %v", got)
	}
	rg := ops[1].Operands
	if v := rg[0].(semantic.NumberOperand).Value; math.Abs(v-79.0/255) > 1e-9 {
		t.Errorf("Expected red component %v, got %v", 79.0/255, v)
	}
}

func TestBuilder_DeferredErrors(t *testing.T) {
	tests := []struct {
		name string
		draw func(p PageBuilder)
		want error
	}{
		{"unknown font", func(p PageBuilder) { p.DrawText("x", 0, 0, TextOptions{Font: "Nope", FontSize: 9}) }, fonts.ErrUnknownFont},
		{"invalid utf8", func(p PageBuilder) { p.DrawText("\xff", 0, 0, TextOptions{FontSize: 9}) }, fonts.ErrInvalidText},
		{"nan text position", func(p PageBuilder) { p.DrawText("x", math.NaN(), 0, TextOptions{FontSize: 9}) }, ErrInvalidGeometry},
		{"negative rect", func(p PageBuilder) { p.DrawRectangle(0, 0, -1, 5, RectOptions{Fill: true}) }, ErrInvalidGeometry},
		{"infinite line", func(p PageBuilder) { p.DrawLine(0, 0, math.Inf(1), 0, LineOptions{}) }, ErrInvalidGeometry},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder()
			p := b.NewPage(100, 100)
			tc.draw(p)
			// later failures do not replace the first one
			p.DrawRectangle(0, 0, math.NaN(), 1, RectOptions{})
			doc, err := b.Build()
			if doc != nil {
				t.Error("Expected no document on failure")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
			if b.Err() != err {
				t.Errorf("Expected Err to report the build error")
			}
		})
	}
}

func TestBuilder_MeasureText(t *testing.T) {
	b := NewBuilder()
	w, err := b.MeasureText("Hello", 10, fonts.Helvetica)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if math.Abs(w-22.78) > 1e-9 {
		t.Errorf("Expected 22.78, got %v", w)
	}
	if _, err := b.MeasureText("x", 10, "Unknown"); !errors.Is(err, fonts.ErrUnknownFont) {
		t.Errorf("Expected ErrUnknownFont, got %v", err)
	}
}

func TestBuilder_WithFonts(t *testing.T) {
	r := fonts.NewRegistry()
	face, _ := r.Lookup(fonts.GoBold)
	r.Register("Brand-Bold", face)
	b := NewBuilder(WithFonts(r))
	b.NewPage(100, 100).DrawText("Hi", 0, 0, TextOptions{Font: "Brand-Bold", FontSize: 9})
	if _, err := b.Build(); err != nil {
		t.Fatalf("Expected custom font to resolve, got %v", err)
	}
	b.SetInfo(&semantic.DocumentInfo{Title: "T"}).SetLanguage("en")
	doc, _ := b.Build()
	if doc.Info.Title != "T" || doc.Lang != "en" {
		t.Errorf("metadata not carried: %+v %q", doc.Info, doc.Lang)
	}
}
