package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/invoicekit/builder"
	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/ir/semantic"
)

var body = TextStyle{Font: fonts.Helvetica, Size: 10}

func numbers(op semantic.Operation) []float64 {
	out := make([]float64, 0, len(op.Operands))
	for _, o := range op.Operands {
		if n, ok := o.(semantic.NumberOperand); ok {
			out = append(out, n.Value)
		}
	}
	return out
}

func findOps(doc *semantic.Document, page int, operator string) []semantic.Operation {
	var out []semantic.Operation
	for _, op := range doc.Pages[page].Operations() {
		if op.Operator == operator {
			out = append(out, op)
		}
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestCursor(t *testing.T) {
	c := NewCanvas()
	cur := NewCursor(c, 150, 50)

	if cur.EnsureSpace(100) {
		t.Error("Expected content to fit on the first page")
	}
	cur.Advance(25)
	if cur.Position() != 175 {
		t.Errorf("Expected 175, got %v", cur.Position())
	}

	// exactly touching the page bottom still fits
	cur.SetPosition(700)
	if cur.EnsureSpace(142) {
		t.Error("Expected a block ending on the page bottom to fit")
	}
	if !cur.EnsureSpace(143) {
		t.Fatal("Expected a page break")
	}
	if cur.Position() != 50 || c.PageCount() != 2 || cur.Breaks() != 1 {
		t.Errorf("Expected y=50 on page 2 after one break, got y=%v pages=%d breaks=%d", cur.Position(), c.PageCount(), cur.Breaks())
	}
	if got := cur.Available(); got != 842-50 {
		t.Errorf("Expected 792 available, got %v", got)
	}

	cur.ReserveFooterBand(90)
	if got := cur.Available(); got != 842-160-50 {
		t.Errorf("Expected 632 available after reserving the footer, got %v", got)
	}
	cur.SetPosition(600)
	if !cur.EnsureSpace(83) {
		t.Error("Expected the reserved band to force a break")
	}
}

func TestWrap(t *testing.T) {
	c := NewCanvas()
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "Hello World", 60, []string{"Hello World"}},
		{"breaks at space", "Hello World", 40, []string{"Hello", "World"}},
		{"explicit breaks", "Hello\r\n\nWorld", 200, []string{"Hello", "", "World"}},
		{"long word", "WWWWW", 20, []string{"WW", "WW", "W"}},
		{"long word after text", "a WWWWW", 20, []string{"a", "WW", "WW", "W"}},
		{"narrower than a glyph", "WW", 1, []string{"W", "W"}},
		{"no width", "Hello   World", 0, []string{"Hello World"}},
		{"empty", "", 100, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Wrap(tc.text, tc.width, body)
			if err != nil {
				t.Fatalf("wrap: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeightMatchesDrawnHeight(t *testing.T) {
	c := NewCanvas()
	style := TextStyle{Font: fonts.HelveticaBold, Size: 9, LineGap: 2}
	text := "Website redesign and development including responsive layouts and accessibility review"

	h, err := c.HeightOfString(text, 120, style)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	lines, _ := c.Wrap(text, 120, style)
	if want := float64(len(lines)) * (9*(718+207+265)/1000.0 + 2); !near(h, want) {
		t.Errorf("Expected %v, got %v", want, h)
	}
	drawn, err := c.Text(text, 50, 100, TextBox{Style: style, Width: 120})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if drawn != h {
		t.Errorf("Expected drawn height %v to equal measured %v", drawn, h)
	}
	doc, _ := c.Finish()
	if got := len(findOps(doc, 0, "Tj")); got != len(lines) {
		t.Errorf("Expected %d drawn lines, got %d", len(lines), got)
	}
}

func TestTextPlacement(t *testing.T) {
	c := NewCanvas()
	c.Text("Hello", 50, 100, TextBox{Style: body})
	c.Text("Hello", 50, 100, TextBox{Style: body, Width: 100, Align: AlignRight})
	c.Text("Hello", 50, 100, TextBox{Style: body, Width: 100, Align: AlignCenter})
	c.Rect(10, 20, 30, 40, body.Color)
	doc, err := c.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	tms := findOps(doc, 0, "Tm")
	wantX := []float64{50, 150 - 22.78, 50 + (100-22.78)/2}
	for i, tm := range tms {
		n := numbers(tm)
		if !near(n[4], wantX[i]) {
			t.Errorf("line %d: Expected x %v, got %v", i, wantX[i], n[4])
		}
		if !near(n[5], 842-107.18) {
			t.Errorf("line %d: Expected baseline %v, got %v", i, 842-107.18, n[5])
		}
	}
	re := numbers(findOps(doc, 0, "re")[0])
	if diff := cmp.Diff([]float64{10, 782, 30, 40}, re); diff != "" {
		t.Errorf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestCanvasErrors(t *testing.T) {
	c := NewCanvas()
	if _, err := c.HeightOfString("x", 10, TextStyle{Font: "Missing", Size: 9}); !errors.Is(err, fonts.ErrUnknownFont) {
		t.Errorf("Expected ErrUnknownFont, got %v", err)
	}
	if _, err := c.Text("bad \xff", 0, 0, TextBox{Style: body}); !errors.Is(err, fonts.ErrInvalidText) {
		t.Errorf("Expected ErrInvalidText, got %v", err)
	}

	c = NewCanvas()
	c.Rect(0, 0, math.NaN(), 10, body.Color)
	if _, err := c.Finish(); !errors.Is(err, builder.ErrInvalidGeometry) {
		t.Errorf("Expected geometry error at Finish, got %v", err)
	}
}

func TestCanvasOptions(t *testing.T) {
	r := fonts.NewRegistry()
	c := NewCanvas(WithPageSize(300, 400), WithFonts(r))
	if c.Width() != 300 || c.Height() != 400 || c.PageCount() != 1 {
		t.Errorf("unexpected canvas %vx%v with %d pages", c.Width(), c.Height(), c.PageCount())
	}
	if _, err := c.HeightOfString("x", 0, TextStyle{Font: fonts.GoRegular, Size: 9}); err != nil {
		t.Errorf("Expected Go font to resolve, got %v", err)
	}
}
