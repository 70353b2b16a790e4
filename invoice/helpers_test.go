package invoice

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/invoicekit/builder"
	"github.com/wudi/invoicekit/contentstream"
	"github.com/wudi/invoicekit/ir/semantic"
)

// drawnText is a text run as placed on a page; y is the baseline measured
// from the page top.
type drawnText struct {
	page int
	text string
	x, y float64
}

// drawnRect is a filled rectangle; y is its top edge measured from the page
// top.
type drawnRect struct {
	page       int
	x, y, w, h float64
	fill       builder.Color
}

// inspect walks the content of every page. Only simple-font text is
// decoded, from WinAnsi, which covers the Helvetica defaults.
func inspect(t *testing.T, doc *semantic.Document) ([]drawnText, []drawnRect) {
	t.Helper()
	var texts []drawnText
	var rects []drawnRect
	for i, p := range doc.Pages {
		height := p.Height()
		var fill builder.Color
		var tx, ty float64
		var pending *drawnRect
		for _, op := range p.Operations() {
			switch op.Operator {
			case contentstream.OpFillRGB:
				fill = builder.Color{R: number(t, op, 0), G: number(t, op, 1), B: number(t, op, 2)}
			case contentstream.OpTextMatrix:
				tx, ty = number(t, op, 4), number(t, op, 5)
			case contentstream.OpShowText:
				s, ok := op.Operands[0].(semantic.StringOperand)
				if !ok {
					t.Fatalf("unexpected Tj operand %T", op.Operands[0])
				}
				text, err := charmap.Windows1252.NewDecoder().Bytes(s.Value)
				if err != nil {
					t.Fatalf("decode %q: %v", s.Value, err)
				}
				texts = append(texts, drawnText{page: i, text: string(text), x: tx, y: height - ty})
			case contentstream.OpRect:
				x, y, w, h := number(t, op, 0), number(t, op, 1), number(t, op, 2), number(t, op, 3)
				pending = &drawnRect{page: i, x: x, y: height - y - h, w: w, h: h}
			case contentstream.OpFill:
				if pending != nil {
					pending.fill = fill
					rects = append(rects, *pending)
					pending = nil
				}
			}
		}
	}
	return texts, rects
}

func number(t *testing.T, op semantic.Operation, i int) float64 {
	t.Helper()
	n, ok := op.Operands[i].(semantic.NumberOperand)
	if !ok {
		t.Fatalf("operand %d of %s is %T", i, op.Operator, op.Operands[i])
	}
	return n.Value
}

func findText(texts []drawnText, s string) (drawnText, bool) {
	for _, tx := range texts {
		if tx.text == s {
			return tx, true
		}
	}
	return drawnText{}, false
}

func allText(texts []drawnText) string {
	parts := make([]string, len(texts))
	for i, tx := range texts {
		parts[i] = tx.text
	}
	return strings.Join(parts, "|")
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// rowRects returns the full-width table rectangles of height h in drawing
// order.
func rowRects(rects []drawnRect, h float64) []drawnRect {
	var out []drawnRect
	for _, r := range rects {
		if approx(r.x, 50) && approx(r.w, 495) && approx(r.h, h) {
			out = append(out, r)
		}
	}
	return out
}
