package contentstream

import (
	"math"

	"github.com/wudi/invoicekit/coords"
	"github.com/wudi/invoicekit/ir/semantic"
)

// OpBBox represents the bounding box of an operation.
type OpBBox struct {
	OpIndex  int
	Operator string
	Rect     semantic.Rectangle
	Text     []byte
}

// Tracer calculates the bounding boxes of painting operations in a content
// stream, in PDF user space.
type Tracer struct{}

func NewTracer() *Tracer {
	return &Tracer{}
}

// Trace executes the operations virtually and returns their bounding boxes.
// Text boxes span from the font descent to the ascent around the baseline.
func (t *Tracer) Trace(ops []semantic.Operation, resources *semantic.Resources) ([]OpBBox, error) {
	bboxes := make([]OpBBox, 0, len(ops))
	gs := &GraphicsState{CTM: coords.Identity()}
	ts := &TextState{TextMatrix: coords.Identity(), TextLineMatrix: coords.Identity()}
	var path []coords.Point

	for i, op := range ops {
		switch op.Operator {
		case OpSave:
			gs.Save()
		case OpRestore:
			if err := gs.Restore(); err != nil {
				return nil, err
			}
		case "cm":
			if len(op.Operands) == 6 {
				gs.CTM = operandToMatrix(op.Operands).Multiply(gs.CTM)
			}
		case OpBeginText:
			ts.TextMatrix = coords.Identity()
			ts.TextLineMatrix = coords.Identity()
		case OpFont:
			if len(op.Operands) == 2 {
				if name, ok := op.Operands[0].(semantic.NameOperand); ok && resources != nil {
					ts.Font = resources.Fonts[name.Value]
				}
				ts.FontSize = operandToFloat(op.Operands[1])
			}
		case OpTextMatrix:
			if len(op.Operands) == 6 {
				ts.TextLineMatrix = operandToMatrix(op.Operands)
				ts.TextMatrix = ts.TextLineMatrix
			}
		case "Td":
			if len(op.Operands) == 2 {
				m := coords.Translate(operandToFloat(op.Operands[0]), operandToFloat(op.Operands[1]))
				ts.TextLineMatrix = m.Multiply(ts.TextLineMatrix)
				ts.TextMatrix = ts.TextLineMatrix
			}
		case OpShowText:
			if len(op.Operands) == 1 {
				if str, ok := op.Operands[0].(semantic.StringOperand); ok {
					w := stringWidth(str.Value, ts.Font)
					bboxes = append(bboxes, OpBBox{OpIndex: i, Operator: op.Operator, Text: str.Value, Rect: textRect(w, ts, gs)})
				}
			}
		case OpShowTextArray:
			if len(op.Operands) == 1 {
				if arr, ok := op.Operands[0].(semantic.ArrayOperand); ok {
					var total float64
					var text []byte
					for _, v := range arr.Values {
						switch x := v.(type) {
						case semantic.StringOperand:
							total += stringWidth(x.Value, ts.Font)
							text = append(text, x.Value...)
						case semantic.NumberOperand:
							total -= x.Value
						}
					}
					bboxes = append(bboxes, OpBBox{OpIndex: i, Operator: op.Operator, Text: text, Rect: textRect(total, ts, gs)})
				}
			}
		case OpRect:
			if len(op.Operands) == 4 {
				x, y := operandToFloat(op.Operands[0]), operandToFloat(op.Operands[1])
				w, h := operandToFloat(op.Operands[2]), operandToFloat(op.Operands[3])
				path = append(path,
					gs.CTM.Transform(coords.Point{X: x, Y: y}),
					gs.CTM.Transform(coords.Point{X: x + w, Y: y}),
					gs.CTM.Transform(coords.Point{X: x, Y: y + h}),
					gs.CTM.Transform(coords.Point{X: x + w, Y: y + h}))
			}
		case OpMoveTo, OpLineTo:
			if len(op.Operands) == 2 {
				path = append(path, gs.CTM.Transform(coords.Point{X: operandToFloat(op.Operands[0]), Y: operandToFloat(op.Operands[1])}))
			}
		case OpFill, OpStroke, OpFillStroke, "f*", "n":
			if len(path) > 0 && op.Operator != "n" {
				bboxes = append(bboxes, OpBBox{OpIndex: i, Operator: op.Operator, Rect: pointsToRect(path...)})
			}
			path = path[:0]
		}
	}

	return bboxes, nil
}

func operandToMatrix(ops []semantic.Operand) coords.Matrix {
	return coords.Matrix{
		operandToFloat(ops[0]),
		operandToFloat(ops[1]),
		operandToFloat(ops[2]),
		operandToFloat(ops[3]),
		operandToFloat(ops[4]),
		operandToFloat(ops[5]),
	}
}

func operandToFloat(op semantic.Operand) float64 {
	if n, ok := op.(semantic.NumberOperand); ok {
		return n.Value
	}
	return 0
}

// stringWidth sums glyph widths in 1/1000 em. Composite fonts use two-byte
// CIDs looked up in the descendant's W table.
func stringWidth(text []byte, font *semantic.Font) float64 {
	if font == nil {
		return 0
	}
	var width float64
	if font.Composite() && font.DescendantFont != nil {
		d := font.DescendantFont
		for i := 0; i+1 < len(text); i += 2 {
			cid := int(text[i])<<8 | int(text[i+1])
			if w, ok := d.W[cid]; ok {
				width += float64(w)
			} else {
				width += float64(d.DW)
			}
		}
		return width
	}
	for _, b := range text {
		if w, ok := font.Widths[int(b)]; ok {
			width += float64(w)
		} else {
			width += 500
		}
	}
	return width
}

func textRect(width1000 float64, ts *TextState, gs *GraphicsState) semantic.Rectangle {
	ascent, descent := 718.0, -207.0
	if ts.Font != nil && ts.Font.Descriptor != nil {
		ascent, descent = ts.Font.Descriptor.Ascent, ts.Font.Descriptor.Descent
	}
	w := width1000 / 1000 * ts.FontSize
	lo := descent / 1000 * ts.FontSize
	hi := ascent / 1000 * ts.FontSize
	m := ts.TextMatrix.Multiply(gs.CTM)
	return pointsToRect(
		m.Transform(coords.Point{X: 0, Y: lo}),
		m.Transform(coords.Point{X: w, Y: lo}),
		m.Transform(coords.Point{X: 0, Y: hi}),
		m.Transform(coords.Point{X: w, Y: hi}),
	)
}

func pointsToRect(points ...coords.Point) semantic.Rectangle {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return semantic.Rectangle{LLX: minX, LLY: minY, URX: maxX, URY: maxY}
}
