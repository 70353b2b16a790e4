package contentstream

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/wudi/invoicekit/coords"
	"github.com/wudi/invoicekit/ir/semantic"
)

// Decode parses content stream bytes back into operations. It accepts what
// Encode produces plus hex strings and comments.
func Decode(stream []byte) ([]semantic.Operation, error) {
	tokens, err := tokenize(stream)
	if err != nil {
		return nil, err
	}
	var ops []semantic.Operation
	var operands []semantic.Operand
	var arrays [][]semantic.Operand

	push := func(o semantic.Operand) {
		if n := len(arrays); n > 0 {
			arrays[n-1] = append(arrays[n-1], o)
			return
		}
		operands = append(operands, o)
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokNumber:
			v, err := strconv.ParseFloat(tok.text, 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", tok.text, err)
			}
			push(semantic.NumberOperand{Value: v})
		case tokName:
			push(semantic.NameOperand{Value: tok.text})
		case tokString:
			push(semantic.StringOperand{Value: tok.data})
		case tokArrayOpen:
			arrays = append(arrays, nil)
		case tokArrayClose:
			n := len(arrays)
			if n == 0 {
				return nil, errors.New("unbalanced ]")
			}
			arr := arrays[n-1]
			arrays = arrays[:n-1]
			push(semantic.ArrayOperand{Values: arr})
		case tokOperator:
			if len(arrays) > 0 {
				return nil, fmt.Errorf("operator %s inside array", tok.text)
			}
			ops = append(ops, semantic.Operation{Operator: tok.text, Operands: operands})
			operands = nil
		}
	}
	if len(arrays) > 0 {
		return nil, errors.New("unterminated array")
	}
	if len(operands) > 0 {
		return nil, fmt.Errorf("dangling operands: %d", len(operands))
	}
	return ops, nil
}

// GraphicsState tracks the parts of the PDF graphics state the tracer needs.
type GraphicsState struct {
	CTM   coords.Matrix
	stack []coords.Matrix
}

func (gs *GraphicsState) Save() { gs.stack = append(gs.stack, gs.CTM) }
func (gs *GraphicsState) Restore() error {
	n := len(gs.stack)
	if n == 0 {
		return errors.New("state stack empty")
	}
	gs.CTM = gs.stack[n-1]
	gs.stack = gs.stack[:n-1]
	return nil
}

type TextState struct {
	Font           *semantic.Font
	FontSize       float64
	TextMatrix     coords.Matrix
	TextLineMatrix coords.Matrix
}
