package contentstream

import (
	"bytes"
	"math"
	"strconv"

	"github.com/wudi/invoicekit/ir/semantic"
)

// Encode serializes operations into content stream bytes, one operator per
// line. Numbers are rounded to four decimals so output is stable across
// platforms.
func Encode(ops []semantic.Operation) []byte {
	var buf bytes.Buffer
	for _, op := range ops {
		for _, o := range op.Operands {
			writeOperand(&buf, o)
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeOperand(buf *bytes.Buffer, op semantic.Operand) {
	switch v := op.(type) {
	case semantic.NumberOperand:
		buf.WriteString(FormatNumber(v.Value))
	case semantic.NameOperand:
		buf.WriteByte('/')
		buf.WriteString(v.Value)
	case semantic.StringOperand:
		buf.Write(EscapeString(v.Value))
	case semantic.ArrayOperand:
		buf.WriteByte('[')
		for i, item := range v.Values {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeOperand(buf, item)
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
}

// FormatNumber renders v with at most four decimals and no exponent.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*10000) / 10000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// EscapeString renders b as a PDF literal string including parentheses.
func EscapeString(b []byte) []byte {
	out := make([]byte, 0, len(b)+2)
	out = append(out, '(')
	for _, c := range b {
		switch c {
		case '\\', '(', ')':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if c < 0x20 || c == 0x7f {
				out = append(out, '\\', '0'+(c>>6)&7, '0'+(c>>3)&7, '0'+c&7)
				continue
			}
			out = append(out, c)
		}
	}
	return append(out, ')')
}
