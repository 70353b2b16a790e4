package contentstream

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/invoicekit/ir/semantic"
)

func num(v float64) semantic.Operand { return semantic.NumberOperand{Value: v} }
func name(v string) semantic.Operand { return semantic.NameOperand{Value: v} }
func str(v string) semantic.Operand  { return semantic.StringOperand{Value: []byte(v)} }
func op(o string, args ...semantic.Operand) semantic.Operation {
	return semantic.Operation{Operator: o, Operands: args}
}

func TestEncodeFormatsOperands(t *testing.T) {
	ops := []semantic.Operation{
		op(OpBeginText),
		op(OpFont, name("F1"), num(9)),
		op(OpTextMatrix, num(1), num(0), num(0), num(1), num(50.123456), num(-0.00001)),
		op(OpShowText, str("a (b) \\ c")),
		op(OpEndText),
	}
	got := string(Encode(ops))
	want := "BT\n/F1 9 Tf\n1 0 0 1 50.1235 0 Tm\n(a \\(b\\) \\\\ c) Tj\nET\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestEncodeArrays(t *testing.T) {
	ops := []semantic.Operation{
		op(OpShowTextArray, semantic.ArrayOperand{Values: []semantic.Operand{str("\x00\x05"), num(-12), str("\x00\x06")}}),
	}
	got := string(Encode(ops))
	want := "[(\\000\\005) -12 (\\000\\006)] TJ\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		-0.00001:  "0",
		1:         "1",
		595.28:    "595.28",
		1.0 / 3.0: "0.3333",
		-12.5:     "-12.5",
		1e7:       "10000000",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v): expected %q, got %q", in, want, got)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	ops := []semantic.Operation{
		op(OpSave),
		op(OpFillRGB, num(0.3098), num(0.2745), num(0.898)),
		op(OpRect, num(0), num(742), num(595), num(100)),
		op(OpFill),
		op(OpRestore),
		op(OpBeginText),
		op(OpFont, name("F2"), num(32)),
		op(OpShowText, str("Tab\there (nested (parens))\r\n")),
		op(OpShowTextArray, semantic.ArrayOperand{Values: []semantic.Operand{str("\x01\xff"), num(3.5)}}),
		op(OpEndText),
	}
	got, err := Decode(Encode(ops))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if diff := cmp.Diff(ops, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHexAndComments(t *testing.T) {
	got, err := Decode([]byte("% comment\n<48656C6C6F> Tj\n<4> Tj"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(got))
	}
	if s := string(got[0].Operands[0].(semantic.StringOperand).Value); s != "Hello" {
		t.Errorf("Expected Hello, got %q", s)
	}
	if b := got[1].Operands[0].(semantic.StringOperand).Value; len(b) != 1 || b[0] != 0x40 {
		t.Errorf("Expected odd hex digit padded to 0x40, got %v", b)
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, src := range []string{"(unterminated Tj", "[1 2", "1 2", "] Tj", "<zz> Tj"} {
		if _, err := Decode([]byte(src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}

func TestTracerBoxes(t *testing.T) {
	font := &semantic.Font{
		Subtype:    "Type1",
		Widths:     map[int]int{'A': 500},
		Descriptor: &semantic.FontDescriptor{Ascent: 700, Descent: -200},
	}
	res := &semantic.Resources{Fonts: map[string]*semantic.Font{"F1": font}}
	ops := []semantic.Operation{
		op(OpRect, num(10), num(20), num(30), num(40)),
		op(OpFill),
		op(OpSave),
		op("cm", num(1), num(0), num(0), num(1), num(5), num(5)),
		op(OpRect, num(0), num(0), num(1), num(1)),
		op(OpFill),
		op(OpRestore),
		op(OpBeginText),
		op(OpFont, name("F1"), num(10)),
		op(OpTextMatrix, num(1), num(0), num(0), num(1), num(100), num(700)),
		op(OpShowText, str("AA")),
		op(OpShowTextArray, semantic.ArrayOperand{Values: []semantic.Operand{str("A"), num(-1000), str("A")}}),
		op(OpEndText),
	}
	boxes, err := NewTracer().Trace(ops, res)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	want := []semantic.Rectangle{
		{LLX: 10, LLY: 20, URX: 40, URY: 60},
		{LLX: 5, LLY: 5, URX: 6, URY: 6},
		{LLX: 100, LLY: 698, URX: 110, URY: 707},
		{LLX: 100, LLY: 698, URX: 120, URY: 707},
	}
	var got []semantic.Rectangle
	for _, b := range boxes {
		got = append(got, b.Rect)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
	if string(boxes[3].Text) != "AA" {
		t.Errorf("Expected TJ text AA, got %q", boxes[3].Text)
	}

	if _, err := NewTracer().Trace([]semantic.Operation{op(OpRestore)}, nil); err == nil {
		t.Error("Expected error for unbalanced restore")
	}
}
