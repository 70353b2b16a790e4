package fonts_test

import (
	"errors"
	"math"
	"testing"

	"github.com/wudi/invoicekit/fonts"
)

func mustStandard(t *testing.T, name string) *fonts.StandardFace {
	t.Helper()
	f, err := fonts.NewStandardFace(name)
	if err != nil {
		t.Fatalf("NewStandardFace(%s): %v", name, err)
	}
	return f
}

func TestStandardWidths(t *testing.T) {
	tests := []struct {
		font string
		text string
		want float64 // 1/1000 em
	}{
		{fonts.Helvetica, "Hello", 722 + 556 + 222 + 222 + 556},
		{fonts.HelveticaBold, "Total", 611 + 611 + 333 + 556 + 278},
		{fonts.Helvetica, "3 000,00", 556 + 278 + 556*3 + 278 + 556*2},
		{fonts.Helvetica, "", 0},
		{fonts.HelveticaOblique, "Hello", 722 + 556 + 222 + 222 + 556},
		{fonts.HelveticaBoldOblique, "@", 975},
	}
	for _, tc := range tests {
		t.Run(tc.font+"/"+tc.text, func(t *testing.T) {
			run, err := mustStandard(t, tc.font).Layout(tc.text)
			if err != nil {
				t.Fatalf("layout failed: %v", err)
			}
			if run.Width != tc.want {
				t.Errorf("Expected width %v, got %v", tc.want, run.Width)
			}
		})
	}
}

func TestStandardEncoding(t *testing.T) {
	f := mustStandard(t, fonts.Helvetica)

	run, err := f.Layout("é€中")
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	codes := fonts.Encode(f, run)
	if string(codes) != "\xe9\x80?" {
		t.Errorf("Expected WinAnsi codes e9 80 3f, got % x", codes)
	}
	// é measures like e, € has its own width, unencodable runes like '?'
	if want := 556.0 + 556 + 556; run.Width != want {
		t.Errorf("Expected width %v, got %v", want, run.Width)
	}
	if r := run.Glyphs[2].Runes; len(r) != 1 || r[0] != '中' {
		t.Errorf("Expected source rune kept for fallback glyph, got %q", r)
	}
}

func TestStandardAccentsUseBaseWidth(t *testing.T) {
	f := mustStandard(t, fonts.HelveticaBold)
	for _, pair := range [][2]string{{"é", "e"}, {"Ç", "C"}, {"ñ", "n"}, {"Ü", "U"}} {
		a, _ := fonts.MeasureString(f, pair[0], 10)
		b, _ := fonts.MeasureString(f, pair[1], 10)
		if a != b {
			t.Errorf("%s: expected width of %s (%v), got %v", pair[0], pair[1], b, a)
		}
	}
}

func TestStandardInvalidText(t *testing.T) {
	f := mustStandard(t, fonts.Helvetica)
	if _, err := f.Layout("bad \xff"); !errors.Is(err, fonts.ErrInvalidText) {
		t.Errorf("Expected ErrInvalidText, got %v", err)
	}
}

func TestStandardLineHeight(t *testing.T) {
	regular := mustStandard(t, fonts.Helvetica).Metrics()
	bold := mustStandard(t, fonts.HelveticaBold).Metrics()
	if got := regular.LineHeight(9); math.Abs(got-10.404) > 1e-9 {
		t.Errorf("Expected Helvetica 9pt line height 10.404, got %v", got)
	}
	if got := bold.LineHeight(10); math.Abs(got-11.9) > 1e-9 {
		t.Errorf("Expected Helvetica-Bold 10pt line height 11.9, got %v", got)
	}
}

func TestStandardResource(t *testing.T) {
	f := mustStandard(t, fonts.Helvetica)
	res := f.Resource()
	if res.Subtype != "Type1" || res.Encoding != "WinAnsiEncoding" || res.BaseFont != "Helvetica" {
		t.Fatalf("unexpected resource %+v", res)
	}
	if res.Widths['W'] != 944 || res.Widths[0xe9] != 556 {
		t.Errorf("unexpected widths W=%d e-acute=%d", res.Widths['W'], res.Widths[0xe9])
	}
	if f.Resource() != res {
		t.Error("Expected the same resource template on every call")
	}
}

func TestUnknownStandardFace(t *testing.T) {
	if _, err := fonts.NewStandardFace("Times-Roman"); !errors.Is(err, fonts.ErrUnknownFont) {
		t.Errorf("Expected ErrUnknownFont, got %v", err)
	}
}
