package writer

import (
	"bytes"
	"compress/flate"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/wudi/invoicekit/ir/raw"
	"github.com/wudi/invoicekit/ir/semantic"
)

func pdfVersion(cfg Config) string {
	if cfg.Version == "" {
		return string(PDF17)
	}
	return string(cfg.Version)
}

// fileID returns the two trailer /ID strings. Deterministic IDs hash the
// serialized body, so they change exactly when the output does.
func fileID(body []byte, cfg Config) [2][]byte {
	if cfg.Deterministic {
		sum := sha256.Sum256(body)
		return [2][]byte{sum[:16], sum[:16]}
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		sum := sha256.Sum256(body)
		copy(id, sum[:16])
	}
	return [2][]byte{id, id}
}

func flateEncode(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newStream builds a stream object, compressing data when cfg asks for it.
func newStream(dict *raw.DictObj, data []byte, cfg Config) (*raw.StreamObj, error) {
	if dict == nil {
		dict = raw.Dict()
	}
	if cfg.Compression != 0 {
		enc, err := flateEncode(data, cfg.Compression)
		if err != nil {
			return nil, fmt.Errorf("flate: %w", err)
		}
		dict.Set("Filter", raw.Name("FlateDecode"))
		data = enc
	}
	return raw.NewStream(dict, data), nil
}

func rectArray(r semantic.Rectangle) *raw.ArrayObj {
	return raw.Reals(r.LLX, r.LLY, r.URX, r.URY)
}

// buildToUnicodeCMap maps two-byte codes of a composite font back to text.
func buildToUnicodeCMap(font *semantic.Font) []byte {
	if font == nil || len(font.ToUnicode) == 0 {
		return nil
	}
	keys := make([]int, 0, len(font.ToUnicode))
	for cid := range font.ToUnicode {
		keys = append(keys, cid)
	}
	sort.Ints(keys)
	name := strings.ReplaceAll(font.BaseFont, " ", "") + "-UTF16"

	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n")
	buf.WriteString("12 dict begin\n")
	buf.WriteString("begincmap\n")
	buf.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	fmt.Fprintf(&buf, "/CMapName /%s def\n", pdfName(name))
	buf.WriteString("/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	for i := 0; i < len(keys); {
		chunk := min(len(keys)-i, 100)
		fmt.Fprintf(&buf, "%d beginbfchar\n", chunk)
		for _, cid := range keys[i : i+chunk] {
			fmt.Fprintf(&buf, "<%04X> <%s>\n", cid, utf16Hex(font.ToUnicode[cid]))
		}
		buf.WriteString("endbfchar\n")
		i += chunk
	}
	buf.WriteString("endcmap\n")
	buf.WriteString("CMapName currentdict /CMap defineresource pop\n")
	buf.WriteString("end\nend\n")
	return buf.Bytes()
}

func utf16Hex(runes []rune) string {
	var b strings.Builder
	for _, u := range utf16.Encode(runes) {
		fmt.Fprintf(&b, "%04X", u)
	}
	return b.String()
}

// encodeWidths returns the /FirstChar, /LastChar and /Widths of a simple
// font. Codes missing between first and last get width 0.
func encodeWidths(widths map[int]int) (first, last int, arr *raw.ArrayObj) {
	if len(widths) == 0 {
		return 0, 0, raw.NewArray()
	}
	first, last = math.MaxInt32, -1
	for k := range widths {
		first = min(first, k)
		last = max(last, k)
	}
	arr = raw.NewArray()
	for i := first; i <= last; i++ {
		arr.Append(raw.Int(int64(widths[i])))
	}
	return first, last, arr
}

// encodeCIDWidths writes a /W array using c_first c_last w ranges for runs
// of consecutive ids sharing a width.
func encodeCIDWidths(widths map[int]int) *raw.ArrayObj {
	arr := raw.NewArray()
	if len(widths) == 0 {
		return arr
	}
	codes := make([]int, 0, len(widths))
	for c := range widths {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	start, prev, current := codes[0], codes[0], widths[codes[0]]
	flush := func() {
		arr.Append(raw.Int(int64(start)), raw.Int(int64(prev)), raw.Int(int64(current)))
	}
	for _, code := range codes[1:] {
		w := widths[code]
		if w == current && code == prev+1 {
			prev = code
			continue
		}
		flush()
		start, prev, current = code, code, w
	}
	flush()
	return arr
}

// textString encodes s as a PDF text string: literal for ASCII, UTF-16BE
// with a byte order mark otherwise.
func textString(s string) raw.StringObj {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return raw.Str([]byte(s))
	}
	out := []byte{0xFE, 0xFF}
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return raw.HexStr(out)
}

// pdfName escapes bytes that may not appear literally in a name.
func pdfName(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch > 0x20 && ch < 0x7F && !strings.ContainsRune("#()<>[]{}/%", rune(ch)) {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "#%02X", ch)
	}
	return b.String()
}
