package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wudi/invoicekit/contentstream"
	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/ir/raw"
	"github.com/wudi/invoicekit/ir/semantic"
)

// ErrEmptyDocument is returned for a document without pages.
var ErrEmptyDocument = errors.New("document has no pages")

type impl struct{ interceptors []Interceptor }

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	if err := serializePrimitive(&buf, obj); err != nil {
		return nil, fmt.Errorf("object %s: %w", ref, err)
	}
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

// Write serializes doc as a complete PDF file with a classic xref table.
// Nothing is written to out unless serialization succeeds.
func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrEmptyDocument
	}
	if cfg.SubsetFonts {
		a := fonts.NewAnalyzer()
		a.Analyze(doc)
		if err := fonts.NewSubsetter().Apply(a); err != nil {
			return fmt.Errorf("subset fonts: %w", err)
		}
	}

	table, catalogRef, infoRef, err := newObjectBuilder(doc, cfg).Build()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + pdfVersion(cfg) + "\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int64, table.Size())
	for num := 1; num < table.Size(); num++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ref := raw.ObjectRef{Num: num}
		obj, ok := table.Get(ref)
		if !ok {
			continue
		}
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ctx, ref, obj); err != nil {
				return err
			}
		}
		serialized, err := w.SerializeObject(ref, obj)
		if err != nil {
			return err
		}
		offsets[num] = int64(buf.Len())
		buf.Write(serialized)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, ref, int64(len(serialized))); err != nil {
				return err
			}
		}
	}
	ids := fileID(buf.Bytes(), cfg)

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", table.Size())
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < table.Size(); num++ {
		if offsets[num] == 0 {
			buf.WriteString("0000000000 65535 f \n")
			continue
		}
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}

	trailer := raw.Dict()
	trailer.Set("Size", raw.Int(int64(table.Size())))
	trailer.Set("Root", raw.Ref(catalogRef))
	if infoRef != nil {
		trailer.Set("Info", raw.Ref(*infoRef))
	}
	trailer.Set("ID", raw.NewArray(raw.HexStr(ids[0]), raw.HexStr(ids[1])))
	buf.WriteString("trailer\n")
	if err := serializePrimitive(&buf, trailer); err != nil {
		return err
	}
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err = out.Write(buf.Bytes())
	return err
}

func serializePrimitive(buf *bytes.Buffer, o raw.Object) error {
	switch v := o.(type) {
	case raw.NameObj:
		buf.WriteString("/" + pdfName(v.Value()))
	case raw.NumberObj:
		if v.IsInteger() {
			buf.WriteString(strconv.FormatInt(v.Int(), 10))
		} else {
			buf.WriteString(contentstream.FormatNumber(v.Float()))
		}
	case raw.BoolObj:
		buf.WriteString(strconv.FormatBool(v.Value()))
	case raw.NullObj:
		buf.WriteString("null")
	case raw.StringObj:
		if v.IsHex() {
			fmt.Fprintf(buf, "<%X>", v.Value())
		} else {
			buf.Write(contentstream.EscapeString(v.Value()))
		}
	case *raw.ArrayObj:
		buf.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if err := serializePrimitive(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *raw.DictObj:
		buf.WriteString("<<")
		for _, k := range v.Keys() {
			buf.WriteString("/" + pdfName(k) + " ")
			if err := serializePrimitive(buf, v.KV[k]); err != nil {
				return err
			}
		}
		buf.WriteString(">>")
	case *raw.StreamObj:
		v.Dict.Set("Length", raw.Int(int64(len(v.Data))))
		if err := serializePrimitive(buf, v.Dict); err != nil {
			return err
		}
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
	case raw.RefObj:
		buf.WriteString(v.Ref().String())
	default:
		return fmt.Errorf("unsupported object %T", o)
	}
	return nil
}
