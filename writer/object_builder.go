package writer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wudi/invoicekit/contentstream"
	"github.com/wudi/invoicekit/ir/raw"
	"github.com/wudi/invoicekit/ir/semantic"
)

// objectBuilder lowers a semantic document into numbered raw objects.
// Numbers follow a fixed walk of the document, so equal documents always
// produce equal tables.
type objectBuilder struct {
	doc   *semantic.Document
	cfg   Config
	table *raw.Table

	fontRefs map[*semantic.Font]raw.ObjectRef
	err      error
}

func newObjectBuilder(doc *semantic.Document, cfg Config) *objectBuilder {
	return &objectBuilder{
		doc:      doc,
		cfg:      cfg,
		table:    raw.NewTable(),
		fontRefs: make(map[*semantic.Font]raw.ObjectRef),
	}
}

// Build returns the object table with the catalog and, when the document
// has one, the info dictionary.
func (b *objectBuilder) Build() (*raw.Table, raw.ObjectRef, *raw.ObjectRef, error) {
	catalogRef := b.table.Alloc()
	pagesRef := b.table.Alloc()

	kids := raw.NewArray()
	for i, p := range b.doc.Pages {
		ref, err := b.addPage(p, pagesRef)
		if err != nil {
			return nil, raw.ObjectRef{}, nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		kids.Append(raw.Ref(ref))
	}

	pages := raw.Dict()
	pages.Set("Type", raw.Name("Pages"))
	pages.Set("Kids", kids)
	pages.Set("Count", raw.Int(int64(len(b.doc.Pages))))
	b.table.Put(pagesRef, pages)

	catalog := raw.Dict()
	catalog.Set("Type", raw.Name("Catalog"))
	catalog.Set("Pages", raw.Ref(pagesRef))
	if b.doc.Lang != "" {
		catalog.Set("Lang", textString(b.doc.Lang))
	}
	b.table.Put(catalogRef, catalog)

	if b.err != nil {
		return nil, raw.ObjectRef{}, nil, b.err
	}
	var infoRef *raw.ObjectRef
	if info := b.infoDict(); info != nil {
		ref := b.table.Add(info)
		infoRef = &ref
	}
	return b.table, catalogRef, infoRef, nil
}

func (b *objectBuilder) addPage(p *semantic.Page, parent raw.ObjectRef) (raw.ObjectRef, error) {
	ref := b.table.Alloc()
	dict := raw.Dict()
	dict.Set("Type", raw.Name("Page"))
	dict.Set("Parent", raw.Ref(parent))
	dict.Set("MediaBox", rectArray(p.MediaBox))

	res := raw.Dict()
	res.Set("ProcSet", raw.NewArray(raw.Name("PDF"), raw.Name("Text")))
	if p.Resources != nil && len(p.Resources.Fonts) > 0 {
		keys := make([]string, 0, len(p.Resources.Fonts))
		for k := range p.Resources.Fonts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fontDict := raw.Dict()
		for _, k := range keys {
			fontDict.Set(k, raw.Ref(b.ensureFont(p.Resources.Fonts[k])))
		}
		res.Set("Font", fontDict)
	}
	dict.Set("Resources", res)

	content := b.stream(nil, contentstream.Encode(p.Operations()))
	dict.Set("Contents", raw.Ref(b.table.Add(content)))
	b.table.Put(ref, dict)
	return ref, b.err
}

// stream records the first encoding failure and keeps building so the
// caller sees one error.
func (b *objectBuilder) stream(dict *raw.DictObj, data []byte) *raw.StreamObj {
	s, err := newStream(dict, data, b.cfg)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return raw.NewStream(dict, data)
	}
	return s
}

func (b *objectBuilder) infoDict() *raw.DictObj {
	info := b.doc.Info
	if info == nil {
		return nil
	}
	d := raw.Dict()
	set := func(key, value string) {
		if value != "" {
			d.Set(key, textString(value))
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	set("Keywords", strings.Join(info.Keywords, ", "))
	if d.Len() == 0 {
		return nil
	}
	return d
}

func (b *objectBuilder) addFontDescriptor(fd *semantic.FontDescriptor) raw.ObjectRef {
	d := raw.Dict()
	d.Set("Type", raw.Name("FontDescriptor"))
	d.Set("FontName", raw.Name(fd.FontName))
	flags := fd.Flags
	if flags == 0 {
		flags = 32
	}
	d.Set("Flags", raw.Int(int64(flags)))
	d.Set("ItalicAngle", raw.Real(fd.ItalicAngle))
	d.Set("Ascent", raw.Real(fd.Ascent))
	d.Set("Descent", raw.Real(fd.Descent))
	d.Set("CapHeight", raw.Real(fd.CapHeight))
	stem := fd.StemV
	if stem == 0 {
		stem = 80
	}
	d.Set("StemV", raw.Int(int64(stem)))
	d.Set("FontBBox", raw.Reals(fd.FontBBox[:]...))
	if len(fd.FontFile) > 0 {
		sd := raw.Dict()
		sd.Set("Length1", raw.Int(int64(len(fd.FontFile))))
		stream := b.stream(sd, fd.FontFile)
		key := fd.FontFileType
		if key == "" {
			key = "FontFile2"
		}
		d.Set(key, raw.Ref(b.table.Add(stream)))
	}
	return b.table.Add(d)
}

func (b *objectBuilder) ensureFont(font *semantic.Font) raw.ObjectRef {
	if ref, ok := b.fontRefs[font]; ok {
		return ref
	}
	ref := b.table.Alloc()
	b.fontRefs[font] = ref

	d := raw.Dict()
	d.Set("Type", raw.Name("Font"))
	d.Set("Subtype", raw.Name(font.Subtype))
	d.Set("BaseFont", raw.Name(font.BaseFont))
	if font.Encoding != "" {
		d.Set("Encoding", raw.Name(font.Encoding))
	}

	if font.Composite() {
		d.Set("DescendantFonts", raw.NewArray(raw.Ref(b.addCIDFont(font))))
		if cmap := buildToUnicodeCMap(font); cmap != nil {
			d.Set("ToUnicode", raw.Ref(b.table.Add(b.stream(nil, cmap))))
		}
	} else {
		if len(font.Widths) > 0 {
			first, last, widths := encodeWidths(font.Widths)
			d.Set("FirstChar", raw.Int(int64(first)))
			d.Set("LastChar", raw.Int(int64(last)))
			d.Set("Widths", widths)
		}
		if font.Descriptor != nil {
			d.Set("FontDescriptor", raw.Ref(b.addFontDescriptor(font.Descriptor)))
		}
	}
	b.table.Put(ref, d)
	return ref
}

func (b *objectBuilder) addCIDFont(font *semantic.Font) raw.ObjectRef {
	cid := font.DescendantFont
	d := raw.Dict()
	d.Set("Type", raw.Name("Font"))
	subtype, base, dw := "CIDFontType2", font.BaseFont, 1000
	var widths map[int]int
	desc := font.Descriptor
	if cid != nil {
		if cid.Subtype != "" {
			subtype = cid.Subtype
		}
		if cid.BaseFont != "" {
			base = cid.BaseFont
		}
		if cid.DW > 0 {
			dw = cid.DW
		}
		widths = cid.W
		if cid.Descriptor != nil {
			desc = cid.Descriptor
		}
	}
	d.Set("Subtype", raw.Name(subtype))
	d.Set("BaseFont", raw.Name(base))
	csi := raw.Dict()
	csi.Set("Registry", raw.Str([]byte("Adobe")))
	csi.Set("Ordering", raw.Str([]byte("Identity")))
	csi.Set("Supplement", raw.Int(0))
	d.Set("CIDSystemInfo", csi)
	d.Set("DW", raw.Int(int64(dw)))
	if len(widths) > 0 {
		d.Set("W", encodeCIDWidths(widths))
	}
	if subtype == "CIDFontType2" {
		d.Set("CIDToGIDMap", raw.Name("Identity"))
	}
	if desc != nil {
		d.Set("FontDescriptor", raw.Ref(b.addFontDescriptor(desc)))
	}
	return b.table.Add(d)
}
