package semantic

// Document is the semantic representation of a PDF being produced.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
	Lang  string
}

// Page models a single PDF page.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// Width returns the media box width.
func (p *Page) Width() float64 { return p.MediaBox.URX - p.MediaBox.LLX }

// Height returns the media box height.
func (p *Page) Height() float64 { return p.MediaBox.URY - p.MediaBox.LLY }

// Operations returns the operations of every content stream in order.
func (p *Page) Operations() []Operation {
	var ops []Operation
	for _, cs := range p.Contents {
		ops = append(ops, cs.Operations...)
	}
	return ops
}

// ContentStream is a sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
}

// Operation represents a PDF operator and operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a type-safe operand value.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

// StringOperand holds already-encoded bytes (WinAnsi codes or two-byte CIDs).
type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// Resources holds per-page resources.
type Resources struct {
	Fonts map[string]*Font
}

// Font represents a font resource. One *Font is shared by every page that
// uses it, so the writer emits it once.
type Font struct {
	Subtype        string // Type1 or Type0
	BaseFont       string
	Encoding       string // WinAnsiEncoding or Identity-H
	Widths         map[int]int
	ToUnicode      map[int][]rune
	DescendantFont *CIDFont
	Descriptor     *FontDescriptor
}

// Composite reports whether text is encoded as two-byte CIDs.
func (f *Font) Composite() bool { return f != nil && f.Subtype == "Type0" }

// CIDFont describes a descendant font for Type0 fonts.
type CIDFont struct {
	Subtype    string // CIDFontType2
	BaseFont   string
	DW         int
	W          map[int]int // CID -> width
	Descriptor *FontDescriptor
}

// FontDescriptor carries metrics and font file embedding details.
type FontDescriptor struct {
	FontName     string
	Flags        int
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        int
	FontBBox     [4]float64
	FontFile     []byte
	FontFileType string // FontFile2 for TrueType
}

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}
