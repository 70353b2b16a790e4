package writer

import (
	"context"
	"io"

	"github.com/wudi/invoicekit/ir/raw"
	"github.com/wudi/invoicekit/ir/semantic"
)

type PDFVersion string

const (
	PDF17 PDFVersion = "1.7"
)

type Config struct {
	Version PDFVersion
	// Compression is the Flate level for content and font streams; 0
	// writes them uncompressed.
	Compression int
	// Deterministic derives the file ID from the written bytes instead of
	// random data, so equal documents serialize identically.
	Deterministic bool
	// SubsetFonts reduces embedded TrueType programs to the glyphs drawn.
	// The document's composite fonts are modified in place.
	SubsetFonts bool
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

// Interceptor observes every indirect object as it is written.
type Interceptor interface {
	BeforeWrite(ctx context.Context, ref raw.ObjectRef, obj raw.Object) error
	AfterWrite(ctx context.Context, ref raw.ObjectRef, bytesWritten int64) error
}

type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}
func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }
