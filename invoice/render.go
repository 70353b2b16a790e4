package invoice

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/ir/raw"
	"github.com/wudi/invoicekit/ir/semantic"
	"github.com/wudi/invoicekit/layout"
	"github.com/wudi/invoicekit/observability"
	"github.com/wudi/invoicekit/writer"
)

// ContentType is the media type of a rendered invoice.
const ContentType = "application/pdf"

const producer = "invoicekit"

// documentLanguage matches the English labels and date format.
const documentLanguage = "en-US"

// Renderer turns invoice views into PDF documents. A Renderer is safe for
// concurrent use; every render owns its canvas, cursor and style.
type Renderer struct {
	logger      observability.Logger
	tracer      observability.Tracer
	metrics     observability.Metrics
	fonts       *fonts.Registry
	compression int
	strict      bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used when the render context carries none.
func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(r *Renderer) {
		if t != nil {
			r.tracer = t
		}
	}
}

func WithMetrics(m observability.Metrics) Option {
	return func(r *Renderer) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithFonts resolves the style's font names against reg, which must not be
// modified while renders run.
func WithFonts(reg *fonts.Registry) Option {
	return func(r *Renderer) {
		if reg != nil {
			r.fonts = reg
		}
	}
}

// WithCompression sets the Flate level of content and font streams. Level
// 0 writes uncompressed streams.
func WithCompression(level int) Option {
	return func(r *Renderer) {
		r.compression = level
	}
}

// WithStrictConfig fails renders whose resolved style does not validate
// instead of logging a warning and drawing anyway.
func WithStrictConfig() Option {
	return func(r *Renderer) {
		r.strict = true
	}
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		logger:      observability.NopLogger{},
		tracer:      observability.NopTracer(),
		metrics:     observability.NopMetrics{},
		compression: flate.DefaultCompression,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fonts == nil {
		r.fonts = fonts.NewRegistry()
	}
	return r
}

// Result is the outcome of an asynchronous render.
type Result struct {
	PDF []byte
	Err error
}

// RenderAsync renders on a new goroutine and delivers exactly one Result.
// ctx supplies logging and tracing values; cancelling it does not stop a
// started render.
func (r *Renderer) RenderAsync(ctx context.Context, v *View, o *Overrides) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		pdf, err := r.Render(context.WithoutCancel(ctx), v, o)
		ch <- Result{PDF: pdf, Err: err}
	}()
	return ch
}

// Render lays out v with the style overrides o and serializes the result.
// On failure no bytes are returned.
func (r *Renderer) Render(ctx context.Context, v *View, o *Overrides) ([]byte, error) {
	if v == nil {
		v = &View{}
	}
	start := time.Now()
	ctx, span := r.tracer.StartSpan(ctx, "invoice.render")
	defer span.Finish()
	span.SetTag("invoice.number", v.InvoiceNumber)
	span.SetTag("invoice.items", len(v.Items))

	fields := []observability.Field{
		observability.String("render_id", uuid.NewString()),
		observability.String("invoice_number", v.InvoiceNumber),
	}
	log := observability.LoggerFromContext(ctx, r.logger).With(append(fields, observability.TraceFields(ctx)...)...)
	log.Debug("render started", observability.Int("items", len(v.Items)))
	if sum := sumItems(v.Items); len(v.Items) > 0 && !sum.Equal(v.Subtotal) {
		log.Warn("subtotal differs from line items",
			observability.String("subtotal", v.Subtotal.String()),
			observability.String("items_total", sum.String()))
	}

	doc, err := r.layout(v, o, log, span)
	var pdf []byte
	if err == nil {
		pdf, err = r.serialize(ctx, doc, log)
	}
	if err != nil {
		kind := errorKind(err)
		span.SetError(err)
		r.metrics.RenderFailed(kind)
		log.Error("render failed",
			observability.String("section", sectionOf(err)),
			observability.String("kind", kind),
			observability.Error("error", err))
		return nil, err
	}

	took := time.Since(start)
	r.metrics.ObserveRender(took, len(doc.Pages))
	span.SetTag("invoice.pages", len(doc.Pages))
	log.Info("invoice rendered",
		observability.Int("pages", len(doc.Pages)),
		observability.Int("bytes", len(pdf)),
		observability.Duration("duration", took))
	return pdf, nil
}

// Layout runs the section renderers and returns the page model without
// serializing it.
func (r *Renderer) Layout(v *View, o *Overrides) (*semantic.Document, error) {
	if v == nil {
		v = &View{}
	}
	_, span := r.tracer.StartSpan(context.Background(), "invoice.layout")
	defer span.Finish()
	doc, err := r.layout(v, o, r.logger, span)
	span.SetError(err)
	return doc, err
}

func (r *Renderer) layout(v *View, o *Overrides, log observability.Logger, span observability.Span) (*semantic.Document, error) {
	cfg := Resolve(DefaultStyle(), o)
	if err := cfg.Validate(); err != nil {
		if r.strict {
			return nil, &RenderError{Section: "config", Err: err}
		}
		log.Warn("style configuration is invalid, rendering anyway", observability.Error("error", err))
	}

	l := cfg.Layout
	canvas := layout.NewCanvas(layout.WithPageSize(l.PageWidth, l.PageHeight), layout.WithFonts(r.fonts))
	canvas.SetInfo(documentInfo(v))
	canvas.SetLanguage(documentLanguage)
	cursor := layout.NewCursor(canvas, l.HeaderHeight+cfg.Spacing.Section, l.Margin)
	if l.ReserveFooter {
		cursor.ReserveFooterBand(l.FooterHeight)
	}

	s := &sheet{canvas: canvas, measurer: canvas, cursor: cursor, view: v, cfg: cfg}
	for _, sec := range s.sections() {
		if err := sec.draw(); err != nil {
			return nil, &RenderError{Section: sec.name, Err: err}
		}
		span.AddEvent(sec.name)
	}

	doc, err := canvas.Finish()
	if err != nil {
		return nil, &RenderError{Section: "finalize", Err: fmt.Errorf("%w: %w", ErrDrawing, err)}
	}
	log.Debug("layout finished",
		observability.Int("pages", len(doc.Pages)),
		observability.Int("page_breaks", cursor.Breaks()))
	return doc, nil
}

// objectStats counts the indirect objects a write produces.
type objectStats struct {
	objects int
	bytes   int64
}

func (s *objectStats) BeforeWrite(context.Context, raw.ObjectRef, raw.Object) error { return nil }

func (s *objectStats) AfterWrite(_ context.Context, _ raw.ObjectRef, n int64) error {
	s.objects++
	s.bytes += n
	return nil
}

func (r *Renderer) serialize(ctx context.Context, doc *semantic.Document, log observability.Logger) ([]byte, error) {
	stats := &objectStats{}
	w := (&writer.WriterBuilder{}).WithInterceptor(stats).Build()
	cfg := writer.Config{
		Version:       writer.PDF17,
		Compression:   r.compression,
		Deterministic: true,
		SubsetFonts:   true,
	}
	var buf bytes.Buffer
	if err := w.Write(context.WithoutCancel(ctx), doc, &buf, cfg); err != nil {
		return nil, &RenderError{Section: "finalize", Err: fmt.Errorf("serialize: %w", err)}
	}
	log.Debug("document serialized",
		observability.Int("objects", stats.objects),
		observability.Int64("object_bytes", stats.bytes))
	return buf.Bytes(), nil
}

func documentInfo(v *View) *semantic.DocumentInfo {
	return &semantic.DocumentInfo{
		Title:    strings.TrimSpace("Invoice " + v.InvoiceNumber),
		Subject:  v.ProviderName,
		Creator:  producer,
		Producer: producer,
	}
}

// Filename returns the download name of a rendered invoice.
func Filename(v *View) string {
	n := strings.TrimSpace(v.InvoiceNumber)
	if n == "" {
		return "invoice.pdf"
	}
	n = strings.NewReplacer("/", "-", "\\", "-").Replace(n)
	return "invoice-" + n + ".pdf"
}
