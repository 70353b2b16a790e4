// Command invoicepdf renders an invoice JSON document to PDF.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/invoice"
	"github.com/wudi/invoicekit/observability"
)

// Names the -font-regular and -font-bold files are registered under.
const (
	customRegular = "Custom-Regular"
	customBold    = "Custom-Bold"
)

type options struct {
	invoicePath string
	configPath  string
	outPath     string
	fontRegular string
	fontBold    string
	compression int
	strict      bool
	verbose     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "invoicepdf: %v\n", err)
		os.Exit(2)
	}
	logger, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoicepdf: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), opts, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("render invoice", zap.Error(err))
		fmt.Fprintf(os.Stderr, "invoicepdf: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("invoicepdf", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: invoicepdf [flags] <invoice.json|->\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "Style override JSON file")
	fs.StringVar(&opts.outPath, "out", "", "Output file, - for stdout (default invoice-<number>.pdf)")
	fs.StringVar(&opts.fontRegular, "font-regular", "", "TrueType file used for regular text")
	fs.StringVar(&opts.fontBold, "font-bold", "", "TrueType file used for bold text")
	fs.IntVar(&opts.compression, "compress", -1, "Flate level 0-9 for streams, -1 for the default")
	fs.BoolVar(&opts.strict, "strict", false, "Fail on invalid style configuration")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("expected one invoice file, got %d", fs.NArg())
	}
	if opts.compression < -1 || opts.compression > 9 {
		return options{}, fmt.Errorf("compression level %d out of range", opts.compression)
	}
	opts.invoicePath = fs.Arg(0)
	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	view, err := loadView(opts.invoicePath, stdin)
	if err != nil {
		return err
	}

	var overrides *invoice.Overrides
	if opts.configPath != "" {
		data, err := os.ReadFile(opts.configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if overrides, err = invoice.ParseOverrides(data); err != nil {
			return err
		}
	}

	registry := fonts.NewRegistry()
	for _, f := range []struct {
		path, name string
		apply      func(*invoice.FontOverrides, *string)
	}{
		{opts.fontRegular, customRegular, func(o *invoice.FontOverrides, n *string) { o.Regular = n }},
		{opts.fontBold, customBold, func(o *invoice.FontOverrides, n *string) { o.Bold = n }},
	} {
		if f.path == "" {
			continue
		}
		if err := registry.RegisterTrueTypeFile(f.name, f.path); err != nil {
			return err
		}
		if overrides == nil {
			overrides = &invoice.Overrides{}
		}
		if overrides.Fonts == nil {
			overrides.Fonts = &invoice.FontOverrides{}
		}
		name := f.name
		f.apply(overrides.Fonts, &name)
	}

	ropts := []invoice.Option{
		invoice.WithLogger(observability.NewZapLogger(logger)),
		invoice.WithFonts(registry),
		invoice.WithCompression(opts.compression),
	}
	if opts.strict {
		ropts = append(ropts, invoice.WithStrictConfig())
	}
	pdf, err := invoice.NewRenderer(ropts...).Render(ctx, view, overrides)
	if err != nil {
		return err
	}

	out := opts.outPath
	if out == "" {
		out = invoice.Filename(view)
	}
	if out == "-" {
		_, err := stdout.Write(pdf)
		return err
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	logger.Info("wrote invoice", zap.String("path", out), zap.Int("bytes", len(pdf)))
	return nil
}

func loadView(path string, stdin io.Reader) (*invoice.View, error) {
	if path == "-" {
		return invoice.LoadView(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open invoice: %w", err)
	}
	defer f.Close()
	return invoice.LoadView(f)
}
