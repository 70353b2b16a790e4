package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wudi/invoicekit/invoice"
)

const invoiceJSON = `{"invoice_number": "INV-9", "items": [{"description": "Audit", "quantity": 1, "unit_price": "250"}], "subtotal": 250, "total": 250}`

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-config", "style.json", "-compress", "0", "-strict", "-v", "in.json"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.invoicePath != "in.json" || opts.configPath != "style.json" || opts.compression != 0 || !opts.strict || !opts.verbose {
		t.Errorf("unexpected options %+v", opts)
	}

	for _, args := range [][]string{{}, {"a.json", "b.json"}, {"-compress", "12", "a.json"}, {"-nope", "a.json"}} {
		if _, err := parseFlags(args, io.Discard); err == nil {
			t.Errorf("Expected a usage error for %v", args)
		}
	}
	if _, err := parseFlags([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("Expected ErrHelp, got %v", err)
	}
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "invoice.json")
	if err := os.WriteFile(in, []byte(invoiceJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "style.json")
	if err := os.WriteFile(cfg, []byte(`{"colors": {"primary": "#0F766E"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	font := filepath.Join(dir, "regular.ttf")
	if err := os.WriteFile(font, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.pdf")

	opts := options{invoicePath: in, configPath: cfg, outPath: out, fontRegular: font, compression: -1}
	if err := run(context.Background(), opts, nil, io.Discard, zap.NewNop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) || !bytes.Contains(data, []byte("/FontFile2")) {
		t.Error("Expected a PDF embedding the regular font")
	}
}

func TestRunStdio(t *testing.T) {
	var stdout bytes.Buffer
	opts := options{invoicePath: "-", outPath: "-"}
	if err := run(context.Background(), opts, strings.NewReader(invoiceJSON), &stdout, zap.NewNop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("%PDF-1.7")) {
		t.Error("Expected the PDF on stdout")
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "invoice.json")
	if err := os.WriteFile(in, []byte(invoiceJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"colors": {"primary": "teal"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts options
		want error
	}{
		{"missing invoice", options{invoicePath: filepath.Join(dir, "missing.json")}, os.ErrNotExist},
		{"strict config", options{invoicePath: in, configPath: bad, strict: true, outPath: "-"}, invoice.ErrConfigMerge},
		{"missing font", options{invoicePath: in, fontBold: filepath.Join(dir, "none.ttf")}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.opts, nil, io.Discard, zap.NewNop())
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}
