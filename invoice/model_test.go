package invoice

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadView(t *testing.T) {
	src := `{
		"invoice_number": "INV-7",
		"invoice_date": "2024-01-01",
		"issue_date": "2024-02-01",
		"subtotal": "1500.00",
		"tax_rate": 18,
		"tax_amount": "270.00",
		"discount_amount": null,
		"total": 1,
		"total_amount": "1770.00",
		"items": [
			{"description": "Design", "quantity": "3", "unit_price": 500, "amount": 12},
			{"description": "Hosting", "unit_price": "20.5"}
		]
	}`
	v, err := LoadView(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadView: %v", err)
	}

	if got := v.Date(); got != "2024-02-01" {
		t.Errorf("Expected issue_date to win, got %s", got)
	}
	if got := v.GrandTotal(); !got.Equal(decimal.NewFromInt(1770)) {
		t.Errorf("Expected total_amount to win, got %s", got)
	}
	if got := v.CurrencyCode(); got != "XAF" {
		t.Errorf("Expected default currency XAF, got %s", got)
	}
	if _, ok := v.Discount(); ok {
		t.Error("Expected no discount row for a null discount")
	}
	if !v.Subtotal.Equal(decimal.NewFromInt(1500)) || !v.TaxRate.Equal(decimal.NewFromInt(18)) {
		t.Errorf("unexpected decimals subtotal=%s rate=%s", v.Subtotal, v.TaxRate)
	}

	if len(v.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(v.Items))
	}
	if got := v.Items[0].LineAmount(); !got.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected amount recomputed as 1500, got %s", got)
	}
	if got := v.Items[1].Qty(); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected missing quantity to default to 1, got %s", got)
	}
	if got := v.Items[1].LineAmount(); !got.Equal(decimal.RequireFromString("20.5")) {
		t.Errorf("Expected 20.5, got %s", got)
	}
}

func TestLoadViewErrors(t *testing.T) {
	for _, src := range []string{`{`, `{"subtotal": "abc"}`, `{"items": {}}`} {
		if _, err := LoadView(strings.NewReader(src)); err == nil {
			t.Errorf("Expected an error for %s", src)
		}
	}
}

func TestViewFallbacks(t *testing.T) {
	v := &View{
		InvoiceDate:    "2024-01-01",
		Total:          decimal.NewNullDecimal(decimal.NewFromInt(10)),
		DiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(0)),
		Currency:       "EUR",
	}
	if v.Date() != "2024-01-01" {
		t.Errorf("Expected invoice_date fallback, got %s", v.Date())
	}
	if !v.GrandTotal().Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected total fallback, got %s", v.GrandTotal())
	}
	if _, ok := v.Discount(); ok {
		t.Error("Expected a zero discount to be hidden")
	}
	if v.CurrencyCode() != "EUR" {
		t.Errorf("Expected EUR, got %s", v.CurrencyCode())
	}
	if v.HasNotes() {
		t.Error("Expected no notes")
	}

	v.DiscountAmount = decimal.NewNullDecimal(decimal.NewFromInt(5))
	if d, ok := v.Discount(); !ok || !d.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected discount 5, got %s %v", d, ok)
	}
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"INV-2024-001": "invoice-INV-2024-001.pdf",
		"2024/07":      "invoice-2024-07.pdf",
		`a\b`:          "invoice-a-b.pdf",
		"":             "invoice.pdf",
	}
	for number, want := range tests {
		if got := Filename(&View{InvoiceNumber: number}); got != want {
			t.Errorf("Filename(%q): expected %q, got %q", number, want, got)
		}
	}
	if ContentType != "application/pdf" {
		t.Errorf("unexpected content type %s", ContentType)
	}
}

func TestQtyText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"string keeps its scale", `{"quantity": "1.50"}`, "1.50"},
		{"number keeps its scale", `{"quantity": 2.0}`, "2.0"},
		{"integer", `{"quantity": 3}`, "3"},
		{"absent defaults to one", `{}`, "1"},
		{"null defaults to one", `{"quantity": null}`, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var it LineItem
			if err := json.Unmarshal([]byte(tt.src), &it); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := it.QtyText(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
