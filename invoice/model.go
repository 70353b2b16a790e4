package invoice

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a view carries no currency code.
const DefaultCurrency = "XAF"

// View is the read-only invoice record the renderer consumes. Field names
// follow the invoice store's columns. Decimal fields accept JSON numbers and
// numeric strings.
type View struct {
	HeaderSubtitle string `json:"header_subtitle,omitempty"`

	ProviderName    string `json:"provider_name"`
	ProviderEmail   string `json:"provider_email"`
	ProviderPhone   string `json:"provider_phone"`
	ProviderAddress string `json:"provider_address"`

	ClientName    string `json:"client_name"`
	ClientAddress string `json:"client_address"`
	ClientCity    string `json:"client_city"`
	ClientState   string `json:"client_state"`
	ClientCountry string `json:"client_country"`
	ClientEmail   string `json:"client_email"`

	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	IssueDate     string `json:"issue_date,omitempty"`
	DueDate       string `json:"due_date"`

	Subtotal       decimal.Decimal     `json:"subtotal"`
	TaxRate        decimal.Decimal     `json:"tax_rate"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
	Total          decimal.NullDecimal `json:"total"`
	TotalAmount    decimal.NullDecimal `json:"total_amount"`
	Currency       string              `json:"currency,omitempty"`

	Notes          string `json:"notes,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentDetails string `json:"payment_details,omitempty"`
	Status         string `json:"status,omitempty"`

	Items []LineItem `json:"items"`
}

// LineItem is one billed service.
type LineItem struct {
	Description         string              `json:"description"`
	DetailedDescription string              `json:"detailed_description,omitempty"`
	Quantity            decimal.NullDecimal `json:"quantity"`
	UnitPrice           decimal.NullDecimal `json:"unit_price"`
	// Amount is accepted for compatibility and never displayed; rows show
	// Qty() times Price().
	Amount decimal.NullDecimal `json:"amount"`
}

// LoadView decodes a View from JSON.
func LoadView(r io.Reader) (*View, error) {
	var v View
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	return &v, nil
}

// Date returns the issue date, preferring issue_date over invoice_date.
func (v *View) Date() string {
	if v.IssueDate != "" {
		return v.IssueDate
	}
	return v.InvoiceDate
}

// GrandTotal returns total_amount when present, otherwise total.
func (v *View) GrandTotal() decimal.Decimal {
	if v.TotalAmount.Valid {
		return v.TotalAmount.Decimal
	}
	return v.Total.Decimal
}

// CurrencyCode returns the currency, defaulting to XAF.
func (v *View) CurrencyCode() string {
	if v.Currency == "" {
		return DefaultCurrency
	}
	return v.Currency
}

// Discount reports the discount and whether a discount row is shown.
func (v *View) Discount() (decimal.Decimal, bool) {
	if !v.DiscountAmount.Valid || !v.DiscountAmount.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return v.DiscountAmount.Decimal, true
}

// HasNotes reports whether the view carries notes or payment details.
func (v *View) HasNotes() bool {
	return v.Notes != "" || v.PaymentDetails != ""
}

// Qty returns the quantity, 1 when absent.
func (it LineItem) Qty() decimal.Decimal {
	if !it.Quantity.Valid {
		return decimal.NewFromInt(1)
	}
	return it.Quantity.Decimal
}

// QtyText formats the quantity with the scale it was given in, so "1.50"
// stays "1.50" and 2 stays "2".
func (it LineItem) QtyText() string {
	q := it.Qty()
	if exp := q.Exponent(); exp < 0 {
		return q.StringFixed(-exp)
	}
	return q.String()
}

// Price returns the unit price, 0 when absent.
func (it LineItem) Price() decimal.Decimal { return it.UnitPrice.Decimal }

// LineAmount is the row amount shown in the table.
func (it LineItem) LineAmount() decimal.Decimal { return it.Qty().Mul(it.Price()) }
