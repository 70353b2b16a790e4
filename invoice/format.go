package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatNumber renders d with two decimals, a comma decimal separator and
// spaces between thousands: 3000 becomes "3 000,00".
func FormatNumber(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var sb strings.Builder
	sb.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(',')
	sb.WriteString(frac)
	return sb.String()
}

// FormatCurrency renders an amount with its currency. XAF and FCFA amounts
// are suffixed with "FCFA"; other codes prefix the number.
func FormatCurrency(d decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	n := FormatNumber(d)
	if code == "XAF" || code == "FCFA" {
		return n + " FCFA"
	}
	return code + " " + n
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatDate renders a stored date as "January 2, 2006". An empty value
// yields "N/A" and an unparsable one "Invalid Date".
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return "Invalid Date"
}

// taxLabel renders the tax row label using the rate's shortest form.
func taxLabel(rate decimal.Decimal) string {
	return "Tax (" + rate.String() + "%):"
}
