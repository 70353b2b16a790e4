package invoice

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wudi/invoicekit/layout"
)

const (
	tableHeaderHeight = 20
	totalsRowHeight   = 20
	totalDueHeight    = 25
	dividerAdvance    = 15
	minRowHeight      = 30
	rowPadding        = 16
	cellLineGap       = 2
)

// stripe returns the row background for a running row index. The index
// continues across pages and into the totals rows.
func (s *sheet) stripe(index int) string {
	if index%2 == 0 {
		return s.cfg.Colors.White
	}
	return s.cfg.Colors.BackgroundAlt
}

func (s *sheet) tableX() float64 { return s.cfg.Layout.Margin }

// drawItems draws the services table. The header band is drawn once; rows
// that do not fit start a new page at the top margin.
func (s *sheet) drawItems() error {
	sz, sp, c := s.cfg.Sizes, s.cfg.Spacing, s.cfg.Colors
	w := s.cfg.Layout.TableColumnWidths
	x, width := s.tableX(), s.contentWidth()

	s.cursor.Advance(sp.Section)
	s.cursor.EnsureSpace(100)
	if err := s.text("Services Provided", x, s.cursor.Position(), layout.TextBox{Style: s.bold(sz.Title, c.Text)}); err != nil {
		return err
	}
	s.cursor.Advance(sp.Section)

	top := s.cursor.Position()
	s.canvas.Rect(x, top, width, tableHeaderHeight, color(c.BackgroundAlt))
	head := s.bold(sz.Small, c.TextLight)
	headers := []struct {
		text  string
		x, w  float64
		align layout.Align
	}{
		{"DESCRIPTION", x + 5, w.Description, layout.AlignLeft},
		{"QTY", x + w.Description + 5, w.Quantity, layout.AlignCenter},
		{"UNIT PRICE", x + w.Description + w.Quantity + 5, w.UnitPrice, layout.AlignRight},
		{"AMOUNT", x + w.Description + w.Quantity + w.UnitPrice + 5, w.Amount, layout.AlignRight},
	}
	for _, h := range headers {
		if err := s.text(h.text, h.x, top+6, layout.TextBox{Style: head, Width: h.w, Align: h.align}); err != nil {
			return err
		}
	}
	s.cursor.Advance(tableHeaderHeight)

	for i, item := range s.view.Items {
		if err := s.drawItem(i, item); err != nil {
			return err
		}
	}
	s.rows = len(s.view.Items)
	return nil
}

func (s *sheet) drawItem(index int, item LineItem) error {
	sz, sp, c := s.cfg.Sizes, s.cfg.Spacing, s.cfg.Colors
	w := s.cfg.Layout.TableColumnWidths
	x, width := s.tableX(), s.contentWidth()
	textWidth := w.Description - 10

	description := orDefault(item.Description, "Service Description")
	descStyle := s.bold(sz.Body, c.Text)
	descStyle.LineGap = cellLineGap
	descHeight, err := s.measure(description, textWidth, descStyle)
	if err != nil {
		return err
	}

	detail := strings.TrimSpace(item.DetailedDescription)
	detailStyle := s.regular(sz.Tiny, c.TextLighter)
	detailStyle.LineGap = cellLineGap
	var detailHeight float64
	if detail != "" {
		h, err := s.measure(detail, textWidth, detailStyle)
		if err != nil {
			return err
		}
		detailHeight = h + sp.Paragraph
	}

	rowHeight := math.Max(descHeight+detailHeight+rowPadding, minRowHeight)
	s.cursor.EnsureSpace(rowHeight)
	rowY := s.cursor.Position()
	s.canvas.Rect(x, rowY, width, rowHeight, color(s.stripe(index)))

	if err := s.text(description, x+5, rowY+8, layout.TextBox{Style: descStyle, Width: textWidth}); err != nil {
		return err
	}
	if detail != "" {
		y := rowY + 8 + descHeight + sp.Paragraph
		if err := s.text(detail, x+5, y, layout.TextBox{Style: detailStyle, Width: textWidth}); err != nil {
			return err
		}
	}

	qtyX := x + w.Description + 5
	priceX := qtyX + w.Quantity
	amountX := priceX + w.UnitPrice
	cells := []struct {
		text  string
		x, w  float64
		style layout.TextStyle
		align layout.Align
	}{
		{item.QtyText(), qtyX, w.Quantity, s.regular(sz.Body, c.Text), layout.AlignCenter},
		{FormatNumber(item.Price()), priceX, w.UnitPrice, s.regular(sz.Body, c.Text), layout.AlignRight},
		{FormatNumber(item.LineAmount()), amountX, w.Amount, s.bold(sz.Body, c.Text), layout.AlignRight},
	}
	for _, cell := range cells {
		if err := s.text(cell.text, cell.x, rowY+8, layout.TextBox{Style: cell.style, Width: cell.w, Align: cell.align}); err != nil {
			return err
		}
	}
	s.cursor.Advance(rowHeight)
	return nil
}

type totalRow struct {
	label string
	value string
	color string
}

func (s *sheet) totalRows() []totalRow {
	v, c := s.view, s.cfg.Colors
	rows := []totalRow{
		{"Subtotal:", FormatNumber(v.Subtotal), c.Text},
		{taxLabel(v.TaxRate), FormatNumber(v.TaxAmount), c.Text},
	}
	if d, ok := v.Discount(); ok {
		rows = append(rows, totalRow{"Discount:", "-" + FormatNumber(d), c.Error})
	}
	return rows
}

// totalsHeight is the height of the whole totals block, which is kept on
// one page.
func totalsHeight(rows int) float64 {
	return float64(rows)*totalsRowHeight + dividerAdvance + totalDueHeight
}

// drawTotals draws the subtotal, tax and discount rows, a divider and the
// amount due.
func (s *sheet) drawTotals() error {
	sz, c := s.cfg.Sizes, s.cfg.Colors
	w := s.cfg.Layout.TableColumnWidths
	x, width := s.tableX(), s.contentWidth()
	labelX := x + 5
	labelWidth := w.Description + w.Quantity
	valueX := labelX + labelWidth
	valueWidth := w.Amount + w.UnitPrice

	rows := s.totalRows()
	s.cursor.EnsureSpace(totalsHeight(len(rows)))

	for i, row := range rows {
		y := s.cursor.Position()
		s.canvas.Rect(x, y, width, totalsRowHeight, color(s.stripe(s.rows+i)))
		label := layout.TextBox{Style: s.regular(sz.Body, c.TextLight), Width: labelWidth}
		if err := s.text(row.label, labelX, y+4, label); err != nil {
			return err
		}
		value := layout.TextBox{Style: s.bold(sz.Body, row.color), Width: valueWidth, Align: layout.AlignRight}
		if err := s.text(row.value, valueX, y+4, value); err != nil {
			return err
		}
		s.cursor.Advance(totalsRowHeight)
	}

	dividerY := s.cursor.Position() + 5
	s.canvas.Line(x, dividerY, x+width, dividerY, 2, color(c.Primary))
	s.cursor.Advance(dividerAdvance)

	y := s.cursor.Position()
	s.canvas.Rect(x, y, width, totalDueHeight, color(s.stripe(s.rows+len(rows))))
	label := layout.TextBox{Style: s.bold(sz.Title, c.Primary), Width: labelWidth}
	if err := s.text("TOTAL DUE:", labelX, y+5, label); err != nil {
		return err
	}
	value := layout.TextBox{Style: s.bold(sz.Title, c.Text), Width: valueWidth, Align: layout.AlignRight}
	if err := s.text(FormatCurrency(s.view.GrandTotal(), s.view.CurrencyCode()), valueX, y+5, value); err != nil {
		return err
	}
	s.cursor.Advance(totalDueHeight)
	return nil
}

// sumItems is the subtotal implied by the line items.
func sumItems(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineAmount())
	}
	return sum
}
