package invoice

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wudi/invoicekit/fonts"
	"github.com/wudi/invoicekit/layout"
)

// sheet is the state of one render: the canvas being drawn, the flow
// cursor, the resolved style and the invoice.
type sheet struct {
	canvas *layout.Canvas
	// measurer sizes text before it is placed; it must wrap exactly as
	// canvas draws.
	measurer layout.Measurer
	cursor   *layout.Cursor
	view     *View
	cfg      StyleConfig
	// rows is the number of table rows drawn; totals continue the
	// stripe pattern from it.
	rows int
}

type section struct {
	name string
	draw func() error
}

// sections lists the renderers in drawing order.
func (s *sheet) sections() []section {
	return []section{
		{"header", s.drawHeader},
		{"participants", s.drawParticipants},
		{"details", s.drawDetails},
		{"items", s.drawItems},
		{"totals", s.drawTotals},
		{"notes", s.drawNotes},
		{"footer", s.drawFooter},
	}
}

func (s *sheet) bold(size float64, hex string) layout.TextStyle {
	return layout.TextStyle{Font: s.cfg.Fonts.Bold, Size: size, Color: color(hex)}
}

func (s *sheet) regular(size float64, hex string) layout.TextStyle {
	return layout.TextStyle{Font: s.cfg.Fonts.Regular, Size: size, Color: color(hex)}
}

// text draws a text box. Font lookup and encoding failures are reported
// as measurement errors, everything else as drawing errors.
func (s *sheet) text(text string, x, y float64, box layout.TextBox) error {
	_, err := s.canvas.Text(text, x, y, box)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fonts.ErrUnknownFont), errors.Is(err, fonts.ErrInvalidText):
		return fmt.Errorf("%w: %w", ErrMeasurement, err)
	default:
		return fmt.Errorf("%w: %w", ErrDrawing, err)
	}
}

func (s *sheet) measure(text string, width float64, style layout.TextStyle) (float64, error) {
	h, err := s.measurer.HeightOfString(text, width, style)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}
	return h, nil
}

// contentWidth is the page width inside the side margins.
func (s *sheet) contentWidth() float64 { return s.cfg.Layout.PageWidth - 2*s.cfg.Layout.Margin }

// drawHeader paints the title band on the first page. It does not move the
// cursor; the cursor starts below the band.
func (s *sheet) drawHeader() error {
	l, c := s.cfg.Layout, s.cfg.Colors
	s.canvas.Rect(0, 0, l.PageWidth, l.HeaderHeight, color(c.Primary))
	if err := s.text("INVOICE", l.Margin, 40, layout.TextBox{Style: s.bold(s.cfg.Sizes.Header, c.White)}); err != nil {
		return err
	}
	subtitle := orDefault(s.view.HeaderSubtitle, "Professional Services")
	return s.text(subtitle, l.Margin, 75, layout.TextBox{Style: s.regular(s.cfg.Sizes.Subheader, c.Accent)})
}

// participant is one column of the provider/client block.
type participant struct {
	x     float64
	label string
	name  string
	lines []string
}

func (s *sheet) participants() (provider, client participant) {
	v := s.view
	provider = participant{
		x:     s.cfg.Layout.Margin,
		label: "FROM (PROVIDER)",
		name:  orDefault(v.ProviderName, "Your Name"),
		lines: fieldLines(v.ProviderAddress, v.ProviderEmail, v.ProviderPhone),
	}
	client = participant{
		x:     s.cfg.Layout.PageWidth/2 + s.cfg.Spacing.Subsection,
		label: "BILL TO (CLIENT)",
		name:  orDefault(v.ClientName, "Client Name"),
		lines: fieldLines(v.ClientAddress, joinNonEmpty(", ", v.ClientCity, v.ClientState), v.ClientCountry, v.ClientEmail),
	}
	return provider, client
}

func (s *sheet) participantWidth() float64 {
	return (s.contentWidth() - s.cfg.Spacing.Subsection) / 2
}

// participantHeight is the vertical extent drawParticipant will consume.
func (s *sheet) participantHeight(p participant) (float64, error) {
	sp := s.cfg.Spacing
	h := sp.Subsection + sp.Line + sp.SmallLine
	style := s.regular(s.cfg.Sizes.Body, s.cfg.Colors.TextLight)
	for _, line := range p.lines {
		lh, err := s.measure(line, s.participantWidth(), style)
		if err != nil {
			return 0, err
		}
		h += lh + sp.Paragraph
	}
	return h, nil
}

// drawParticipant draws one column from y and returns the y below it.
func (s *sheet) drawParticipant(p participant, y float64) (float64, error) {
	sz, sp, c := s.cfg.Sizes, s.cfg.Spacing, s.cfg.Colors
	width := s.participantWidth()

	if err := s.text(p.label, p.x, y, layout.TextBox{Style: s.bold(sz.Label, c.Primary)}); err != nil {
		return 0, err
	}
	y += sp.Subsection
	if err := s.text(p.name, p.x, y, layout.TextBox{Style: s.bold(sz.Body+1, c.Text), Width: width}); err != nil {
		return 0, err
	}
	y += sp.Line + sp.SmallLine

	style := s.regular(sz.Body, c.TextLight)
	for _, line := range p.lines {
		h, err := s.measure(line, width, style)
		if err != nil {
			return 0, err
		}
		if err := s.text(line, p.x, y, layout.TextBox{Style: style, Width: width}); err != nil {
			return 0, err
		}
		y += h + sp.Paragraph
	}
	return y, nil
}

// drawParticipants draws provider and client side by side from the same y.
// Both columns are measured first; when the taller one does not fit, both
// move to a new page together.
func (s *sheet) drawParticipants() error {
	provider, client := s.participants()
	ph, err := s.participantHeight(provider)
	if err != nil {
		return err
	}
	ch, err := s.participantHeight(client)
	if err != nil {
		return err
	}
	s.cursor.EnsureSpace(math.Max(ph, ch))

	top := s.cursor.Position()
	leftY, err := s.drawParticipant(provider, top)
	if err != nil {
		return err
	}
	rightY, err := s.drawParticipant(client, top)
	if err != nil {
		return err
	}
	s.cursor.SetPosition(math.Max(leftY, rightY))
	return nil
}

const detailsBoxHeight = 35

// drawDetails draws the number/date/due-date band.
func (s *sheet) drawDetails() error {
	sz, sp, c := s.cfg.Sizes, s.cfg.Spacing, s.cfg.Colors
	s.cursor.EnsureSpace(detailsBoxHeight + sp.Section)

	top := s.cursor.Position() + sp.Subsection
	width := s.contentWidth()
	cell := width / 3
	s.canvas.Rect(s.cfg.Layout.Margin, top, width, detailsBoxHeight, color(c.Background))

	details := []struct{ label, value string }{
		{"INVOICE NUMBER", orDefault(s.view.InvoiceNumber, "AUTO-GENERATED")},
		{"INVOICE DATE", FormatDate(s.view.Date())},
		{"DUE DATE", FormatDate(s.view.DueDate)},
	}
	for i, d := range details {
		x := s.cfg.Layout.Margin + cell*float64(i)
		label := layout.TextBox{Style: s.bold(sz.Label, c.TextLighter), Width: cell, Align: layout.AlignCenter}
		if err := s.text(d.label, x, top+8, label); err != nil {
			return err
		}
		value := layout.TextBox{Style: s.bold(sz.Body, c.Text), Width: cell, Align: layout.AlignCenter}
		if err := s.text(d.value, x, top+20, value); err != nil {
			return err
		}
	}
	s.cursor.SetPosition(top + detailsBoxHeight)
	return nil
}

// drawFooter anchors the payment band to the bottom of the current page.
func (s *sheet) drawFooter() error {
	l, c := s.cfg.Layout, s.cfg.Colors
	top := l.PageHeight - l.FooterHeight
	s.canvas.Rect(0, top, l.PageWidth, l.FooterHeight, color(c.DarkBg))

	centered := func(style layout.TextStyle) layout.TextBox {
		return layout.TextBox{Style: style, Width: l.PageWidth, Align: layout.AlignCenter}
	}
	y := top + 15
	if err := s.text("Payment Information", 0, y, centered(s.bold(s.cfg.Sizes.Subtitle, c.White))); err != nil {
		return err
	}
	y += 16
	if m := strings.TrimSpace(s.view.PaymentMethod); m != "" {
		if err := s.text("Payment method: "+m, 0, y, centered(s.regular(8, c.Accent))); err != nil {
			return err
		}
		y += 12
	}
	return s.text("Thank you for your business!", 0, y, centered(s.regular(8, c.White)))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// fieldLines splits optional multi-line fields into trimmed, non-blank
// lines.
func fieldLines(fields ...string) []string {
	var lines []string
	for _, f := range fields {
		f = strings.ReplaceAll(f, "\r\n", "\n")
		for _, line := range strings.Split(f, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
