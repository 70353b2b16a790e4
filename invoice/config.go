package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/wudi/invoicekit/builder"
	"github.com/wudi/invoicekit/fonts"
)

// StyleConfig holds every visual parameter of a rendered invoice. It is a
// value: Resolve returns a fresh copy and renderers never modify it.
type StyleConfig struct {
	Colors  Colors  `json:"colors"`
	Fonts   Fonts   `json:"fonts"`
	Sizes   Sizes   `json:"sizes"`
	Spacing Spacing `json:"spacing"`
	Layout  Layout  `json:"layout"`
}

// Colors are hex color strings such as "#4F46E5".
type Colors struct {
	Primary       string `json:"primary"`
	Text          string `json:"text"`
	TextLight     string `json:"textLight"`
	TextLighter   string `json:"textLighter"`
	Background    string `json:"background"`
	BackgroundAlt string `json:"backgroundAlt"`
	Border        string `json:"border"`
	DarkBg        string `json:"darkBg"`
	White         string `json:"white"`
	Accent        string `json:"accent"`
	Error         string `json:"error"`
}

// Fonts name registered font faces.
type Fonts struct {
	Bold    string `json:"bold"`
	Regular string `json:"regular"`
}

type Sizes struct {
	Header    float64 `json:"header"`
	Subheader float64 `json:"subheader"`
	Title     float64 `json:"title"`
	Subtitle  float64 `json:"subtitle"`
	Body      float64 `json:"body"`
	Small     float64 `json:"small"`
	Tiny      float64 `json:"tiny"`
	Label     float64 `json:"label"`
}

type Spacing struct {
	Section    float64 `json:"section"`
	Subsection float64 `json:"subsection"`
	Line       float64 `json:"line"`
	SmallLine  float64 `json:"smallLine"`
	Paragraph  float64 `json:"paragraph"`
	Padding    float64 `json:"padding"`
}

// Layout is the page geometry.
type Layout struct {
	PageWidth    float64 `json:"pageWidth"`
	PageHeight   float64 `json:"pageHeight"`
	Margin       float64 `json:"margin"`
	HeaderHeight float64 `json:"headerHeight"`
	ColumnGap    float64 `json:"columnGap"`
	FooterHeight float64 `json:"footerHeight"`
	// ReserveFooter keeps flow content out of the footer band. When false
	// the footer may paint over content that ends near the page bottom.
	ReserveFooter     bool         `json:"reserveFooter"`
	TableColumnWidths ColumnWidths `json:"tableColumnWidths"`
}

// ColumnWidths are the line-items table column widths.
type ColumnWidths struct {
	Description float64 `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

// DefaultStyle returns the compiled-in style.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		Colors: Colors{
			Primary:       "#4F46E5",
			Text:          "#1F2937",
			TextLight:     "#4B5563",
			TextLighter:   "#6B7280",
			Background:    "#F3F4F6",
			BackgroundAlt: "#F9FAFB",
			Border:        "#E5E7EB",
			DarkBg:        "#111827",
			White:         "#FFFFFF",
			Accent:        "#E0E7FF",
			Error:         "#DC2626",
		},
		Fonts: Fonts{
			Bold:    fonts.HelveticaBold,
			Regular: fonts.Helvetica,
		},
		Sizes: Sizes{
			Header:    32,
			Subheader: 14,
			Title:     14,
			Subtitle:  12,
			Body:      9,
			Small:     8,
			Tiny:      7.5,
			Label:     7,
		},
		Spacing: Spacing{
			Section:    25,
			Subsection: 15,
			Line:       12,
			SmallLine:  8,
			Paragraph:  4,
			Padding:    20,
		},
		Layout: Layout{
			PageWidth:    595,
			PageHeight:   842,
			Margin:       50,
			HeaderHeight: 100,
			ColumnGap:    20,
			FooterHeight: 90,
			TableColumnWidths: ColumnWidths{
				Description: 290,
				Quantity:    40,
				UnitPrice:   60,
				Amount:      85,
			},
		},
	}
}

// Overrides is a partial StyleConfig. A nil category keeps the defaults;
// inside a category every non-nil key replaces the default value.
type Overrides struct {
	Colors  *ColorOverrides   `json:"colors,omitempty"`
	Fonts   *FontOverrides    `json:"fonts,omitempty"`
	Sizes   *SizeOverrides    `json:"sizes,omitempty"`
	Spacing *SpacingOverrides `json:"spacing,omitempty"`
	Layout  *LayoutOverrides  `json:"layout,omitempty"`
}

type ColorOverrides struct {
	Primary       *string `json:"primary,omitempty"`
	Text          *string `json:"text,omitempty"`
	TextLight     *string `json:"textLight,omitempty"`
	TextLighter   *string `json:"textLighter,omitempty"`
	Background    *string `json:"background,omitempty"`
	BackgroundAlt *string `json:"backgroundAlt,omitempty"`
	Border        *string `json:"border,omitempty"`
	DarkBg        *string `json:"darkBg,omitempty"`
	White         *string `json:"white,omitempty"`
	Accent        *string `json:"accent,omitempty"`
	Error         *string `json:"error,omitempty"`
}

type FontOverrides struct {
	Bold    *string `json:"bold,omitempty"`
	Regular *string `json:"regular,omitempty"`
}

type SizeOverrides struct {
	Header    *float64 `json:"header,omitempty"`
	Subheader *float64 `json:"subheader,omitempty"`
	Title     *float64 `json:"title,omitempty"`
	Subtitle  *float64 `json:"subtitle,omitempty"`
	Body      *float64 `json:"body,omitempty"`
	Small     *float64 `json:"small,omitempty"`
	Tiny      *float64 `json:"tiny,omitempty"`
	Label     *float64 `json:"label,omitempty"`
}

type SpacingOverrides struct {
	Section    *float64 `json:"section,omitempty"`
	Subsection *float64 `json:"subsection,omitempty"`
	Line       *float64 `json:"line,omitempty"`
	SmallLine  *float64 `json:"smallLine,omitempty"`
	Paragraph  *float64 `json:"paragraph,omitempty"`
	Padding    *float64 `json:"padding,omitempty"`
}

// LayoutOverrides replaces TableColumnWidths as a whole.
type LayoutOverrides struct {
	PageWidth         *float64      `json:"pageWidth,omitempty"`
	PageHeight        *float64      `json:"pageHeight,omitempty"`
	Margin            *float64      `json:"margin,omitempty"`
	HeaderHeight      *float64      `json:"headerHeight,omitempty"`
	ColumnGap         *float64      `json:"columnGap,omitempty"`
	FooterHeight      *float64      `json:"footerHeight,omitempty"`
	ReserveFooter     *bool         `json:"reserveFooter,omitempty"`
	TableColumnWidths *ColumnWidths `json:"tableColumnWidths,omitempty"`
}

// ParseOverrides decodes a JSON override document. Empty input yields nil
// overrides. Unknown keys are ignored.
func ParseOverrides(data []byte) (*Overrides, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigMerge, err)
	}
	return &o, nil
}

// Resolve merges o over defaults category by category. Values are not
// validated here; see Validate.
func Resolve(defaults StyleConfig, o *Overrides) StyleConfig {
	cfg := defaults
	if o == nil {
		return cfg
	}
	if c := o.Colors; c != nil {
		set(&cfg.Colors.Primary, c.Primary)
		set(&cfg.Colors.Text, c.Text)
		set(&cfg.Colors.TextLight, c.TextLight)
		set(&cfg.Colors.TextLighter, c.TextLighter)
		set(&cfg.Colors.Background, c.Background)
		set(&cfg.Colors.BackgroundAlt, c.BackgroundAlt)
		set(&cfg.Colors.Border, c.Border)
		set(&cfg.Colors.DarkBg, c.DarkBg)
		set(&cfg.Colors.White, c.White)
		set(&cfg.Colors.Accent, c.Accent)
		set(&cfg.Colors.Error, c.Error)
	}
	if f := o.Fonts; f != nil {
		set(&cfg.Fonts.Bold, f.Bold)
		set(&cfg.Fonts.Regular, f.Regular)
	}
	if s := o.Sizes; s != nil {
		set(&cfg.Sizes.Header, s.Header)
		set(&cfg.Sizes.Subheader, s.Subheader)
		set(&cfg.Sizes.Title, s.Title)
		set(&cfg.Sizes.Subtitle, s.Subtitle)
		set(&cfg.Sizes.Body, s.Body)
		set(&cfg.Sizes.Small, s.Small)
		set(&cfg.Sizes.Tiny, s.Tiny)
		set(&cfg.Sizes.Label, s.Label)
	}
	if s := o.Spacing; s != nil {
		set(&cfg.Spacing.Section, s.Section)
		set(&cfg.Spacing.Subsection, s.Subsection)
		set(&cfg.Spacing.Line, s.Line)
		set(&cfg.Spacing.SmallLine, s.SmallLine)
		set(&cfg.Spacing.Paragraph, s.Paragraph)
		set(&cfg.Spacing.Padding, s.Padding)
	}
	if l := o.Layout; l != nil {
		set(&cfg.Layout.PageWidth, l.PageWidth)
		set(&cfg.Layout.PageHeight, l.PageHeight)
		set(&cfg.Layout.Margin, l.Margin)
		set(&cfg.Layout.HeaderHeight, l.HeaderHeight)
		set(&cfg.Layout.ColumnGap, l.ColumnGap)
		set(&cfg.Layout.FooterHeight, l.FooterHeight)
		set(&cfg.Layout.ReserveFooter, l.ReserveFooter)
		set(&cfg.Layout.TableColumnWidths, l.TableColumnWidths)
	}
	return cfg
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate reports geometry that cannot lay out and colors that cannot be
// parsed. Every problem is reported; each wraps ErrConfigMerge.
func (s StyleConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrConfigMerge}, args...)...))
	}

	l := s.Layout
	if l.PageWidth <= 0 || l.PageHeight <= 0 {
		bad("page size %vx%v", l.PageWidth, l.PageHeight)
	}
	if l.Margin < 0 || 2*l.Margin >= l.PageWidth || 2*l.Margin >= l.PageHeight {
		bad("margin %v leaves no writable area", l.Margin)
	}
	if l.HeaderHeight < 0 || l.FooterHeight < 0 {
		bad("header height %v, footer height %v", l.HeaderHeight, l.FooterHeight)
	}
	w := l.TableColumnWidths
	if w.Description <= 0 || w.Quantity <= 0 || w.UnitPrice <= 0 || w.Amount <= 0 {
		bad("table column widths %+v", w)
	}

	sizes := map[string]float64{
		"header": s.Sizes.Header, "subheader": s.Sizes.Subheader, "title": s.Sizes.Title,
		"subtitle": s.Sizes.Subtitle, "body": s.Sizes.Body, "small": s.Sizes.Small,
		"tiny": s.Sizes.Tiny, "label": s.Sizes.Label,
	}
	for _, name := range slices.Sorted(maps.Keys(sizes)) {
		if sizes[name] <= 0 {
			bad("font size %s is %v", name, sizes[name])
		}
	}

	if s.Fonts.Bold == "" || s.Fonts.Regular == "" {
		bad("font names %q and %q", s.Fonts.Bold, s.Fonts.Regular)
	}

	c := s.Colors
	colors := map[string]string{
		"primary": c.Primary, "text": c.Text, "textLight": c.TextLight, "textLighter": c.TextLighter,
		"background": c.Background, "backgroundAlt": c.BackgroundAlt, "border": c.Border,
		"darkBg": c.DarkBg, "white": c.White, "accent": c.Accent, "error": c.Error,
	}
	for _, name := range slices.Sorted(maps.Keys(colors)) {
		if _, ok := ParseColor(colors[name]); !ok {
			bad("color %s %q", name, colors[name])
		}
	}
	return errors.Join(errs...)
}

// ParseColor parses "#RGB" or "#RRGGBB". It returns black and false for
// anything else.
func ParseColor(s string) (builder.Color, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return builder.Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return builder.Color{}, false
	}
	return builder.RGB255(uint8(v>>16), uint8(v>>8), uint8(v)), true
}

// color resolves a configured color; unparsable values paint black.
func color(s string) builder.Color {
	c, _ := ParseColor(s)
	return c
}
