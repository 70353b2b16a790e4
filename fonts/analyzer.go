package fonts

import (
	"github.com/wudi/invoicekit/ir/semantic"
)

// Analyzer identifies used glyphs in a document.
type Analyzer struct {
	// font -> set of used glyph ids (composite) or codes (simple)
	UsedGlyphs map[*semantic.Font]map[int]bool
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		UsedGlyphs: make(map[*semantic.Font]map[int]bool),
	}
}

func (a *Analyzer) Analyze(doc *semantic.Document) {
	for _, page := range doc.Pages {
		a.analyzePage(page)
	}
}

func (a *Analyzer) analyzePage(page *semantic.Page) {
	var current *semantic.Font
	for _, op := range page.Operations() {
		switch op.Operator {
		case "Tf":
			if len(op.Operands) > 0 && page.Resources != nil {
				if name, ok := op.Operands[0].(semantic.NameOperand); ok {
					current = page.Resources.Fonts[name.Value]
				}
			}
		case "Tj":
			if current != nil && len(op.Operands) > 0 {
				if str, ok := op.Operands[0].(semantic.StringOperand); ok {
					a.recordGlyphs(current, str.Value)
				}
			}
		case "TJ":
			if current != nil && len(op.Operands) > 0 {
				if arr, ok := op.Operands[0].(semantic.ArrayOperand); ok {
					for _, item := range arr.Values {
						if str, ok := item.(semantic.StringOperand); ok {
							a.recordGlyphs(current, str.Value)
						}
					}
				}
			}
		}
	}
}

func (a *Analyzer) recordGlyphs(font *semantic.Font, data []byte) {
	used := a.UsedGlyphs[font]
	if used == nil {
		used = make(map[int]bool)
		a.UsedGlyphs[font] = used
	}
	if font.Composite() {
		for i := 0; i+1 < len(data); i += 2 {
			used[int(data[i])<<8|int(data[i+1])] = true
		}
		return
	}
	for _, b := range data {
		used[int(b)] = true
	}
}
