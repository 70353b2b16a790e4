package invoice

import (
	"fmt"

	"github.com/wudi/invoicekit/layout"
)

const listIndent = 12

// noteBlocks flattens the notes and payment details into titled blocks.
func (s *sheet) noteBlocks() ([]layout.Block, error) {
	var blocks []layout.Block
	if s.view.Notes != "" {
		notes, err := layout.NoteBlocks(s.view.Notes)
		if err != nil {
			return nil, fmt.Errorf("%w: notes: %w", ErrMeasurement, err)
		}
		if len(notes) > 0 {
			blocks = append(blocks, layout.Block{Kind: layout.BlockHeading, Level: 1, Text: "Notes"})
			blocks = append(blocks, notes...)
		}
	}
	if lines := fieldLines(s.view.PaymentDetails); len(lines) > 0 {
		blocks = append(blocks, layout.Block{Kind: layout.BlockHeading, Level: 1, Text: "Payment Details"})
		for _, line := range lines {
			blocks = append(blocks, layout.Block{Kind: layout.BlockParagraph, Text: line})
		}
	}
	return blocks, nil
}

// blockBox returns the indentation and text box of a block.
func (s *sheet) blockBox(b layout.Block) (float64, layout.TextBox) {
	sz, c := s.cfg.Sizes, s.cfg.Colors
	width := s.contentWidth()
	switch b.Kind {
	case layout.BlockHeading:
		size := sz.Body + 1
		if b.Level == 1 {
			size = sz.Subtitle
		}
		return 0, layout.TextBox{Style: s.bold(size, c.Text), Width: width}
	case layout.BlockListItem:
		indent := listIndent * float64(b.Level)
		return indent, layout.TextBox{Style: s.regular(sz.Body, c.TextLight), Width: width - indent}
	default:
		return 0, layout.TextBox{Style: s.regular(sz.Body, c.TextLight), Width: width}
	}
}

// drawNotes draws the notes and payment details, when the invoice has any,
// below the totals. Every block is measured before it is placed.
func (s *sheet) drawNotes() error {
	if !s.view.HasNotes() {
		return nil
	}
	blocks, err := s.noteBlocks()
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}
	sp := s.cfg.Spacing
	s.cursor.Advance(sp.Section)
	for i, b := range blocks {
		text := blockText(b)
		indent, box := s.blockBox(b)
		h, err := s.measure(text, box.Width, box.Style)
		if err != nil {
			return err
		}
		need := h
		// keep a heading with the block that follows it
		if b.Kind == layout.BlockHeading && i+1 < len(blocks) {
			next := blocks[i+1]
			_, nbox := s.blockBox(next)
			nh, err := s.measure(blockText(next), nbox.Width, nbox.Style)
			if err != nil {
				return err
			}
			need += sp.Paragraph + nh
		}
		s.cursor.EnsureSpace(need)
		if err := s.text(text, s.cfg.Layout.Margin+indent, s.cursor.Position(), box); err != nil {
			return err
		}
		s.cursor.Advance(h + sp.Paragraph)
	}
	return nil
}

func blockText(b layout.Block) string {
	if b.Kind == layout.BlockListItem {
		return "• " + b.Text
	}
	return b.Text
}
