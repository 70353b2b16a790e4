package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarkdownBlocks(t *testing.T) {
	md := `# Terms

Payment due within **30 days**.
Late fees apply.

- Bank transfer
- Mobile money
  - MTN
  - Orange

` + "```" + `
IBAN CM21 0000
` + "```"

	want := []Block{
		{Kind: BlockHeading, Level: 1, Text: "Terms"},
		{Kind: BlockParagraph, Text: "Payment due within 30 days. Late fees apply."},
		{Kind: BlockListItem, Level: 1, Text: "Bank transfer"},
		{Kind: BlockListItem, Level: 1, Text: "Mobile money"},
		{Kind: BlockListItem, Level: 2, Text: "MTN"},
		{Kind: BlockListItem, Level: 2, Text: "Orange"},
		{Kind: BlockParagraph, Text: "IBAN CM21 0000"},
	}
	if diff := cmp.Diff(want, MarkdownBlocks(md)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLBlocks(t *testing.T) {
	src := `<h2>Terms</h2>
<p>Payment due
   within <b>30 days</b>.<br>Late fees apply.</p>
<ul>
	<li>Bank transfer</li>
	<li>Mobile money<ul><li>MTN</li></ul></li>
</ul>
<script>ignored()</script>
Thanks`

	got, err := HTMLBlocks(src)
	if err != nil {
		t.Fatalf("HTMLBlocks failed: %v", err)
	}
	want := []Block{
		{Kind: BlockHeading, Level: 2, Text: "Terms"},
		{Kind: BlockParagraph, Text: "Payment due within 30 days.\nLate fees apply."},
		{Kind: BlockListItem, Level: 1, Text: "Bank transfer"},
		{Kind: BlockListItem, Level: 1, Text: "Mobile money"},
		{Kind: BlockListItem, Level: 2, Text: "MTN"},
		{Kind: BlockParagraph, Text: "Thanks"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestNoteBlocksDetectsHTML(t *testing.T) {
	t.Run("html", func(t *testing.T) {
		got, _ := NoteBlocks("  <p>Hi</p>")
		if len(got) != 1 || got[0].Text != "Hi" {
			t.Errorf("Expected one paragraph, got %+v", got)
		}
	})
	t.Run("plain", func(t *testing.T) {
		got, _ := NoteBlocks("Thanks for your trust")
		if len(got) != 1 || got[0].Kind != BlockParagraph || got[0].Text != "Thanks for your trust" {
			t.Errorf("Expected one paragraph, got %+v", got)
		}
	})
}
