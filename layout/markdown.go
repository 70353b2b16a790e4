package layout

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind classifies a flattened block of rich text.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
)

// Block is one unit of rich text reduced to plain lines. Level is the
// heading level or the list nesting depth.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

// NoteBlocks flattens free text that may be Markdown or HTML. Text whose
// first non-space character opens a tag is treated as HTML.
func NoteBlocks(source string) ([]Block, error) {
	if strings.HasPrefix(strings.TrimSpace(source), "<") {
		return HTMLBlocks(source)
	}
	return MarkdownBlocks(source), nil
}

// MarkdownBlocks parses source with goldmark and flattens it.
func MarkdownBlocks(source string) []Block {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var blocks []Block
	walkMarkdown(doc, src, 0, &blocks)
	return blocks
}

func walkMarkdown(node ast.Node, source []byte, depth int, blocks *[]Block) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			appendBlock(blocks, BlockHeading, n.Level, inlineText(n, source))
		case *ast.Paragraph, *ast.TextBlock:
			appendBlock(blocks, BlockParagraph, 0, inlineText(n, source))
		case *ast.List:
			walkMarkdown(n, source, depth+1, blocks)
		case *ast.ListItem:
			markdownListItem(n, source, depth, blocks)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			appendBlock(blocks, BlockParagraph, 0, blockLines(n, source))
		case *ast.Blockquote:
			walkMarkdown(n, source, depth, blocks)
		}
	}
}

// markdownListItem emits the item's leading text as a list item and walks
// any nested blocks after it.
func markdownListItem(n *ast.ListItem, source []byte, depth int, blocks *[]Block) {
	child := n.FirstChild()
	switch child.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		appendBlock(blocks, BlockListItem, depth, inlineText(child, source))
		child = child.NextSibling()
	default:
		appendBlock(blocks, BlockListItem, depth, "")
	}
	for ; child != nil; child = child.NextSibling() {
		if l, ok := child.(*ast.List); ok {
			walkMarkdown(l, source, depth+1, blocks)
			continue
		}
		appendBlock(blocks, BlockParagraph, 0, inlineText(child, source))
	}
}

func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(source))
				if t.HardLineBreak() {
					sb.WriteByte('\n')
				} else if t.SoftLineBreak() {
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(t.Value)
			case *ast.AutoLink:
				sb.Write(t.URL(source))
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func appendBlock(blocks *[]Block, kind BlockKind, level int, s string) {
	if s == "" && kind != BlockListItem {
		return
	}
	*blocks = append(*blocks, Block{Kind: kind, Level: level, Text: s})
}
