package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLBlocks parses an HTML fragment and flattens headings, paragraphs and
// list items. Loose text between them becomes paragraphs.
func HTMLBlocks(source string) ([]Block, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	var blocks []Block
	walkHTML(doc, 0, &blocks)
	return blocks, nil
}

func walkHTML(n *html.Node, depth int, blocks *[]Block) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			appendBlock(blocks, BlockParagraph, 0, extractText(c))
			continue
		case html.ElementNode:
		default:
			walkHTML(c, depth, blocks)
			continue
		}
		switch c.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			appendBlock(blocks, BlockHeading, headingLevel(c.DataAtom), extractText(c))
		case atom.P, atom.Pre, atom.Blockquote:
			appendBlock(blocks, BlockParagraph, 0, extractText(c))
		case atom.Ul, atom.Ol:
			walkHTML(c, depth+1, blocks)
		case atom.Li:
			htmlListItem(c, depth, blocks)
		case atom.Script, atom.Style, atom.Head:
		default:
			walkHTML(c, depth, blocks)
		}
	}
}

// htmlListItem emits the item's own text and walks nested lists after it.
func htmlListItem(n *html.Node, depth int, blocks *[]Block) {
	var sb strings.Builder
	var nested []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
			nested = append(nested, c)
			continue
		}
		writeText(&sb, c)
	}
	appendBlock(blocks, BlockListItem, depth, collapseSpace(sb.String()))
	for _, l := range nested {
		walkHTML(l, depth+1, blocks)
	}
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	}
	return 6
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return collapseSpace(sb.String())
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch {
	case n.Type == html.TextNode:
		sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case n.Type == html.ElementNode && n.DataAtom == atom.Br:
		sb.WriteByte('\n')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
}

// collapseSpace folds runs of white space to one space per line, keeping
// line breaks from <br>.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
