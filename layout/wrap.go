package layout

import (
	"strings"

	"github.com/wudi/invoicekit/fonts"
)

// wrap splits text into lines no wider than maxWidth. Explicit line breaks
// always start a new line; paragraphs break greedily at spaces, and a word
// wider than the box is broken between characters. maxWidth <= 0 keeps
// every paragraph on one line. Empty text has no lines.
func wrap(face fonts.Face, text string, maxWidth, size float64) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	measure := func(s string) (float64, error) {
		return fonts.MeasureString(face, s, size)
	}
	fits := func(s string) (bool, error) {
		w, err := measure(s)
		return w <= maxWidth+1e-9, err
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		if maxWidth <= 0 {
			lines = append(lines, strings.Join(words, " "))
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			ok, err := fits(candidate)
			if err != nil {
				return nil, err
			}
			if ok {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			ok, err = fits(word)
			if err != nil {
				return nil, err
			}
			if ok {
				line = word
				continue
			}
			pieces, err := breakWord(word, fits)
			if err != nil {
				return nil, err
			}
			lines = append(lines, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// breakWord splits word into pieces that fit, keeping at least one rune per
// piece so a box narrower than any glyph still makes progress.
func breakWord(word string, fits func(string) (bool, error)) ([]string, error) {
	var pieces []string
	var cur []rune
	for _, r := range word {
		if len(cur) > 0 {
			ok, err := fits(string(cur) + string(r))
			if err != nil {
				return nil, err
			}
			if !ok {
				pieces = append(pieces, string(cur))
				cur = cur[:0]
			}
		}
		cur = append(cur, r)
	}
	return append(pieces, string(cur)), nil
}
