package fonts

import (
	"hash/fnv"
	"sort"
	"strings"
)

// Subsetter trims embedded TrueType fonts to the glyphs a document shows.
// Glyph ids are preserved, so content streams stay valid.
type Subsetter struct{}

func NewSubsetter() *Subsetter {
	return &Subsetter{}
}

// Apply subsets every composite font the analyzer saw. Fonts are modified
// in place and must not be shared with other documents.
func (s *Subsetter) Apply(analyzer *Analyzer) error {
	for font, used := range analyzer.UsedGlyphs {
		if !font.Composite() || font.DescendantFont == nil {
			continue
		}
		d := font.DescendantFont
		gids := make([]int, 0, len(used))
		for gid := range used {
			gids = append(gids, gid)
		}
		sort.Ints(gids)

		w := make(map[int]int, len(gids))
		for _, gid := range gids {
			if v, ok := d.W[gid]; ok {
				w[gid] = v
			}
		}
		d.W = w

		desc := d.Descriptor
		if desc == nil || desc.FontFileType != "FontFile2" || len(desc.FontFile) == 0 {
			continue
		}
		data, err := SubsetTrueType(desc.FontFile, used)
		if err != nil {
			return err
		}
		if len(data) >= len(desc.FontFile) {
			continue
		}
		subset := *desc
		subset.FontFile = data
		name := subsetTag(gids) + "+" + strings.TrimPrefix(font.BaseFont, "/")
		subset.FontName = name
		d.Descriptor = &subset
		d.BaseFont = name
		font.BaseFont = name
		font.Descriptor = &subset
	}
	return nil
}

// subsetTag derives the six-letter subset prefix from the glyph set, so the
// same text always yields the same name.
func subsetTag(gids []int) string {
	h := fnv.New32a()
	for _, g := range gids {
		h.Write([]byte{byte(g >> 8), byte(g)})
	}
	v := h.Sum32()
	var tag [6]byte
	for i := range tag {
		tag[i] = 'A' + byte(v%26)
		v /= 26
	}
	return string(tag[:])
}
