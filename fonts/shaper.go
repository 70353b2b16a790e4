package fonts

import (
	"sort"
	"unicode"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ShapedGlyph represents a single shaped glyph with positioning information.
type ShapedGlyph struct {
	ID       int
	Cluster  int
	XAdvance float64 // In PDF text units (1/1000 em)
	XOffset  float64
	YOffset  float64
	Runes    []rune // source runes of the cluster, empty for trailing glyphs of a cluster
}

// shapeSize makes one em 1000 units, so 26.6 advances divided by 64 are in
// PDF glyph space.
const shapeSize = fixed.Int26_6(1000 * 64)

// shapeRunes shapes runes as a single run in their dominant script.
func shapeRunes(face *gtfont.Face, runes []rune) []ShapedGlyph {
	script := DetectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      shapeSize,
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	var shaper shaping.HarfbuzzShaper
	output := shaper.Shape(input)

	// cluster starts in logical order give the rune span of each cluster
	starts := make([]int, 0, len(output.Glyphs))
	seen := make(map[int]bool, len(output.Glyphs))
	for _, g := range output.Glyphs {
		if !seen[g.ClusterIndex] {
			seen[g.ClusterIndex] = true
			starts = append(starts, g.ClusterIndex)
		}
	}
	sort.Ints(starts)
	end := func(start int) int {
		i := sort.SearchInts(starts, start)
		if i+1 < len(starts) {
			return starts[i+1]
		}
		return len(runes)
	}

	result := make([]ShapedGlyph, 0, len(output.Glyphs))
	claimed := make(map[int]bool, len(starts))
	for _, g := range output.Glyphs {
		sg := ShapedGlyph{
			ID:       int(g.GlyphID),
			Cluster:  g.ClusterIndex,
			XAdvance: float64(g.XAdvance) / 64.0,
			XOffset:  float64(g.XOffset) / 64.0,
			YOffset:  float64(g.YOffset) / 64.0,
		}
		if !claimed[g.ClusterIndex] && g.ClusterIndex < len(runes) {
			claimed[g.ClusterIndex] = true
			sg.Runes = runes[g.ClusterIndex:end(g.ClusterIndex)]
		}
		result = append(result, sg)
	}
	return result
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// DetectScript returns the script with the most runes, Latin when none is
// recognized. Ties keep the script seen first.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	bestScript := language.Latin

	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			bestScript = script
		}
	}
	return bestScript
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Bengali, r):
		return language.Bengali
	case unicode.Is(unicode.Gurmukhi, r):
		return language.Gurmukhi
	case unicode.Is(unicode.Gujarati, r):
		return language.Gujarati
	case unicode.Is(unicode.Oriya, r):
		return language.Oriya
	case unicode.Is(unicode.Tamil, r):
		return language.Tamil
	case unicode.Is(unicode.Telugu, r):
		return language.Telugu
	case unicode.Is(unicode.Kannada, r):
		return language.Kannada
	case unicode.Is(unicode.Malayalam, r):
		return language.Malayalam
	case unicode.Is(unicode.Sinhala, r):
		return language.Sinhala
	case unicode.Is(unicode.Lao, r):
		return language.Lao
	case unicode.Is(unicode.Tibetan, r):
		return language.Tibetan
	case unicode.Is(unicode.Myanmar, r):
		return language.Myanmar
	case unicode.Is(unicode.Khmer, r):
		return language.Khmer
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}
