// Package sanitize strips decorative pictograph characters from model output.
package sanitize

import (
	"strings"
	"unicode"
)

// bannedRanges covers the pictograph blocks the persona rules forbid.
// Ordinary punctuation, dashes and non-decorative Unicode (accented letters,
// currency symbols) stay untouched.
var bannedRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200B, Hi: 0x200F, Stride: 1}, // zero-width and directional format chars
		{Lo: 0x231A, Hi: 0x231B, Stride: 1}, // watch, hourglass
		{Lo: 0x23E9, Hi: 0x23FA, Stride: 1}, // media control and clock symbols
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // miscellaneous symbols (includes gender signs)
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // arrows and geometric symbols
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1F0FF, Stride: 1}, // mahjong, dominoes, playing cards
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators (flags)
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport and map symbols
		{Lo: 0x1F780, Hi: 0x1F7FF, Stride: 1}, // geometric shapes extended
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols and pictographs
		{Lo: 0x1FA00, Hi: 0x1FAFF, Stride: 1}, // symbols and pictographs extended-A
	},
}

// bannedRunes are codepoints outside the ranges above that still slip into
// model output: the zero-width joiner used in emoji sequences and the
// skin-tone modifiers.
var bannedRunes = map[rune]bool{
	0x200D:  true, // zero-width joiner
	0x20E3:  true, // combining enclosing keycap
	0x1F3FB: true, // skin tone modifiers
	0x1F3FC: true,
	0x1F3FD: true,
	0x1F3FE: true,
	0x1F3FF: true,
}

// Clean removes banned pictograph characters and collapses the whitespace
// artifacts their removal leaves behind. Idempotent.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if bannedRunes[r] || unicode.Is(bannedRanges, r) {
			continue
		}
		b.WriteRune(r)
	}

	return collapseWhitespace(b.String())
}

func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		lines[i] = strings.TrimLeft(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
