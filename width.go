package vtcore

import (
	"unicode"

	"github.com/unilibs/uniwidth"
	"golang.org/x/text/unicode/norm"
)

// runeWidth returns the display width: 2 for wide characters (CJK,
// emoji), 1 for normal, 0 for zero-width (combining marks).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune returns true if the rune occupies 2 columns.
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// isCombiningRune returns true for marks that attach to the preceding
// base character instead of occupying a cell of their own.
func isCombiningRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 0 && unicode.In(r, unicode.Mn, unicode.Me, unicode.Mc)
}

// StringWidth returns the total display width of a string.
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// precompose folds a combining mark into its base character when a
// precomposed form exists (NFC), returning the composed rune and true.
func precompose(base, mark rune) (rune, bool) {
	s := norm.NFC.String(string([]rune{base, mark}))
	runes := []rune(s)
	if len(runes) == 1 && runes[0] != base {
		return runes[0], true
	}
	return base, false
}
