package vtcore

import "golang.org/x/text/encoding/charmap"

// Charset identifies one selectable character set for the G0-G3 slots.
// 94-character sets replace GL positions; 96-character sets also cover
// GR when mapped there.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetBritish
	CharsetDECAltChars
	CharsetDECAltGraph
	CharsetDECGraph
	CharsetDECSup
	CharsetDECSupGraph
	CharsetDECTech

	CharsetFrenchCanadian
	CharsetFinnish
	CharsetGerman
	CharsetDutch
	CharsetItalian
	CharsetSwiss
	CharsetSwedish
	CharsetNorwegianDanish
	CharsetFrench
	CharsetSpanish
	CharsetPortuguese
	CharsetTurkish

	// 96-character sets.
	CharsetLatin1
	CharsetLatin5

	CharsetInvalid Charset = -1
)

// is96 returns true for 96-character sets.
func (cs Charset) is96() bool {
	return cs == CharsetLatin1 || cs == CharsetLatin5
}

// The NRCS tables replace twelve GL positions:
// 0x23, 0x40, 0x5B-0x60, 0x7B-0x7E.
var nrcsIndex = [12]byte{0x23, 0x40, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F, 0x60, 0x7B, 0x7C, 0x7D, 0x7E}

var nrcsTables = map[Charset][12]rune{
	CharsetFrenchCanadian:  {'#', 'à', 'â', 'ç', 'ê', 'î', '_', 'ô', 'é', 'ù', 'è', 'û'},
	CharsetFinnish:         {'#', '@', 'Ä', 'Ö', 'Å', 'Ü', '_', 'é', 'ä', 'ö', 'å', 'ü'},
	CharsetGerman:          {'#', '§', 'Ä', 'Ö', 'Ü', '^', '_', '`', 'ä', 'ö', 'ü', 'ß'},
	CharsetDutch:           {'£', '¾', 'ĳ', '½', '|', '^', '_', '`', '¨', 'f', '¼', '´'},
	CharsetItalian:         {'£', '§', '°', 'ç', 'é', '^', '_', 'ù', 'à', 'ò', 'è', 'ì'},
	CharsetSwiss:           {'ù', 'à', 'é', 'ç', 'ê', 'î', 'è', 'ô', 'ä', 'ö', 'ü', 'û'},
	CharsetSwedish:         {'#', 'É', 'Æ', 'Ø', 'Å', 'Ü', '_', 'é', 'æ', 'ø', 'å', 'ü'},
	CharsetNorwegianDanish: {'#', 'Ä', 'Æ', 'Ø', 'Å', 'Ü', '_', 'ä', 'æ', 'ø', 'å', 'ü'},
	CharsetFrench:          {'£', 'à', '°', 'ç', '§', '^', '_', '`', 'é', 'ù', 'è', '¨'},
	CharsetSpanish:         {'£', '§', '¡', 'Ñ', '¿', '^', '_', '`', '°', 'ñ', 'ç', '~'},
	CharsetPortuguese:      {'#', '@', 'Ã', 'Ç', 'Õ', '^', '_', '`', 'ã', 'ç', 'õ', '~'},
	CharsetTurkish:         {'#', 'İ', 'Ş', 'Ö', 'Ç', 'Ü', '_', 'Ğ', 'ş', 'ö', 'ç', 'ü'},
}

// decGraph maps GL 0x5F-0x7E of the DEC Special Graphics set.
var decGraph = []rune(" ◆▒␉␌␍␊°±␤␋┘┐┌└┼⎺⎻─⎼⎽├┤┴┬│≤≥π≠£·")

// decTech maps GL 0x21-0x7E of the DEC Technical set (0xFFFE = hole).
var decTech = []rune{
	0x23B7, 0x250C, 0x2500, 0x2320, 0x2321, 0x2502, 0x23A1,
	0x23A3, 0x23A4, 0x23A6, 0x239B, 0x239D, 0x239E, 0x23A0, 0x23A8,
	0x23AC, 0xFFFE, 0xFFFE, 0xFFFE, 0xFFFE, 0xFFFE, 0xFFFE, 0xFFFE,
	0xFFFE, 0xFFFE, 0xFFFE, 0xFFFE, 0x2264, 0x2260, 0x2265, 0x222B,
	0x2234, 0x221D, 0x221E, 0x00F7, 0x0394, 0x2207, 0x03A6, 0x0393,
	0x223C, 0x2243, 0x0398, 0x00D7, 0x039B, 0x21D4, 0x21D2, 0x2261,
	0x03A0, 0x03A8, 0xFFFE, 0x03A3, 0xFFFE, 0xFFFE, 0x221A, 0x03A9,
	0x039E, 0x03A5, 0x2282, 0x2283, 0x2229, 0x222A, 0x2227, 0x2228,
	0x00AC, 0x03B1, 0x03B2, 0x03C7, 0x03B4, 0x03B5, 0x03C6, 0x03B3,
	0x03B7, 0x03B9, 0x03B8, 0x03BA, 0x03BB, 0xFFFE, 0x03BD, 0x2202,
	0x03C0, 0x03C8, 0x03C1, 0x03C3, 0x03C4, 0xFFFE, 0x0192, 0x03C9,
	0x03BE, 0x03C5, 0x03B6, 0x2190, 0x2191, 0x2192, 0x2193,
}

// nrcsDecode translates an incoming GL byte (0x20-0x7E) through the
// selected set. With nrcs false the national sets act as ASCII.
func nrcsDecode(cs Charset, b byte, nrcs bool) rune {
	r := rune(b)
	switch cs {
	case CharsetASCII, CharsetDECAltChars:
		return r
	case CharsetBritish:
		if nrcs && b == '#' {
			return '£'
		}
		return r
	case CharsetDECGraph, CharsetDECAltGraph:
		if b >= 0x5F && b <= 0x7E {
			return decGraph[b-0x5F]
		}
		return r
	case CharsetDECTech:
		if b >= 0x21 && b <= 0x7E {
			if t := decTech[b-0x21]; t != 0xFFFE {
				return t
			}
		}
		return r
	case CharsetLatin1:
		return rune(charmap.ISO8859_1.DecodeByte(b | 0x80))
	case CharsetLatin5:
		return rune(charmap.ISO8859_9.DecodeByte(b | 0x80))
	case CharsetDECSup, CharsetDECSupGraph:
		return decSupDecode(b)
	}
	if !nrcs {
		return r
	}
	if tbl, ok := nrcsTables[cs]; ok {
		for i, idx := range nrcsIndex {
			if b == idx {
				return tbl[i]
			}
		}
	}
	return r
}

// nrcsDecodeGR translates an incoming GR byte (0xA0-0xFF).
func nrcsDecodeGR(cs Charset, b byte, nrcs bool) rune {
	switch cs {
	case CharsetLatin1:
		return rune(charmap.ISO8859_1.DecodeByte(b))
	case CharsetLatin5:
		return rune(charmap.ISO8859_9.DecodeByte(b))
	}
	return nrcsDecode(cs, b&0x7F, nrcs)
}

// decSupDecode maps the DEC Supplemental set (mostly Latin-1 with a few
// multinational substitutions).
func decSupDecode(b byte) rune {
	switch b | 0x80 {
	case 0xA8:
		return '¤'
	case 0xD7:
		return 'Œ'
	case 0xDD:
		return 'Ÿ'
	case 0xF7:
		return 'œ'
	case 0xFD:
		return 'ÿ'
	}
	return rune(charmap.ISO8859_1.DecodeByte(b | 0x80))
}

// nrcsEncode round-trips a codepoint back into the given set for
// keyboard input when UTF-8 is disabled. Returns the encoded byte and
// whether the codepoint is representable.
func nrcsEncode(cs Charset, r rune, nrcs bool) (byte, bool) {
	switch cs {
	case CharsetASCII, CharsetDECAltChars, CharsetDECAltGraph:
		if r < 0x80 {
			return byte(r), true
		}
		return 0, false
	case CharsetBritish:
		if nrcs {
			if r == '£' {
				return '#', true
			}
			if r == '#' {
				return 0, false
			}
		}
		if r < 0x80 {
			return byte(r), true
		}
		return 0, false
	case CharsetLatin1:
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			return b & 0x7F, true
		}
		return 0, false
	case CharsetLatin5:
		if b, ok := charmap.ISO8859_9.EncodeRune(r); ok {
			return b & 0x7F, true
		}
		return 0, false
	case CharsetDECGraph:
		for i, g := range decGraph {
			if g == r {
				return byte(0x5F + i), true
			}
		}
		if r < 0x80 {
			return byte(r), true
		}
		return 0, false
	}
	if nrcs {
		if tbl, ok := nrcsTables[cs]; ok {
			for i, t := range tbl {
				if t == r {
					return nrcsIndex[i], true
				}
			}
			// Positions the table redefines no longer produce their
			// ASCII characters.
			for _, idx := range nrcsIndex {
				if rune(idx) == r {
					return 0, false
				}
			}
		}
	}
	if r < 0x80 {
		return byte(r), true
	}
	return 0, false
}

// nrcsParse maps a designation selector (the final byte of ESC ( ... /
// ESC - ... sequences, with any intermediate in the high byte) to a
// charset. is96 selects the 96-character designations; vtLevel and the
// DECNRCM flag gate national sets.
func nrcsParse(selector uint16, is96 bool, vtLevel int, nrcs bool) Charset {
	if is96 {
		switch selector {
		case 'A':
			return CharsetLatin1
		case 'M':
			if vtLevel >= 5 {
				return CharsetLatin5
			}
		}
		return CharsetInvalid
	}
	switch selector {
	case 'B':
		return CharsetASCII
	case 'A':
		if nrcs && vtLevel >= 2 {
			return CharsetBritish
		}
		return CharsetBritish
	case '0':
		return CharsetDECGraph
	case '1':
		if vtLevel >= 1 {
			return CharsetDECAltChars
		}
	case '2':
		if vtLevel >= 1 {
			return CharsetDECAltGraph
		}
	case '<':
		if vtLevel >= 2 {
			return CharsetDECSup
		}
	case '>':
		if vtLevel >= 3 {
			return CharsetDECTech
		}
	}
	if vtLevel < 2 || !nrcs {
		return CharsetInvalid
	}
	switch selector {
	case '4':
		return CharsetDutch
	case '5', 'C':
		return CharsetFinnish
	case 'R':
		return CharsetFrench
	case 'f':
		return CharsetFrench
	case 'Q', '9':
		return CharsetFrenchCanadian
	case 'K':
		return CharsetGerman
	case 'Y':
		return CharsetItalian
	case '6', 'E':
		return CharsetNorwegianDanish
	case '`':
		return CharsetNorwegianDanish
	case 'Z':
		return CharsetSpanish
	case '7', 'H':
		return CharsetSwedish
	case '=':
		return CharsetSwiss
	case '%'<<8 | '6':
		return CharsetPortuguese
	case '%'<<8 | '2':
		return CharsetTurkish
	case '%'<<8 | '5':
		return CharsetDECSupGraph
	}
	return CharsetInvalid
}
