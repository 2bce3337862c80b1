package vtcore

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Special palette slots addressed past the 256 indexed colors.
const (
	SpecialBg       = 256 // default background
	SpecialFg       = 257 // default foreground
	SpecialCursorBg = 258 // cursor cell background
	SpecialCursorFg = 259 // cursor cell foreground

	// PaletteSize is the number of indirect color slots (256 indexed + 4 special).
	PaletteSize = 260
)

// Color is a cell color: either an indirect palette index (0..259) or a
// direct RGBA value. The zero value is palette index 0.
type Color uint64

const colorDirect Color = 1 << 32

// PaletteColor returns an indirect color referencing palette slot idx.
func PaletteColor(idx int) Color {
	return Color(uint32(idx))
}

// DirectColor returns a direct RGBA color.
func DirectColor(r, g, b, a uint8) Color {
	return colorDirect | Color(uint32(r)<<24|uint32(g)<<16|uint32(b)<<8|uint32(a))
}

// IsDirect returns true for direct RGBA colors, false for palette indices.
func (c Color) IsDirect() bool {
	return c&colorDirect != 0
}

// Index returns the palette slot of an indirect color, or -1 for direct colors.
func (c Color) Index() int {
	if c.IsDirect() {
		return -1
	}
	return int(uint32(c))
}

// Direct returns the RGBA channels of a direct color.
// The result is meaningless for indirect colors.
func (c Color) Direct() color.RGBA {
	v := uint32(c)
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// Resolve converts the color to RGBA using the given palette.
func (c Color) Resolve(p *Palette) color.RGBA {
	if c.IsDirect() {
		return c.Direct()
	}
	idx := c.Index()
	if idx < 0 || idx >= PaletteSize {
		return p[SpecialFg]
	}
	return p[idx]
}

// Palette holds the 256 indexed colors plus the special slots.
type Palette [PaletteSize]color.RGBA

// DefaultPalette is the standard 256-color palette: 16 named colors (0-15),
// 216 color cube (16-231), 24 grayscale (232-255).
var DefaultPalette = [256]color.RGBA{
	// Standard colors (0-7)
	{0, 0, 0, 255},       // Black
	{205, 49, 49, 255},   // Red
	{13, 188, 121, 255},  // Green
	{229, 229, 16, 255},  // Yellow
	{36, 114, 200, 255},  // Blue
	{188, 63, 188, 255},  // Magenta
	{17, 168, 205, 255},  // Cyan
	{229, 229, 229, 255}, // White

	// Bright colors (8-15)
	{102, 102, 102, 255}, // Bright Black
	{241, 76, 76, 255},   // Bright Red
	{35, 209, 139, 255},  // Bright Green
	{245, 245, 67, 255},  // Bright Yellow
	{59, 142, 234, 255},  // Bright Blue
	{214, 112, 214, 255}, // Bright Magenta
	{41, 184, 219, 255},  // Bright Cyan
	{255, 255, 255, 255}, // Bright White

	// 216 color cube (16-231) and grayscale (232-255) are generated in init.
}

func init() {
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{R: cubeChannel(r), G: cubeChannel(g), B: cubeChannel(b), A: 255}
				i++
			}
		}
	}
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

func cubeChannel(v int) uint8 {
	if v == 0 {
		return 0
	}
	return uint8(55 + v*40)
}

// DefaultForeground is the default text color (light gray).
var DefaultForeground = color.RGBA{229, 229, 229, 255}

// DefaultBackground is the default background color (black).
var DefaultBackground = color.RGBA{0, 0, 0, 255}

// DefaultCursorColor is the default cursor rendering color (light gray).
var DefaultCursorColor = color.RGBA{229, 229, 229, 255}

// NewPalette returns a palette initialized with the defaults.
func NewPalette() *Palette {
	var p Palette
	copy(p[:256], DefaultPalette[:])
	p[SpecialBg] = DefaultBackground
	p[SpecialFg] = DefaultForeground
	p[SpecialCursorBg] = DefaultCursorColor
	p[SpecialCursorFg] = DefaultBackground
	return &p
}

// ParseColor parses a color specification as accepted by OSC 4/10-19:
// "rgb:RR/GG/BB" (1-4 hex digits per channel), "#RGB" through
// "#RRRRGGGGBBBB", or an X11 color name such as "red" or "navy".
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, false
	}

	if rest, ok := strings.CutPrefix(s, "rgb:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) != 3 {
			return color.RGBA{}, false
		}
		var ch [3]uint8
		for i, p := range parts {
			v, ok := parseHexChannel(p)
			if !ok {
				return color.RGBA{}, false
			}
			ch[i] = v
		}
		return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, true
	}

	if rest, ok := strings.CutPrefix(s, "#"); ok {
		n := len(rest)
		if n == 0 || n > 12 || n%3 != 0 {
			return color.RGBA{}, false
		}
		d := n / 3
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			v, ok := parseHexChannel(rest[i*d : (i+1)*d])
			if !ok {
				return color.RGBA{}, false
			}
			ch[i] = v
		}
		return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, true
	}

	c, ok := colornames.Map[strings.ToLower(strings.ReplaceAll(s, " ", ""))]
	if !ok {
		return color.RGBA{}, false
	}
	return c, true
}

// parseHexChannel scales a 1-4 digit hex channel down to 8 bits.
func parseHexChannel(s string) (uint8, bool) {
	if len(s) == 0 || len(s) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	max := uint64(1)<<(4*len(s)) - 1
	return uint8(v * 255 / max), true
}

// FormatColor renders a color in the "rgb:RRRR/GGGG/BBBB" form used by
// OSC color query replies.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("rgb:%04x/%04x/%04x", scale16(c.R), scale16(c.G), scale16(c.B))
}

func scale16(v uint8) uint16 {
	return uint16(v)<<8 | uint16(v)
}
