// Package text provides font metrics, styles and line wrapping for the
// standard Type 1 fonts used in generated documents.
package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Color is an RGB color with components in 0..1.
type Color struct {
	R, G, B float64
}

var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// Gray returns a gray level color.
func Gray(level float64) Color {
	return Color{level, level, level}
}

// RGB builds a color from 0-255 components.
func RGB(r, g, b int) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// Hex parses "#RRGGBB" or "RRGGBB". Malformed input yields black.
func Hex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Black
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Black
	}
	return RGB(r, g, b)
}

// Font is a standard Type 1 font with its AFM widths. Widths are in
// 1000-unit glyph space.
type Font struct {
	BaseFont     string
	Ascender     float64
	Descender    float64
	widths       map[rune]float64
	defaultWidth float64
}

// Name returns the PostScript base font name.
func (f *Font) Name() string { return f.BaseFont }

var winAnsiEncoder = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

// Encode converts a string to WinAnsi (Windows-1252) bytes, replacing
// characters outside the encoding.
func (f *Font) Encode(s string) []byte {
	out, err := winAnsiEncoder.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported should prevent this; fall back to ASCII.
		clean := make([]byte, 0, len(s))
		for _, r := range s {
			if r < 0x80 {
				clean = append(clean, byte(r))
			} else {
				clean = append(clean, '?')
			}
		}
		return clean
	}
	return out
}

// GlyphWidth returns the width of r in glyph space units.
func (f *Font) GlyphWidth(r rune) float64 {
	if w, ok := f.widths[r]; ok {
		return w
	}
	return f.defaultWidth
}

// StringWidth returns the rendered width of s at the given size.
func (f *Font) StringWidth(s string, size float64) float64 {
	var total float64
	for _, r := range s {
		total += f.GlyphWidth(r)
	}
	return total * size / 1000
}

// LineHeight returns the default line height at the given size.
func (f *Font) LineHeight(size float64) float64 {
	return (f.Ascender - f.Descender) * size / 1000
}

// Style bundles a font with size and fill color.
type Style struct {
	Font    *Font
	Size    float64
	Color   Color
	Leading float64 // line spacing; 0 means font default
}

// LineHeight returns the effective line height for the style.
func (s Style) LineHeight() float64 {
	if s.Leading > 0 {
		return s.Leading
	}
	return s.Font.LineHeight(s.Size)
}

// Wrap breaks s into lines no wider than maxWidth at the style's size.
// Words longer than a full line are kept whole on their own line.
func (s Style) Wrap(text string, maxWidth float64) []string {
	if text == "" {
		return []string{""}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if s.Font.StringWidth(candidate, s.Size) > maxWidth {
				lines = append(lines, line)
				line = word
			} else {
				line = candidate
			}
		}
		lines = append(lines, line)
	}
	return lines
}

var (
	// Helvetica is the regular weight of the default document font.
	Helvetica = &Font{
		BaseFont:     "Helvetica",
		Ascender:     718,
		Descender:    -207,
		defaultWidth: 556,
		widths:       helveticaWidths,
	}

	// HelveticaBold is used for headings and table headers.
	HelveticaBold = &Font{
		BaseFont:     "Helvetica-Bold",
		Ascender:     718,
		Descender:    -207,
		defaultWidth: 556,
		widths:       helveticaBoldWidths,
	}

	// HelveticaOblique is the italic companion face.
	HelveticaOblique = &Font{
		BaseFont:     "Helvetica-Oblique",
		Ascender:     718,
		Descender:    -207,
		defaultWidth: 556,
		widths:       helveticaWidths,
	}
)

// AFM widths for the printable ASCII range. Characters outside the
// table fall back to the font's default width.
var helveticaWidths = buildWidths(map[rune]float64{
	' ': 278, '!': 278, '"': 355, '#': 556, '$': 556, '%': 889,
	'&': 667, '\'': 191, '(': 333, ')': 333, '*': 389, '+': 584,
	',': 278, '-': 333, '.': 278, '/': 278,
	':': 278, ';': 278, '<': 584, '=': 584, '>': 584, '?': 556, '@': 1015,
	'A': 667, 'B': 667, 'C': 722, 'D': 722, 'E': 667, 'F': 611,
	'G': 778, 'H': 722, 'I': 278, 'J': 500, 'K': 667, 'L': 556,
	'M': 833, 'N': 722, 'O': 778, 'P': 667, 'Q': 778, 'R': 722,
	'S': 667, 'T': 611, 'U': 722, 'V': 667, 'W': 944, 'X': 667,
	'Y': 667, 'Z': 611,
	'[': 278, '\\': 278, ']': 278, '^': 469, '_': 556, '`': 333,
	'a': 556, 'b': 556, 'c': 500, 'd': 556, 'e': 556, 'f': 278,
	'g': 556, 'h': 556, 'i': 222, 'j': 222, 'k': 500, 'l': 222,
	'm': 833, 'n': 556, 'o': 556, 'p': 556, 'q': 556, 'r': 333,
	's': 500, 't': 278, 'u': 556, 'v': 500, 'w': 722, 'x': 500,
	'y': 500, 'z': 500,
	'{': 334, '|': 260, '}': 334, '~': 584,
})

var helveticaBoldWidths = buildWidths(map[rune]float64{
	' ': 278, '!': 333, '"': 474, '#': 556, '$': 556, '%': 889,
	'&': 722, '\'': 238, '(': 333, ')': 333, '*': 389, '+': 584,
	',': 278, '-': 333, '.': 278, '/': 278,
	':': 333, ';': 333, '<': 584, '=': 584, '>': 584, '?': 611, '@': 975,
	'A': 722, 'B': 722, 'C': 722, 'D': 722, 'E': 667, 'F': 611,
	'G': 778, 'H': 722, 'I': 278, 'J': 556, 'K': 722, 'L': 611,
	'M': 833, 'N': 722, 'O': 778, 'P': 667, 'Q': 778, 'R': 722,
	'S': 667, 'T': 611, 'U': 722, 'V': 667, 'W': 944, 'X': 667,
	'Y': 667, 'Z': 611,
	'[': 333, '\\': 278, ']': 333, '^': 584, '_': 556, '`': 333,
	'a': 556, 'b': 611, 'c': 556, 'd': 611, 'e': 556, 'f': 333,
	'g': 611, 'h': 611, 'i': 278, 'j': 278, 'k': 556, 'l': 278,
	'm': 889, 'n': 611, 'o': 611, 'p': 611, 'q': 611, 'r': 389,
	's': 556, 't': 333, 'u': 611, 'v': 556, 'w': 778, 'x': 556,
	'y': 556, 'z': 500,
	'{': 389, '|': 280, '}': 389, '~': 584,
})

func buildWidths(m map[rune]float64) map[rune]float64 {
	for i := '0'; i <= '9'; i++ {
		m[i] = 556
	}
	return m
}
