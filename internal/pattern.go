package internal

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Color is an 8-bit RGB triple used for the fixture pattern.
type Color struct {
	R, G, B uint8
}

// ParseColor parses a "#RRGGBB" or "RRGGBB" hex string.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want RRGGBB hex", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// PixelBuffer holds raw interleaved RGB pixels, row-major, width*height*3
// bytes. It implements image.Image so codecs can consume it directly; the
// buffer is never mutated after NewPatternBuffer returns. The pattern
// parameters are kept alongside the pixels for encoders that re-describe
// the pattern instead of rastering it (SVG).
type PixelBuffer struct {
	width       int
	height      int
	border      int
	borderColor Color
	fillColor   Color
	pix         []byte
}

// NewPatternBuffer synthesizes the fixture pattern: a solid fill with a
// border of the given pixel width along all four edges. Dimensions must be
// positive; Request validation checks that before any buffer is built.
func NewPatternBuffer(width, height, border int, borderColor, fillColor Color) *PixelBuffer {
	p := &PixelBuffer{
		width:       width,
		height:      height,
		border:      border,
		borderColor: borderColor,
		fillColor:   fillColor,
		pix:         make([]byte, width*height*3),
	}

	// Rows repeat, so build one border row and one interior row and tile
	// them instead of computing every pixel.
	borderRow := make([]byte, width*3)
	fillRow(borderRow, borderColor)

	interiorRow := make([]byte, width*3)
	fillRow(interiorRow, fillColor)
	for x := 0; x < width; x++ {
		if x < border || x >= width-border {
			interiorRow[x*3+0] = borderColor.R
			interiorRow[x*3+1] = borderColor.G
			interiorRow[x*3+2] = borderColor.B
		}
	}

	rowSize := width * 3
	for y := 0; y < height; y++ {
		row := interiorRow
		if y < border || y >= height-border {
			row = borderRow
		}
		copy(p.pix[y*rowSize:(y+1)*rowSize], row)
	}

	return p
}

func fillRow(row []byte, c Color) {
	for x := 0; x < len(row); x += 3 {
		row[x+0] = c.R
		row[x+1] = c.G
		row[x+2] = c.B
	}
}

// Width returns the buffer width in pixels.
func (p *PixelBuffer) Width() int { return p.width }

// Height returns the buffer height in pixels.
func (p *PixelBuffer) Height() int { return p.height }

// ColorModel implements image.Image.
func (p *PixelBuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (p *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// At implements image.Image.
func (p *PixelBuffer) At(x, y int) color.Color {
	i := (y*p.width + x) * 3
	return color.RGBA{R: p.pix[i], G: p.pix[i+1], B: p.pix[i+2], A: 0xFF}
}

// Opaque reports that the buffer has no alpha channel, which lets encoders
// skip alpha handling.
func (p *PixelBuffer) Opaque() bool { return true }
