package internal

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatternBuffer_BorderAndFill(t *testing.T) {
	border := Color{R: 0x20, G: 0x20, B: 0x20}
	fill := Color{R: 0xD8, G: 0xD8, B: 0xD8}

	tests := []struct {
		name          string
		width, height int
		borderSize    int
	}{
		{"small with border", 10, 10, 2},
		{"wide", 64, 16, 4},
		{"tall", 16, 64, 4},
		{"no border", 8, 8, 0},
		{"single pixel border", 3, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPatternBuffer(tt.width, tt.height, tt.borderSize, border, fill)
			require.Len(t, p.pix, tt.width*tt.height*3)

			for y := 0; y < tt.height; y++ {
				for x := 0; x < tt.width; x++ {
					want := fill
					if x < tt.borderSize || x >= tt.width-tt.borderSize ||
						y < tt.borderSize || y >= tt.height-tt.borderSize {
						want = border
					}
					i := (y*tt.width + x) * 3
					got := Color{R: p.pix[i], G: p.pix[i+1], B: p.pix[i+2]}
					require.Equalf(t, want, got, "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestPatternBuffer_ImageInterface(t *testing.T) {
	p := NewPatternBuffer(5, 4, 1, Color{R: 1, G: 2, B: 3}, Color{R: 9, G: 8, B: 7})

	assert.Equal(t, 5, p.Width())
	assert.Equal(t, 4, p.Height())
	assert.Equal(t, image.Rect(0, 0, 5, 4), p.Bounds())
	assert.Equal(t, color.RGBAModel, p.ColorModel())
	assert.True(t, p.Opaque())

	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}, p.At(0, 0))
	assert.Equal(t, color.RGBA{R: 9, G: 8, B: 7, A: 0xFF}, p.At(2, 2))
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}, p.At(4, 3))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#FF8800", Color{R: 0xFF, G: 0x88, B: 0x00}, false},
		{"ff8800", Color{R: 0xFF, G: 0x88, B: 0x00}, false},
		{" #000000 ", Color{}, false},
		{"#FFF", Color{}, true},
		{"#GGGGGG", Color{}, true},
		{"nope", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColor_String(t *testing.T) {
	assert.Equal(t, "#FF8800", Color{R: 0xFF, G: 0x88, B: 0x00}.String())
}
