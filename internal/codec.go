package internal

import (
	"bytes"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sort"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image format.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
	FormatSVG  Format = "svg"
)

// formatAliases maps every accepted spelling (and file extension, without
// dot) to its canonical format.
var formatAliases = map[string]Format{
	"jpeg": FormatJPEG,
	"jpg":  FormatJPEG,
	"png":  FormatPNG,
	"gif":  FormatGIF,
	"webp": FormatWebP,
	"avif": FormatAVIF,
	"tiff": FormatTIFF,
	"tif":  FormatTIFF,
	"bmp":  FormatBMP,
	"svg":  FormatSVG,
}

// ParseFormat resolves a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (supported: %s)", s, strings.Join(FormatNames(), ", "))
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// FormatNames returns the canonical format names, sorted, for help text.
func FormatNames() []string {
	names := make([]string, 0, 8)
	seen := map[Format]bool{}
	for _, f := range formatAliases {
		if !seen[f] {
			seen[f] = true
			names = append(names, string(f))
		}
	}
	sort.Strings(names)
	return names
}

// EncodeFunc encodes the pixel buffer at the given quality and returns the
// encoded bytes. Formats without a meaningful quality parameter ignore it
// and return a deterministic result. The buffer is never mutated.
type EncodeFunc func(pix *PixelBuffer, quality int) ([]byte, error)

// encoderFor returns the encode capability for a format. This is the only
// place that names a codec package; everything above it deals in EncodeFunc.
func encoderFor(f Format) (EncodeFunc, error) {
	switch f {
	case FormatJPEG:
		return encodeJPEG, nil
	case FormatPNG:
		return encodePNG, nil
	case FormatGIF:
		return encodeGIF, nil
	case FormatWebP:
		return encodeWebP, nil
	case FormatAVIF:
		return encodeAVIF, nil
	case FormatTIFF:
		return encodeTIFF, nil
	case FormatBMP:
		return encodeBMP, nil
	case FormatSVG:
		return encodeSVG, nil
	}
	return nil, fmt.Errorf("no encoder for format %q", f)
}

func encodeJPEG(pix *PixelBuffer, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, pix, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePNG(pix *PixelBuffer, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pix); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeGIF(pix *PixelBuffer, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pix, &gif.Options{NumColors: 256}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(pix *PixelBuffer, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, pix, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeAVIF(pix *PixelBuffer, quality int) ([]byte, error) {
	var buf bytes.Buffer
	// Speed 10 keeps multi-attempt quality sweeps tolerable; fixture
	// content is flat so the size penalty is negligible.
	if err := avif.Encode(&buf, pix, avif.Options{Quality: quality, Speed: 10}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTIFF(pix *PixelBuffer, _ int) ([]byte, error) {
	var buf bytes.Buffer
	opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
	if err := tiff.Encode(&buf, pix, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBMP(pix *PixelBuffer, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, pix); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeSVG renders the border+fill pattern as vector shapes instead of
// rastering the pixel buffer: an outer rect in the border color under an
// inset rect in the fill color.
func encodeSVG(pix *PixelBuffer, _ int) ([]byte, error) {
	w, h := pix.Width(), pix.Height()
	b := pix.border

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, svgFill(pix.borderColor))
	if w > 2*b && h > 2*b {
		canvas.Rect(b, b, w-2*b, h-2*b, svgFill(pix.fillColor))
	}
	canvas.End()
	return buf.Bytes(), nil
}

func svgFill(c Color) string {
	return fmt.Sprintf("fill:rgb(%d,%d,%d)", c.R, c.G, c.B)
}
