package internal

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(format Format, w, h int, target int64) Request {
	return Request{
		Width:       w,
		Height:      h,
		TargetSize:  target,
		Format:      format,
		Border:      4,
		BorderColor: Color{R: 0x20, G: 0x20, B: 0x20},
		FillColor:   Color{R: 0xD8, G: 0xD8, B: 0xD8},
	}
}

func TestGenerate_ExactSize(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		width  int
		height int
		target int64
	}{
		{"jpeg 1MB", FormatJPEG, 100, 100, 1000000},
		{"png 64KiB", FormatPNG, 64, 64, 64 * 1024},
		{"gif", FormatGIF, 32, 32, 8 * 1024},
		{"bmp", FormatBMP, 16, 16, 4 * 1024},
		{"tiff", FormatTIFF, 48, 48, 32 * 1024},
		{"svg", FormatSVG, 640, 480, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink bytes.Buffer
			res, err := Generate(testRequest(tt.format, tt.width, tt.height, tt.target), &sink)
			require.NoError(t, err)
			require.Equal(t, tt.target, int64(sink.Len()))
			assert.Equal(t, tt.target, res.BaseSize+res.Padding)
			assert.Positive(t, res.BaseSize)
		})
	}
}

func TestGenerate_RoundTripDecode(t *testing.T) {
	tests := []struct {
		format Format
		sniff  string
	}{
		{FormatJPEG, "jpeg"},
		{FormatPNG, "png"},
		{FormatGIF, "gif"},
		{FormatBMP, "bmp"},
		{FormatTIFF, "tiff"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var sink bytes.Buffer
			_, err := Generate(testRequest(tt.format, 40, 30, 256*1024), &sink)
			require.NoError(t, err)

			// The zero padding after the encoded image must not break
			// header decoding of the padded artifact.
			cfg, name, err := image.DecodeConfig(bytes.NewReader(sink.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tt.sniff, name)
			assert.Equal(t, 40, cfg.Width)
			assert.Equal(t, 30, cfg.Height)
		})
	}
}

func TestGenerate_WebP(t *testing.T) {
	var sink bytes.Buffer
	res, err := Generate(testRequest(FormatWebP, 64, 48, 128*1024), &sink)
	require.NoError(t, err)
	require.Equal(t, int64(128*1024), int64(sink.Len()))

	w, h, _, err := webp.GetInfo(sink.Bytes()[:res.BaseSize])
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
}

func TestGenerate_AVIF(t *testing.T) {
	var sink bytes.Buffer
	res, err := Generate(testRequest(FormatAVIF, 32, 32, 256*1024), &sink)
	require.NoError(t, err)
	require.Equal(t, int64(256*1024), int64(sink.Len()))
	require.Positive(t, res.BaseSize)

	cfg, err := avif.DecodeConfig(bytes.NewReader(sink.Bytes()[:res.BaseSize]))
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestGenerate_SVGOutput(t *testing.T) {
	var sink bytes.Buffer
	res, err := Generate(testRequest(FormatSVG, 640, 480, 2048), &sink)
	require.NoError(t, err)
	require.Equal(t, 2048, sink.Len())

	prefix := string(sink.Bytes()[:res.BaseSize])
	assert.Contains(t, prefix, "<svg")
	assert.Contains(t, prefix, `width="640"`)
	assert.Contains(t, prefix, "</svg>")
}

func TestGenerate_Idempotent(t *testing.T) {
	req := testRequest(FormatJPEG, 80, 60, 500*1000)

	var first, second bytes.Buffer
	_, err := Generate(req, &first)
	require.NoError(t, err)
	_, err = Generate(req, &second)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Bytes(), second.Bytes()),
		"same request must produce byte-identical output")
}

func TestGenerate_PaddingIsAllZeros(t *testing.T) {
	var sink bytes.Buffer
	res, err := Generate(testRequest(FormatPNG, 24, 24, 100*1000), &sink)
	require.NoError(t, err)
	require.Positive(t, res.Padding)

	tail := sink.Bytes()[res.BaseSize:]
	require.Equal(t, int(res.Padding), len(tail))
	assert.Equal(t, len(tail), bytes.Count(tail, []byte{0}))
}

func TestGenerate_TargetExactlyBaseSize(t *testing.T) {
	probe := testRequest(FormatJPEG, 50, 50, 1<<20)
	var tmp bytes.Buffer
	res, err := Generate(probe, &tmp)
	require.NoError(t, err)
	require.Equal(t, 100, res.Quality)

	exact := probe
	exact.TargetSize = res.BaseSize
	var sink bytes.Buffer
	res2, err := Generate(exact, &sink)
	require.NoError(t, err)
	assert.Equal(t, 100, res2.Quality)
	assert.Zero(t, res2.Padding)
	assert.Equal(t, res.BaseSize, int64(sink.Len()))
}

func TestGenerate_SizeUnreachable(t *testing.T) {
	var sink bytes.Buffer
	_, err := Generate(testRequest(FormatJPEG, 100, 100, 64), &sink)
	require.Error(t, err)
	assert.True(t, IsCategory(err, ErrorCategorySize))
	assert.ErrorContains(t, err, "64 bytes")
	assert.Zero(t, sink.Len(), "no partial output during the quality search")
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero width", func(r *Request) { r.Width = 0 }},
		{"negative height", func(r *Request) { r.Height = -1 }},
		{"zero target", func(r *Request) { r.TargetSize = 0 }},
		{"negative target", func(r *Request) { r.TargetSize = -5 }},
		{"negative border", func(r *Request) { r.Border = -1 }},
		{"unknown format", func(r *Request) { r.Format = Format("heic") }},
		{"oversize dimension", func(r *Request) { r.Width = maxDimension + 1 }},
		{"oversize pixel count", func(r *Request) { r.Width = 16384; r.Height = 8192 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(FormatJPEG, 10, 10, 1000)
			tt.mutate(&req)

			var sink bytes.Buffer
			_, err := Generate(req, &sink)
			require.Error(t, err)
			assert.True(t, IsCategory(err, ErrorCategoryInput))
			assert.Zero(t, sink.Len(), "rejected before any byte is written")
		})
	}
}

func TestGenerate_SinkFailurePropagates(t *testing.T) {
	sink := &failingSink{allow: padChunkSize + 2048, err: errors.New("write: no space left on device")}

	_, err := Generate(testRequest(FormatPNG, 24, 24, 10*1000*1000), sink)
	require.Error(t, err)
	assert.True(t, IsCategory(err, ErrorCategorySink))
}
