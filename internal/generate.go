package internal

import "io"

const (
	// maxDimension caps a single side so hostile or fat-fingered requests
	// cannot demand absurd geometry.
	maxDimension = 32768
	// maxPixelCount bounds width*height (64 MP keeps the RGB buffer under
	// ~192 MiB). The target size itself is unbounded; only the pixel
	// buffer lives in memory.
	maxPixelCount int64 = 64 * 1024 * 1024
)

// Request describes one fixture to generate.
type Request struct {
	Width       int
	Height      int
	TargetSize  int64
	Format      Format
	Border      int
	BorderColor Color
	FillColor   Color
}

// Result reports what a successful generation produced. BaseSize+Padding
// always equals the requested target size.
type Result struct {
	Quality  int
	BaseSize int64
	Padding  int64
}

func (r Request) validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return errInput("dimensions must be positive, got %dx%d", r.Width, r.Height)
	}
	if r.Width > maxDimension || r.Height > maxDimension {
		return errInput("dimension exceeds limit %d, got %dx%d", maxDimension, r.Width, r.Height)
	}
	if pixels := int64(r.Width) * int64(r.Height); pixels > maxPixelCount {
		return errInput("pixel count %d exceeds limit %d", pixels, maxPixelCount)
	}
	if r.TargetSize <= 0 {
		return errInput("target size must be positive, got %d", r.TargetSize)
	}
	if r.Border < 0 {
		return errInput("border must not be negative, got %d", r.Border)
	}
	if _, err := encoderFor(r.Format); err != nil {
		return errInput("%v", err)
	}
	return nil
}

// Generate synthesizes the pattern, finds a quality whose encoding fits
// under the target size, and writes encoded bytes plus zero padding to the
// sink so the total is exactly req.TargetSize bytes. The sink is flushed if
// it supports flushing; opening, syncing and closing it belong to the
// caller, as does any temp-file-and-rename atomicity.
//
// All failures come back as *GenerateError; nothing is retried and nothing
// is swallowed. On a sink failure the partially written output is left for
// the caller to deal with.
func Generate(req Request, sink io.Writer) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	encode, err := encoderFor(req.Format)
	if err != nil {
		return nil, errInput("%v", err)
	}

	pix := NewPatternBuffer(req.Width, req.Height, req.Border, req.BorderColor, req.FillColor)

	encoded, quality, err := encodeToFit(pix, req.Format, encode, req.TargetSize)
	if err != nil {
		return nil, err
	}

	padding, err := writeSized(sink, encoded, req.TargetSize)
	if err != nil {
		return nil, err
	}

	return &Result{
		Quality:  quality,
		BaseSize: int64(len(encoded)),
		Padding:  padding,
	}, nil
}
