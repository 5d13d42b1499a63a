package internal

// Quality sweep bounds. The sweep is linear rather than a binary search:
// codec size is not guaranteed monotone in quality, and a fixed downward
// sweep with an attempt cap always terminates.
const (
	qualityStart = 100
	qualityFloor = 5
	qualityStep  = 5
)

// encodeToFit finds the highest quality at which the encoded image does not
// exceed target, re-encoding the same pixel buffer at decreasing quality.
// It returns the encoded bytes and the quality used, or a size_unreachable
// error when even the floor quality overshoots. The format is only used to
// flavor error messages; all encoding goes through encode.
func encodeToFit(pix *PixelBuffer, format Format, encode EncodeFunc, target int64) ([]byte, int, error) {
	maxAttempts := (qualityStart-qualityFloor)/qualityStep + 1

	quality := qualityStart
	var smallest int64 = -1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		data, err := encode(pix, quality)
		if err != nil {
			return nil, 0, wrapEncodeError(format, quality, err)
		}
		size := int64(len(data))
		if size <= target {
			return data, quality, nil
		}
		if smallest < 0 || size < smallest {
			smallest = size
		}
		quality -= qualityStep
	}

	return nil, 0, errSizeUnreachable(target, smallest, qualityFloor)
}
