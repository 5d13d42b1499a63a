package internal

import "io"

// padChunkSize is the unit of streamed zero padding. One zero-filled chunk
// of this size is reused for every full chunk, so padding a multi-gigabyte
// target costs a single 1 MiB allocation.
const padChunkSize = 1 << 20

// flusher is implemented by buffered sinks that need a flush before the
// output can be considered complete.
type flusher interface {
	Flush() error
}

// writeSized materializes the output artifact: the encoded bytes verbatim,
// then exactly target-len(encoded) zero bytes streamed in chunks. Padding
// is only ever appended after the encoded image, never interleaved, so the
// prefix stays a decodable image. Returns the number of padding bytes
// written.
func writeSized(sink io.Writer, encoded []byte, target int64) (int64, error) {
	if _, err := sink.Write(encoded); err != nil {
		return 0, wrapSinkError(err)
	}

	padding := target - int64(len(encoded))
	remaining := padding
	if remaining > 0 {
		chunk := make([]byte, padChunkSize)
		for remaining >= padChunkSize {
			if _, err := sink.Write(chunk); err != nil {
				return 0, wrapSinkError(err)
			}
			remaining -= padChunkSize
		}
		if remaining > 0 {
			if _, err := sink.Write(make([]byte, remaining)); err != nil {
				return 0, wrapSinkError(err)
			}
		}
	}

	if f, ok := sink.(flusher); ok {
		if err := f.Flush(); err != nil {
			return 0, wrapSinkError(err)
		}
	}
	return padding, nil
}
