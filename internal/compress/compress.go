// Package compress provides optional zstd compression for element
// payloads, applied only when it demonstrably saves space.
package compress

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec identifies how a stored payload's bytes are encoded. It is
// recorded as a single trailing marker byte so a reader can reverse the
// transform without any side-channel metadata.
type Codec byte

const (
	// CodecNone marks an uncompressed payload, byte-for-byte what the
	// caller supplied.
	CodecNone Codec = 0
	// CodecZstd marks a zstd-compressed payload.
	CodecZstd Codec = 1
)

// MinSize is the minimum payload size, in bytes, below which compression
// is never attempted.
const MinSize = 256

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("compress: failed to initialize zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("compress: failed to initialize zstd decoder: %v", err))
	}
}

// ShouldCompress reports whether a compressed candidate is worth keeping:
// the original must be at least minSize bytes, and the compressed form
// must be smaller than 95% of the original (at least 5% savings).
func ShouldCompress(originalSize, compressedSize, minSize int) bool {
	if originalSize < minSize {
		return false
	}
	threshold := float64(originalSize) * 0.95
	return float64(compressedSize) < threshold
}

// Encode compresses payload with zstd and appends a trailing codec
// marker byte. If payload is smaller than MinSize, or compression does
// not save at least 5%, the original payload is returned untouched with
// a CodecNone marker.
func Encode(payload []byte) []byte {
	if len(payload) < MinSize {
		return append(append([]byte(nil), payload...), byte(CodecNone))
	}
	compressed := encoder.EncodeAll(payload, nil)
	if !ShouldCompress(len(payload), len(compressed), MinSize) {
		return append(append([]byte(nil), payload...), byte(CodecNone))
	}
	return append(compressed, byte(CodecZstd))
}

// Decode reverses Encode: it strips and interprets the trailing codec
// marker byte and, if needed, decompresses the remaining bytes.
func Decode(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("compress: empty stored payload has no codec marker")
	}
	marker := Codec(stored[len(stored)-1])
	body := stored[:len(stored)-1]
	switch marker {
	case CodecNone:
		return body, nil
	case CodecZstd:
		out, err := decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: zstd decode failed: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compress: unknown codec marker %d", marker)
	}
}

// equal reports byte-for-byte equality; used only by tests in this
// package to keep them free of reflect.DeepEqual noise.
func equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}
