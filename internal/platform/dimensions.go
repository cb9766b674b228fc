package platform

import (
	"bytes"
	"encoding/binary"

	"github.com/rs/zerolog/log"
)

// Fallback dimensions declared when the image header cannot be parsed. The
// upload still succeeds; the platform just gets a square aspect ratio.
const (
	fallbackWidth  = 1080
	fallbackHeight = 1080
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// imageDimensions reads the pixel dimensions from a PNG or JPEG header.
// Any parse failure degrades to a square placeholder and a warning log.
func imageDimensions(data []byte) (width, height int) {
	if w, h, ok := pngDimensions(data); ok {
		return w, h
	}
	if w, h, ok := jpegDimensions(data); ok {
		return w, h
	}

	log.Warn().Msg("Could not parse image dimensions, declaring square placeholder")
	return fallbackWidth, fallbackHeight
}

// pngDimensions reads width and height from the IHDR chunk, which the PNG
// spec requires immediately after the 8-byte signature.
func pngDimensions(data []byte) (int, int, bool) {
	if len(data) < 24 || !bytes.HasPrefix(data, pngSignature) {
		return 0, 0, false
	}
	if !bytes.Equal(data[12:16], []byte("IHDR")) {
		return 0, 0, false
	}
	width := int(binary.BigEndian.Uint32(data[16:20]))
	height := int(binary.BigEndian.Uint32(data[20:24]))
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// jpegDimensions scans segment markers for a start-of-frame header.
func jpegDimensions(data []byte) (int, int, bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false
	}

	offset := 2
	for offset+9 < len(data) {
		if data[offset] != 0xFF {
			return 0, 0, false
		}
		marker := data[offset+1]

		// SOF0..SOF15 hold dimensions; C4/C8/CC are huffman/arithmetic
		// tables, not frames.
		if marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC {
			height := int(binary.BigEndian.Uint16(data[offset+5 : offset+7]))
			width := int(binary.BigEndian.Uint16(data[offset+7 : offset+9]))
			if width <= 0 || height <= 0 {
				return 0, 0, false
			}
			return width, height, true
		}

		length := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		if length < 2 {
			return 0, 0, false
		}
		offset += 2 + length
	}
	return 0, 0, false
}
