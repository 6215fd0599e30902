package png

import "io"

// WriteTransparency writes the tRNS chunk for data, validating its shape
// against h's color type:
//   - Greyscale: exactly 2 bytes (a 16-bit grey value to treat as transparent)
//   - Truecolor: exactly 6 bytes (a 16-bit RGB triple to treat as transparent)
//   - IndexedColor: 1..len(palette) bytes, one alpha per leading palette entry
//   - GreyscaleAlpha, TruecolorAlpha: forbidden, these already carry alpha
func WriteTransparency(w io.Writer, h Header, data []byte, paletteLen int) error {
	if h.ColorType.hasAlpha() {
		return invalidInput("tRNS is not allowed for color type %s", h.ColorType)
	}

	switch h.ColorType {
	case Greyscale:
		if len(data) != 2 {
			return invalidInput("tRNS for Greyscale must be exactly 2 bytes, got %d", len(data))
		}
	case Truecolor:
		if len(data) != 6 {
			return invalidInput("tRNS for Truecolor must be exactly 6 bytes, got %d", len(data))
		}
	case IndexedColor:
		if len(data) == 0 || len(data) > paletteLen {
			return invalidInput("tRNS for IndexedColor must have 1..%d entries, got %d", paletteLen, len(data))
		}
	default:
		return invalidInput("unsupported color type %s for tRNS", h.ColorType)
	}

	return WriteChunk(w, ChunkTRNS, data)
}
