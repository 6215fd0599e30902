package png

import "io"

// Color is one RGB palette entry.
type Color struct {
	R, G, B uint8
}

// Palette is the ordered set of colors a caller wants indexed (color type 3)
// output to reference. This package does not quantize colors down to a
// palette itself; callers that already have indexed pixel data supply the
// palette they built it against.
type Palette struct {
	Colors []Color
}

// Bytes serializes the palette as the 3*N byte PLTE payload.
func (p Palette) Bytes() []byte {
	out := make([]byte, 0, len(p.Colors)*3)
	for _, c := range p.Colors {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// WritePalette writes the PLTE chunk for p. The palette must be non-empty
// and no larger than 256 entries.
func WritePalette(w io.Writer, p Palette) error {
	if len(p.Colors) == 0 {
		return invalidInput("palette must not be empty")
	}
	if len(p.Colors) > 256 {
		return invalidInput("palette has %d entries, maximum is 256", len(p.Colors))
	}
	return WriteChunk(w, ChunkPLTE, p.Bytes())
}
