package pipeline

// DeflateChunk holds one filter chunk's compressed bytes and the Adler-32
// of its raw (uncompressed) filtered payload.
type DeflateChunk struct {
	Index      int
	IsStart    bool
	IsEnd      bool
	Compressed []byte
	Adler32    uint32
	Len        int // length of the filtered payload this chunk's Adler32 covers
}

// NewDeflateChunk wraps compressed, carrying over src's position metadata.
func NewDeflateChunk(src *FilterChunk, compressed []byte, adler32 uint32) *DeflateChunk {
	return &DeflateChunk{
		Index:      src.Index,
		IsStart:    src.IsStart,
		IsEnd:      src.IsEnd,
		Compressed: compressed,
		Adler32:    adler32,
		Len:        len(src.Data),
	}
}
