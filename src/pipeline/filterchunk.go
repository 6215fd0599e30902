package pipeline

// maxDictionarySize is DEFLATE's maximum sliding-window size: the largest
// preset dictionary a subsequent chunk's compressor can reference.
const maxDictionarySize = 32768

// FilterChunk holds one pixel chunk's filtered payload: each row prefixed
// with its one-byte filter-type tag.
type FilterChunk struct {
	Index   int
	Range   Range
	IsStart bool
	IsEnd   bool
	Data    []byte
}

// NewFilterChunk wraps filtered, carrying over src's position metadata.
func NewFilterChunk(src *PixelChunk, data []byte) *FilterChunk {
	return &FilterChunk{
		Index:   src.Index,
		Range:   src.Range,
		IsStart: src.IsStart,
		IsEnd:   src.IsEnd,
		Data:    data,
	}
}

// Dictionary returns the last min(32768, len(Data)) bytes of the filtered
// payload: the preset dictionary the next chunk's DEFLATE job primes with.
func (c *FilterChunk) Dictionary() []byte {
	if len(c.Data) <= maxDictionarySize {
		return c.Data
	}
	return c.Data[len(c.Data)-maxDictionarySize:]
}
