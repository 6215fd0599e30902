package pipeline

// PixelChunk holds a contiguous run of raw, unfiltered image rows. It is
// exclusively owned by the accumulator while rows are being appended; once
// full it is handed to a filter job and never mutated again.
type PixelChunk struct {
	Index    int
	Range    Range
	IsStart  bool
	IsEnd    bool
	Rows     [][]byte
	Stride   int
	height   int
}

// NewPixelChunk allocates an empty chunk ready to receive Range.Len() rows.
func NewPixelChunk(index int, r Range, stride, height int) *PixelChunk {
	return &PixelChunk{
		Index:   index,
		Range:   r,
		IsStart: r.Start == 0,
		IsEnd:   r.End == height,
		Rows:    make([][]byte, 0, r.Len()),
		Stride:  stride,
		height:  height,
	}
}

// Full reports whether every row in the chunk's range has been appended.
func (c *PixelChunk) Full() bool {
	return len(c.Rows) == c.Range.Len()
}

// Append adds one row, copying it so the caller's buffer can be reused.
func (c *PixelChunk) Append(row []byte) {
	buf := make([]byte, len(row))
	copy(buf, row)
	c.Rows = append(c.Rows, buf)
}

// LastRow returns the chunk's final row, used by the next chunk's filter
// job as the "above" row for its first line.
func (c *PixelChunk) LastRow() []byte {
	if len(c.Rows) == 0 {
		return nil
	}
	return c.Rows[len(c.Rows)-1]
}
