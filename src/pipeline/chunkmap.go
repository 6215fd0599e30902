package pipeline

// ChunkMap is an ordered holding area for out-of-order completions,
// grounded on the staged, index-ordered workflow a content-addressed
// archive writer drives its own writer through: results land in any
// order, but are only ever consumed front-to-back. cursorIn is the next
// index that will be dispatched, cursorOut is the next index a caller is
// waiting to consume, and running counts dispatched-but-not-yet-landed
// work.
type ChunkMap[T any] struct {
	cursorIn  int
	cursorOut int
	running   int
	slots     map[int]T
}

// NewChunkMap returns an empty map ready to track completions starting at
// index 0.
func NewChunkMap[T any]() *ChunkMap[T] {
	return &ChunkMap[T]{slots: make(map[int]T)}
}

// Dispatch records that the chunk at the map's current cursorIn has been
// handed to a worker, advances cursorIn, and returns the index it was
// assigned.
func (m *ChunkMap[T]) Dispatch() int {
	idx := m.cursorIn
	m.cursorIn++
	m.running++
	return idx
}

// Land records a worker's completed result for idx. idx may land in any
// order relative to other in-flight work.
func (m *ChunkMap[T]) Land(idx int, value T) {
	m.slots[idx] = value
	m.running--
}

// Running returns the number of chunks dispatched but not yet landed.
func (m *ChunkMap[T]) Running() int {
	return m.running
}

// Ready reports whether the chunk at cursorOut has landed and can be
// popped.
func (m *ChunkMap[T]) Ready() bool {
	_, ok := m.slots[m.cursorOut]
	return ok
}

// PopFront yields the chunk at cursorOut if it has landed, advancing
// cursorOut. ok is false if that slot hasn't landed yet.
func (m *ChunkMap[T]) PopFront() (value T, ok bool) {
	v, found := m.slots[m.cursorOut]
	if !found {
		return value, false
	}
	delete(m.slots, m.cursorOut)
	m.cursorOut++
	return v, true
}

// Done reports whether every dispatched chunk has been popped: no chunk is
// running and nothing remains landed-but-unconsumed.
func (m *ChunkMap[T]) Done() bool {
	return m.running == 0 && len(m.slots) == 0 && m.cursorOut == m.cursorIn
}
