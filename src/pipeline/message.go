package pipeline

// MessageKind tags a completion message flowing back from the worker pool
// to the encoder's single consuming goroutine.
type MessageKind int

const (
	FilterDone MessageKind = iota
	DeflateDone
	Failed
)

// Message is what a worker sends on the completion channel. Exactly one of
// Filter, Deflate, or Err is set, matching Kind.
type Message struct {
	Kind    MessageKind
	Filter  *FilterChunk
	Deflate *DeflateChunk
	Err     error
}
