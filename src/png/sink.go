package png

import "bufio"

// bufferedSink adapts a *bufio.Writer into a Sink whose Flush actually
// drains the buffer, for callers writing to a file or socket who want
// batched syscalls during WriteImageRows and a guaranteed flush at Finish.
type bufferedSink struct {
	bw *bufio.Writer
}

// NewBufferedSink wraps bw as a Sink backed by a real Flush.
func NewBufferedSink(bw *bufio.Writer) Sink {
	return bufferedSink{bw}
}

func (s bufferedSink) Write(p []byte) (int, error) { return s.bw.Write(p) }
func (s bufferedSink) Flush() error                { return s.bw.Flush() }
