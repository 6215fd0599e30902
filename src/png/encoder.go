package png

import (
	"bytes"
	"io"

	"github.com/rs/zerolog"

	"github.com/mac/parapng/src/compress"
	"github.com/mac/parapng/src/pipeline"
	"github.com/mac/parapng/src/workerpool"
)

// zlibWindowSize is the window size every DeflateWriter this package
// constructs actually uses; klauspost/compress/flate's window is fixed at
// 32 KiB regardless of the level requested.
const zlibWindowSize = 32768

// Sink is the byte destination an Encoder writes to: append-only writes
// plus an explicit flush at Finish.
type Sink interface {
	io.Writer
	Flush() error
}

// writerSink adapts a plain io.Writer into a Sink with a no-op Flush, for
// writers (bytes.Buffer, a *bufio.Writer the caller already owns, a network
// connection) that need no explicit flush step.
type writerSink struct {
	io.Writer
}

func (writerSink) Flush() error { return nil }

// NewSink wraps w as a Sink with a no-op Flush.
func NewSink(w io.Writer) Sink {
	return writerSink{w}
}

// stage tracks which part of the encoder lifecycle a call arrives in, to
// reject chunks written out of order.
type stage int

const (
	stageBeforeHeader stage = iota
	stageAfterHeader
	stageWritingRows
	stageFinished
)

// Encoder drives one PNG output stream through its full lifecycle:
// WriteHeader, optional WritePalette/WriteTransparency/WriteChunk,
// repeated WriteImageRows, then Finish. It owns a pipeline.Pipeline that
// does the actual filter/deflate work on a worker pool.
type Encoder struct {
	sink   Sink
	opts   Options
	logger *zerolog.Logger

	header     Header
	paletteLen int
	stage      stage

	pipe     *pipeline.Pipeline
	pool     *workerpool.Pool
	ownsPool bool

	zlibHeaderWritten bool
	idatBuffer        bytes.Buffer // accumulates payload when !opts.Streaming
	rowsSubmitted     int
	totalRows         int
	chunksEmitted     int
	totalChunks       int
}

// NewEncoder validates opts and returns an Encoder ready for WriteHeader.
// logger may be nil.
func NewEncoder(sink Sink, opts Options, logger *zerolog.Logger) (*Encoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{sink: sink, opts: opts, logger: logger}, nil
}

func (e *Encoder) debug(event string) {
	if e.logger == nil {
		return
	}
	e.logger.Debug().Str("event", event).Int("rowsSubmitted", e.rowsSubmitted).Int("chunksEmitted", e.chunksEmitted).Msg("parapng")
}

// WriteHeader emits the 8-byte PNG signature followed by the IHDR chunk.
// It must be called exactly once, before anything else.
func (e *Encoder) WriteHeader(h Header) error {
	if e.stage != stageBeforeHeader {
		return ErrHeaderAlreadyWritten
	}
	if err := WriteSignature(e.sink); err != nil {
		return err
	}
	if err := WriteHeader(e.sink, h); err != nil {
		return err
	}
	e.header = h
	e.totalRows = int(h.Height)
	e.stage = stageAfterHeader
	return nil
}

// WritePalette emits the PLTE chunk. Only valid between WriteHeader and the
// first WriteImageRows call.
func (e *Encoder) WritePalette(p Palette) error {
	if err := e.requireAfterHeader(); err != nil {
		return err
	}
	if err := WritePalette(e.sink, p); err != nil {
		return err
	}
	e.paletteLen = len(p.Colors)
	return nil
}

// WriteTransparency emits the tRNS chunk. Only valid between WriteHeader
// and the first WriteImageRows call.
func (e *Encoder) WriteTransparency(data []byte) error {
	if err := e.requireAfterHeader(); err != nil {
		return err
	}
	return WriteTransparency(e.sink, e.header, data, e.paletteLen)
}

// WriteChunk emits an arbitrary ancillary chunk verbatim. Like palette and
// transparency, ancillary chunks never interleave with IDAT, so this is
// only valid before the first WriteImageRows call.
func (e *Encoder) WriteChunk(tag ChunkType, data []byte) error {
	if err := e.requireAfterHeader(); err != nil {
		return err
	}
	return WriteChunk(e.sink, tag, data)
}

func (e *Encoder) requireAfterHeader() error {
	switch e.stage {
	case stageBeforeHeader:
		return ErrHeaderNotWritten
	case stageAfterHeader:
		return nil
	default:
		return ErrOutOfOrder
	}
}

// WriteImageRows submits one or more complete, unfiltered scanlines (each
// Header.Stride() bytes) to the pipeline. The first call lazily starts the
// worker pool (if Options.Pool is nil) and the pipeline itself.
func (e *Encoder) WriteImageRows(rows [][]byte) error {
	switch e.stage {
	case stageBeforeHeader:
		return ErrHeaderNotWritten
	case stageFinished:
		return ErrOutOfOrder
	}

	if e.pipe == nil {
		if err := e.startPipeline(); err != nil {
			return err
		}
	}
	e.stage = stageWritingRows

	stride := e.header.Stride()
	for _, row := range rows {
		if len(row) != stride {
			return invalidInput("row has %d bytes, expected stride %d", len(row), stride)
		}
	}

	if err := e.pipe.WriteRows(rows); err != nil {
		return wrapOther(err, "writing image rows")
	}
	e.rowsSubmitted += len(rows)
	e.debug("wroteRows")
	return nil
}

func (e *Encoder) startPipeline() error {
	pool := e.opts.Pool
	if pool == nil {
		pool = workerpool.New(workerpool.DefaultWorkerCount())
		e.pool = pool
		e.ownsPool = true
	}

	maxJobs := e.opts.MaxJobs
	if maxJobs <= 0 {
		maxJobs = pool.Size() + 2
	}

	indexed := e.header.ColorType == IndexedColor
	// Indexed color forces every row to filter type None regardless of
	// FilterMode, so the strategy resolution needs to see that too.
	effectiveFilterIsNone := indexed || e.opts.FilterMode.isFixedNone()

	e.pipe = pipeline.New(pipeline.Config{
		Height:    int(e.header.Height),
		Stride:    e.header.Stride(),
		BPP:       e.header.BytesPerPixel(),
		Indexed:   indexed,
		Filter:    e.opts.FilterMode.toFilterMode(),
		Level:     e.opts.CompressionLevel.deflateLevel(),
		Strategy:  e.opts.StrategyMode.resolve(effectiveFilterIsNone),
		Pool:      pool,
		MaxJobs:   maxJobs,
		ChunkSize: e.opts.ChunkSize,
		Emit:      e.emitIDAT,
	})
	e.totalChunks = e.pipe.TotalChunks()
	return nil
}

// emitIDAT receives one landed, ordered pipeline segment, prefixing the
// 2-byte zlib header on the very first call so the concatenation of every
// IDAT payload (Streaming) or the single final IDAT payload (Buffered)
// forms one valid zlib stream.
//
// Streaming (the default) writes each segment as its own IDAT chunk as
// soon as it lands, keeping memory bounded by one in-flight chunk.
// Buffered (Options.Streaming == false) instead accumulates every segment
// into idatBuffer and defers writing until the last chunk lands, trading
// that memory bound for a single IDAT chunk in the output.
func (e *Encoder) emitIDAT(compressed []byte) error {
	payload := compressed
	if !e.zlibHeaderWritten {
		header, err := compress.ZlibHeaderBytes(zlibWindowSize, e.zlibFlevel())
		if err != nil {
			return wrapOther(err, "building zlib header")
		}
		payload = append(header, compressed...)
		e.zlibHeaderWritten = true
	}

	e.chunksEmitted++

	if !e.opts.Streaming {
		e.idatBuffer.Write(payload)
		if e.chunksEmitted < e.totalChunks {
			return nil
		}
		payload = e.idatBuffer.Bytes()
	}

	return WriteChunk(e.sink, ChunkIDAT, payload)
}

func (e *Encoder) zlibFlevel() uint8 {
	switch e.opts.CompressionLevel {
	case Fast:
		return 0
	case High:
		return 3
	default:
		return 2
	}
}

// Progress returns the fraction of chunks whose deflate output has landed
// and been emitted, in [0, 1]. It is 0.0 before the pipeline starts (no
// rows submitted yet) and before the first deflate completes, regardless
// of how many rows have already been submitted.
func (e *Encoder) Progress() float64 {
	if e.totalChunks == 0 {
		return 0
	}
	return float64(e.chunksEmitted) / float64(e.totalChunks)
}

// IsFinished reports whether Finish has completed successfully.
func (e *Encoder) IsFinished() bool {
	return e.stage == stageFinished
}

// Finish drains the pipeline, writes the zlib Adler-32 trailer as a final
// IDAT chunk, writes IEND, flushes the sink, and shuts down any pool this
// Encoder started itself.
func (e *Encoder) Finish() error {
	if e.stage == stageBeforeHeader {
		return ErrHeaderNotWritten
	}
	if e.stage == stageFinished {
		return ErrOutOfOrder
	}

	var adler uint32
	if e.pipe != nil {
		if e.rowsSubmitted < e.totalRows {
			return ErrIncompleteImage
		}
		a, err := e.pipe.Finish()
		if err != nil {
			return wrapOther(err, "draining pipeline")
		}
		adler = a
	} else if e.totalRows > 0 {
		return ErrIncompleteImage
	}

	if e.zlibHeaderWritten {
		footer := compress.ZlibFooterBytes(adler)
		if err := WriteChunk(e.sink, ChunkIDAT, footer[:]); err != nil {
			return err
		}
	}

	if err := WriteEnd(e.sink); err != nil {
		return err
	}
	if err := e.sink.Flush(); err != nil {
		return wrapOther(err, "flushing sink")
	}

	if e.ownsPool {
		e.pool.Close()
	}

	e.stage = stageFinished
	e.debug("finished")
	return nil
}
