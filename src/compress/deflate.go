package compress

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/flate"
)

// Strategy mirrors zlib's deflate strategy hints, passed through to the
// underlying DEFLATE core. klauspost/compress/flate only distinguishes
// default vs. Huffman-only match finding; Filtered and RLE are accepted for
// API compatibility with the caller-facing options model and mapped to the
// closest behavior the library supports.
type Strategy int

const (
	StrategyDefault Strategy = iota
	StrategyFiltered
	StrategyHuffmanOnly
	StrategyRLE
	StrategyFixed
)

// FlushMode selects how a Write call terminates its DEFLATE block.
type FlushMode int

const (
	// SyncFlush ends the current block on a byte boundary without closing
	// the stream, so a later Write can keep extending the same logical
	// DEFLATE stream (used between chunks).
	SyncFlush FlushMode = iota
	// Finish closes the stream with the end-of-stream marker (used once,
	// on the last chunk).
	Finish
)

// Level maps the caller-facing Fast/Default/High tiers onto concrete
// DEFLATE levels.
type Level int

const (
	LevelFast    Level = 1
	LevelDefault Level = 6
	LevelHigh    Level = 9
)

// DeflateWriter wraps github.com/klauspost/compress/flate to provide the
// subset of behavior the chunk pipeline needs: a preset dictionary
// installed before the first byte of input, and an explicit choice between
// a byte-boundary sync flush and a stream-terminating finish. It never
// emits a zlib header or Adler-32 trailer itself — those are assembled once
// by the PNG encoder, not once per chunk.
type DeflateWriter struct {
	level      int
	windowBits int
	strategy   Strategy
	dictionary []byte
	buf        bytes.Buffer
	fw         *flate.Writer
	wroteAny   bool
}

// NewDeflateWriter constructs a writer at the given DEFLATE level. windowBits
// is carried for documentation/parity with mtpng's Deflate::new (positive
// means "zlib-framed" conceptually, negative means "raw"); this wrapper
// always emits a raw DEFLATE stream — the caller (compress.WriteZlibHeader/
// WriteAdler32Footer) is responsible for any enclosing zlib framing, because
// the pipeline needs exactly one header and one trailer across many chunks,
// not one pair per chunk.
func NewDeflateWriter(level int, windowBits int, strategy Strategy) (*DeflateWriter, error) {
	if level < 1 || level > 9 {
		return nil, fmt.Errorf("compress: invalid DEFLATE level %d", level)
	}

	d := &DeflateWriter{
		level:      level,
		windowBits: windowBits,
		strategy:   strategy,
	}

	fw, err := flate.NewWriter(&d.buf, d.effectiveLevel())
	if err != nil {
		return nil, fmt.Errorf("compress: flate.NewWriter: %w", err)
	}
	d.fw = fw
	return d, nil
}

// effectiveLevel folds strategy into the level klauspost/compress/flate
// actually accepts: it has no separate strategy parameter, but treats
// flate.HuffmanOnly as a pseudo-level. Filtered/RLE/Fixed have no equivalent
// in this DEFLATE core and fall back to the configured numeric level.
func (d *DeflateWriter) effectiveLevel() int {
	if d.strategy == StrategyHuffmanOnly {
		return flate.HuffmanOnly
	}
	return d.level
}

// SetDictionary installs a preset dictionary. It must be called before the
// first Write. klauspost/compress/flate (like the standard library it
// forks) only accepts a dictionary at construction time via NewWriterDict,
// so this discards and rebuilds the internal writer rather than mutating
// it in place — safe because nothing has been written yet.
func (d *DeflateWriter) SetDictionary(dict []byte) error {
	if d.wroteAny {
		return fmt.Errorf("compress: SetDictionary called after Write")
	}
	d.dictionary = dict
	d.buf.Reset()

	fw, err := flate.NewWriterDict(&d.buf, d.effectiveLevel(), dict)
	if err != nil {
		return fmt.Errorf("compress: flate.NewWriterDict: %w", err)
	}
	d.fw = fw
	return nil
}

// Write compresses p and terminates the resulting block per flush, then
// returns the bytes produced so far by this writer (SyncFlush output is
// ready to be taken as a complete chunk payload; Finish output includes the
// end-of-stream marker).
func (d *DeflateWriter) Write(p []byte, flush FlushMode) ([]byte, error) {
	d.wroteAny = true
	if len(p) > 0 {
		if _, err := d.fw.Write(p); err != nil {
			return nil, fmt.Errorf("compress: deflate write: %w", err)
		}
	}

	switch flush {
	case SyncFlush:
		if err := d.fw.Flush(); err != nil {
			return nil, fmt.Errorf("compress: deflate sync flush: %w", err)
		}
	case Finish:
		if err := d.fw.Close(); err != nil {
			return nil, fmt.Errorf("compress: deflate finish: %w", err)
		}
	default:
		return nil, fmt.Errorf("compress: unknown flush mode %d", flush)
	}

	out := make([]byte, d.buf.Len())
	copy(out, d.buf.Bytes())
	d.buf.Reset()
	return out, nil
}

// Finish closes the underlying writer without any further input, returning
// any trailing bytes (the end-of-stream marker).
func (d *DeflateWriter) Finish() ([]byte, error) {
	return d.Write(nil, Finish)
}

// LevelFor maps the Fast/Default/High tiers to a concrete DEFLATE level.
func LevelFor(l Level) int {
	switch l {
	case LevelFast:
		return 1
	case LevelHigh:
		return 9
	default:
		return 6
	}
}
