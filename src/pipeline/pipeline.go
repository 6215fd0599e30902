package pipeline

import (
	"fmt"

	"github.com/mac/parapng/src/compress"
	"github.com/mac/parapng/src/png/filter"
	"github.com/mac/parapng/src/workerpool"
)

// EmitFunc receives one chunk's compressed bytes, in chunk-index order, for
// wrapping as an IDAT payload by the caller.
type EmitFunc func(compressed []byte) error

// Config carries everything a Pipeline needs that doesn't change per row.
type Config struct {
	Height   int
	Stride   int
	BPP      int
	Indexed  bool
	Filter   filter.Mode
	Level    int
	Strategy compress.Strategy
	Pool     *workerpool.Pool
	MaxJobs  int
	ChunkSize int
	Emit     EmitFunc
}

// Pipeline drives the accumulate -> filter -> deflate -> emit state machine
// that turns submitted image rows into compressed IDAT payloads.
// WriteRows and Finish run on a single
// caller goroutine; filter and deflate jobs run on Config.Pool's workers and
// report back over a completion channel this goroutine alone drains, so the
// two ChunkMaps never need synchronization of their own.
type Pipeline struct {
	cfg Config

	ranges   []Range
	rangeIdx int
	current  *PixelChunk
	rowsSeen int

	prevPixelLastRow []byte
	lastFilterChunk  *FilterChunk

	completions chan Message
	filterMap   *ChunkMap[*FilterChunk]
	deflateMap  *ChunkMap[*DeflateChunk]
	inFlight    int

	adlerAgg  uint32
	adlerSeen bool
	failed    error
}

// New builds a Pipeline. Config.Pool is retained, not owned: the caller is
// responsible for closing it.
func New(cfg Config) *Pipeline {
	// Chunk boundaries are sized against the filtered row length (one tag
	// byte per row heavier than the raw stride), since that's what actually
	// flows through the compressor.
	ranges := Partition(cfg.Height, cfg.Stride+1, cfg.ChunkSize)
	p := &Pipeline{
		cfg:         cfg,
		ranges:      ranges,
		completions: make(chan Message, cfg.MaxJobs+1),
		filterMap:   NewChunkMap[*FilterChunk](),
		deflateMap:  NewChunkMap[*DeflateChunk](),
	}
	if len(ranges) > 0 {
		p.current = NewPixelChunk(0, ranges[0], cfg.Stride, cfg.Height)
	}
	return p
}

// TotalChunks returns the number of chunks the image was partitioned into,
// so a caller can report deflate progress as landedChunks/TotalChunks().
func (p *Pipeline) TotalChunks() int {
	return len(p.ranges)
}

// WriteRows accumulates rows into pixel chunks, dispatching filter jobs as
// chunks fill and applying backpressure: after each row it drains
// completions until fewer than MaxJobs jobs are in flight. Deflate jobs
// dispatched while draining can take the in-flight count above MaxJobs for
// a while.
func (p *Pipeline) WriteRows(rows [][]byte) error {
	if p.failed != nil {
		return p.failed
	}
	for _, row := range rows {
		if p.current == nil {
			return fmt.Errorf("pipeline: row submitted past the image's declared height")
		}
		p.current.Append(row)
		p.rowsSeen++

		if p.current.Full() {
			if err := p.dispatchFilter(p.current); err != nil {
				return err
			}
			p.prevPixelLastRow = p.current.LastRow()
			p.rangeIdx++
			if p.rangeIdx < len(p.ranges) {
				p.current = NewPixelChunk(p.rangeIdx, p.ranges[p.rangeIdx], p.cfg.Stride, p.cfg.Height)
			} else {
				p.current = nil
			}
		}

		if err := p.backpressure(); err != nil {
			return err
		}
	}
	return nil
}

// Finish blocks until every dispatched chunk has been filtered, deflated
// and emitted, then returns the Adler-32 of the full decompressed stream.
func (p *Pipeline) Finish() (uint32, error) {
	if p.failed != nil {
		return 0, p.failed
	}
	if p.rowsSeen != p.cfg.Height {
		return 0, fmt.Errorf("pipeline: received %d rows, expected %d", p.rowsSeen, p.cfg.Height)
	}
	for !(p.filterMap.Done() && p.deflateMap.Done() && p.inFlight == 0) {
		if err := p.drainOne(); err != nil {
			return 0, err
		}
	}
	return p.adlerAgg, nil
}

func (p *Pipeline) backpressure() error {
	for p.inFlight >= p.cfg.MaxJobs {
		if err := p.drainOne(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) drainOne() error {
	msg := <-p.completions
	switch msg.Kind {
	case Failed:
		p.failed = msg.Err
		return msg.Err
	case FilterDone:
		p.inFlight--
		p.filterMap.Land(msg.Filter.Index, msg.Filter)
		if err := p.drainFilterMap(); err != nil {
			p.failed = err
			return err
		}
	case DeflateDone:
		p.inFlight--
		p.deflateMap.Land(msg.Deflate.Index, msg.Deflate)
		if err := p.drainDeflateMap(); err != nil {
			p.failed = err
			return err
		}
	}
	return nil
}

// dispatchFilter submits a filter job for pc to the pool. It captures
// p.prevPixelLastRow by value before the goroutine starts: PixelChunk rows
// are immutable once appended, so sharing the slice across the goroutine
// boundary is safe.
func (p *Pipeline) dispatchFilter(pc *PixelChunk) error {
	prevRow := p.prevPixelLastRow
	mode := p.cfg.Filter
	bpp := p.cfg.BPP
	indexed := p.cfg.Indexed

	p.inFlight++
	p.filterMap.Dispatch()
	p.cfg.Pool.Submit(func() {
		fc, err := filterChunk(pc, prevRow, bpp, mode, indexed)
		if err != nil {
			p.completions <- Message{Kind: Failed, Err: wrapJobError(err)}
			return
		}
		p.completions <- Message{Kind: FilterDone, Filter: fc}
	})
	return nil
}

// drainFilterMap pops every filter chunk that has landed in order,
// dispatching a deflate job for each: a deflate job for chunk i needs chunk
// i-1's filtered payload as its preset dictionary, so dispatch must follow
// filterMap's index order even though filter jobs complete out of order.
func (p *Pipeline) drainFilterMap() error {
	for p.filterMap.Ready() {
		fc, ok := p.filterMap.PopFront()
		if !ok {
			break
		}
		var dict []byte
		if p.lastFilterChunk != nil {
			dict = p.lastFilterChunk.Dictionary()
		}
		p.lastFilterChunk = fc
		if err := p.dispatchDeflate(fc, dict); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) dispatchDeflate(fc *FilterChunk, dict []byte) error {
	level := p.cfg.Level
	strategy := p.cfg.Strategy

	p.inFlight++
	p.deflateMap.Dispatch()
	p.cfg.Pool.Submit(func() {
		dc, err := deflateChunk(fc, dict, level, strategy)
		if err != nil {
			p.completions <- Message{Kind: Failed, Err: wrapJobError(err)}
			return
		}
		p.completions <- Message{Kind: DeflateDone, Deflate: dc}
	})
	return nil
}

// drainDeflateMap pops every deflate chunk that has landed in order,
// emitting its compressed bytes and folding its Adler-32 into the running
// aggregate via the closed-form combine, so the whole stream's checksum
// never requires rescanning already-emitted bytes.
func (p *Pipeline) drainDeflateMap() error {
	for p.deflateMap.Ready() {
		dc, ok := p.deflateMap.PopFront()
		if !ok {
			break
		}
		if err := p.cfg.Emit(dc.Compressed); err != nil {
			return fmt.Errorf("pipeline: emit chunk %d: %w", dc.Index, err)
		}
		if !p.adlerSeen {
			p.adlerAgg = dc.Adler32
			p.adlerSeen = true
		} else {
			p.adlerAgg = compress.CombineAdler32(p.adlerAgg, dc.Adler32, int64(dc.Len))
		}
	}
	return nil
}

func filterChunk(pc *PixelChunk, prevRow []byte, bpp int, mode filter.Mode, indexed bool) (*FilterChunk, error) {
	out := make([]byte, 0, (pc.Stride+1)*len(pc.Rows))
	prev := prevRow
	for _, row := range pc.Rows {
		typ, filtered := filter.Select(row, prev, bpp, mode, indexed)
		out = append(out, byte(typ))
		out = append(out, filtered...)
		prev = row
	}
	return NewFilterChunk(pc, out), nil
}

func deflateChunk(fc *FilterChunk, dict []byte, level int, strategy compress.Strategy) (*DeflateChunk, error) {
	dw, err := compress.NewDeflateWriter(level, 15, strategy)
	if err != nil {
		return nil, err
	}
	if len(dict) > 0 {
		if err := dw.SetDictionary(dict); err != nil {
			return nil, err
		}
	}

	flush := compress.SyncFlush
	if fc.IsEnd {
		flush = compress.Finish
	}
	compressed, err := dw.Write(fc.Data, flush)
	if err != nil {
		return nil, err
	}

	adler := compress.Adler32(fc.Data)
	return NewDeflateChunk(fc, compressed, adler), nil
}
