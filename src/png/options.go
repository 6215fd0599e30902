package png

import (
	"github.com/mac/parapng/src/compress"
	"github.com/mac/parapng/src/png/filter"
	"github.com/mac/parapng/src/workerpool"
)

// minChunkSize is the smallest target chunk size accepted by Options.
const minChunkSize = 32768

// CompressionLevel names the three DEFLATE effort presets this package maps
// onto concrete levels.
type CompressionLevel int

const (
	Fast CompressionLevel = iota
	Default
	High
)

func (l CompressionLevel) deflateLevel() int {
	switch l {
	case Fast:
		return 1
	case High:
		return 9
	default:
		return 6
	}
}

// FilterMode selects how each row's filter type is chosen: either
// recomputed per row (Adaptive) or pinned to one filter for the whole
// image (Fixed).
type FilterMode struct {
	Adaptive bool
	Fixed    filter.Type
}

func AdaptiveFilter() FilterMode { return FilterMode{Adaptive: true} }
func FixedFilter(t filter.Type) FilterMode {
	return FilterMode{Fixed: t}
}

func (m FilterMode) toFilterMode() filter.Mode {
	return filter.Mode{Adaptive: m.Adaptive, Fixed: m.Fixed}
}

// isFixedNone reports whether this mode always produces unfiltered
// (filter type None) rows, the one case where filtering doesn't expose
// extra redundancy for DEFLATE's Filtered strategy hint to exploit.
func (m FilterMode) isFixedNone() bool {
	return !m.Adaptive && m.Fixed == filter.None
}

// StrategyMode selects the DEFLATE strategy: either chosen from the
// effective filter mode (Adaptive, see resolve) or pinned explicitly (e.g.
// HuffmanOnly for already-filtered, high-entropy data).
type StrategyMode struct {
	Adaptive bool
	Fixed    compress.Strategy
}

func AdaptiveStrategy() StrategyMode { return StrategyMode{Adaptive: true} }
func FixedStrategy(s compress.Strategy) StrategyMode {
	return StrategyMode{Fixed: s}
}

// resolve picks a concrete DEFLATE strategy. For Adaptive it follows the
// rows actually being fed to the compressor: Default when the effective
// filter is Fixed(None) (raw pixel data, no row-to-row byte transform to
// exploit), Filtered otherwise (filtered rows are exactly the kind of
// small-distance-match-heavy data the Filtered strategy hint targets).
// effectiveFilterIsNone is the caller's computed answer to "will every row
// reaching the compressor be unfiltered", accounting for both a Fixed(None)
// FilterMode and indexed-color images, which always filter to None.
func (m StrategyMode) resolve(effectiveFilterIsNone bool) compress.Strategy {
	if m.Adaptive {
		if effectiveFilterIsNone {
			return compress.StrategyDefault
		}
		return compress.StrategyFiltered
	}
	return m.Fixed
}

// Options is the per-encoder configuration: chunk size, compression level,
// filter and strategy selection, and worker pool wiring.
type Options struct {
	ChunkSize        int
	CompressionLevel CompressionLevel
	FilterMode       FilterMode
	StrategyMode     StrategyMode
	Streaming        bool
	MaxJobs          int
	Pool             *workerpool.Pool
}

// Validate checks ChunkSize against the 32 KiB floor: anything smaller
// leaves too little room for the preset dictionary each chunk after the
// first relies on.
func (o Options) Validate() error {
	if o.ChunkSize < minChunkSize {
		return invalidInput("chunk size %d is below the %d byte minimum", o.ChunkSize, minChunkSize)
	}
	return nil
}

// DefaultOptions returns balanced, streaming defaults: Default compression,
// adaptive filtering and strategy, a 256 KiB target chunk, and MaxJobs left
// at 0, which the encoder resolves to the pool's worker count plus 2.
func DefaultOptions() Options {
	return Options{
		ChunkSize:        256 * 1024,
		CompressionLevel: Default,
		FilterMode:       AdaptiveFilter(),
		StrategyMode:     AdaptiveStrategy(),
		Streaming:        true,
	}
}
