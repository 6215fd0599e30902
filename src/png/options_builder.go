package png

import (
	"github.com/mac/parapng/src/compress"
	"github.com/mac/parapng/src/png/filter"
	"github.com/mac/parapng/src/workerpool"
)

// OptionsBuilder builds Options via chained setters, mirroring the
// Fast/Balanced/Max preset pattern this package's encoder has always used,
// generalized to the new chunked-pipeline configuration surface.
type OptionsBuilder struct {
	opts Options
}

func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{opts: DefaultOptions()}
}

// Fast favors throughput: DEFLATE level 1, fixed Sub filter (cheap to
// compute, usually decent on photographic data), huffman-only strategy.
func (b *OptionsBuilder) Fast() *OptionsBuilder {
	b.opts.CompressionLevel = Fast
	b.opts.FilterMode = FixedFilter(filter.Sub)
	b.opts.StrategyMode = FixedStrategy(compress.StrategyHuffmanOnly)
	return b
}

// Balanced favors a good size/speed tradeoff: DEFLATE level 6, adaptive
// per-row filtering.
func (b *OptionsBuilder) Balanced() *OptionsBuilder {
	b.opts.CompressionLevel = Default
	b.opts.FilterMode = AdaptiveFilter()
	b.opts.StrategyMode = AdaptiveStrategy()
	return b
}

// Max favors output size over speed: DEFLATE level 9, adaptive filtering.
func (b *OptionsBuilder) Max() *OptionsBuilder {
	b.opts.CompressionLevel = High
	b.opts.FilterMode = AdaptiveFilter()
	b.opts.StrategyMode = AdaptiveStrategy()
	return b
}

func (b *OptionsBuilder) ChunkSize(bytes int) *OptionsBuilder {
	b.opts.ChunkSize = bytes
	return b
}

func (b *OptionsBuilder) CompressionLevel(level CompressionLevel) *OptionsBuilder {
	b.opts.CompressionLevel = level
	return b
}

func (b *OptionsBuilder) FilterMode(mode FilterMode) *OptionsBuilder {
	b.opts.FilterMode = mode
	return b
}

func (b *OptionsBuilder) StrategyMode(mode StrategyMode) *OptionsBuilder {
	b.opts.StrategyMode = mode
	return b
}

func (b *OptionsBuilder) Streaming(enabled bool) *OptionsBuilder {
	b.opts.Streaming = enabled
	return b
}

// MaxJobs overrides the backpressure cap. If unset, the encoder defaults it
// to the pool's worker count plus 2.
func (b *OptionsBuilder) MaxJobs(n int) *OptionsBuilder {
	b.opts.MaxJobs = n
	return b
}

func (b *OptionsBuilder) Pool(p *workerpool.Pool) *OptionsBuilder {
	b.opts.Pool = p
	return b
}

func (b *OptionsBuilder) Build() (Options, error) {
	if err := b.opts.Validate(); err != nil {
		return Options{}, err
	}
	return b.opts, nil
}
