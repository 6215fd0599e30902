package filter

import "math"

// saturateThreshold is the row length (in bytes) at or above which the
// complexity accumulator is clamped rather than allowed to approach 2^32.
const saturateThreshold = 1 << 24

// saturatedMax is the clamp value used once the accumulator would otherwise
// risk overflowing a uint32.
const saturatedMax = math.MaxUint32 - 256

// SumAbsoluteValues computes Σ |byte as int8| over filtered, the magnitude
// heuristic used to rank candidate filters. For pathologically long rows
// (>= 2^24 bytes) the score saturates at UINT32_MAX-256 instead of
// risking a 32-bit overflow.
func SumAbsoluteValues(filtered []byte) uint32 {
	if len(filtered) >= saturateThreshold {
		return saturatedMax
	}
	var sum uint64
	for _, b := range filtered {
		v := int8(b)
		if v < 0 {
			sum += uint64(-int32(v))
		} else {
			sum += uint64(v)
		}
	}
	if sum > saturatedMax {
		return saturatedMax
	}
	return uint32(sum)
}
