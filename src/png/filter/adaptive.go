package filter

// candidateOrder lists the filters the adaptive heuristic evaluates, and
// doubles as the tie-break preference order read right-to-left: Paeth beats
// Average beats Up beats Sub when two candidates tie on score. None is
// deliberately excluded — its magnitude metric isn't comparable to the
// others'.
var candidateOrder = []Type{Sub, Up, Average, Paeth}

// SelectAdaptive evaluates Sub, Up, Average and Paeth and returns whichever
// minimizes SumAbsoluteValues, breaking ties in the order Paeth > Average >
// Up > Sub. indexed forces Fixed(None) regardless of the computed scores,
// because palette indices have no spatial locality for the heuristic to
// exploit.
func SelectAdaptive(row, prev []byte, bpp int, indexed bool) (Type, []byte) {
	if indexed {
		return None, Apply(None, row, prev, bpp)
	}

	bestType := candidateOrder[0]
	best := Apply(bestType, row, prev, bpp)
	bestScore := SumAbsoluteValues(best)

	for _, t := range candidateOrder[1:] {
		candidate := Apply(t, row, prev, bpp)
		score := SumAbsoluteValues(candidate)
		if score <= bestScore {
			bestType, best, bestScore = t, candidate, score
		}
	}

	return bestType, best
}

// Select applies the configured strategy: Fixed(t) always runs filter t;
// Adaptive runs SelectAdaptive (or is forced to Fixed(None) by the caller
// when the color type is indexed).
func Select(row, prev []byte, bpp int, mode Mode, indexed bool) (Type, []byte) {
	if mode.Adaptive {
		return SelectAdaptive(row, prev, bpp, indexed)
	}
	t := mode.Fixed
	return t, Apply(t, row, prev, bpp)
}

// Mode selects either the adaptive heuristic or a fixed filter type.
type Mode struct {
	Adaptive bool
	Fixed    Type
}

// AdaptiveMode returns the Adaptive filter mode.
func AdaptiveMode() Mode { return Mode{Adaptive: true} }

// FixedMode returns a Mode that always applies t.
func FixedMode(t Type) Mode { return Mode{Fixed: t} }
