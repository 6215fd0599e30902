package filter

// PaethPredictor returns whichever of {a, b, c} (left, above, upper-left)
// minimizes |p - •| where p = a + b - c, breaking ties in preference order
// left, above, upper-left.
func PaethPredictor(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)

	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
