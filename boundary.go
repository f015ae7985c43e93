package main

// interior reports whether (x, y) is eligible for the stencil update. The
// one-cell border on all four sides is held fixed; cells there keep whatever
// value initialization gave them.
func interior(x, y, width, height int) bool {
	return x > 0 && x < width-1 && y > 0 && y < height-1
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
