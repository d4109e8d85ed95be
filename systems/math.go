package systems

import "math"

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// cellSlack widens grid buckets past the nominal cell size. It exceeds the
// few float32 ulps by which a distance test can accept a pair whose exact
// separation is over the radius.
const cellSlack = 1.0 / (1 << 20)

// floorDiv returns floor(v / size) as an int. Callers widen float32
// operands first: a float32 difference or quotient can round up onto the
// next cell boundary.
func floorDiv(v, size float64) int {
	return int(math.Floor(v / size))
}
