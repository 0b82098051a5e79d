package geom

import "math"

// SinDegrees returns the sine of x degrees. Multiples of 90 degrees come out
// exact: the angle is reduced to [-45, 45] around the nearest multiple of 90
// and the quadrant picks sin or cos of the small remainder.
func SinDegrees(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return math.Sin(x)
	}
	if x < 0 {
		return -SinDegrees(-x)
	}
	r := math.Remainder(x, 90)
	quadrant := int(math.Mod((x-r)/90, 4))
	rad := r * math.Pi / 180
	switch quadrant {
	case 0:
		return math.Sin(rad)
	case 1:
		return math.Cos(rad)
	case 2:
		return -math.Sin(rad)
	default:
		return -math.Cos(rad)
	}
}

// CosDegrees returns the cosine of x degrees, exact at multiples of 90.
func CosDegrees(x float64) float64 {
	return SinDegrees(x + 90)
}
