package mixer

import (
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

func constrain[T number](value, minimum, maximum T) T {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

// Maps value from one range onto another. The ranges may be reversed.
func scaleRange[T constraints.Float](value, fromMin, fromMax, toMin, toMax T) T {
	if fromMax == fromMin {
		return toMin
	}
	return (value-fromMin)/(fromMax-fromMin)*(toMax-toMin) + toMin
}

func absolute[T constraints.Signed | constraints.Float](value T) T {
	if value < 0 {
		return -value
	}
	return value
}

func roundToUint16(value float64) uint16 {
	return uint16(math.Round(constrain(value, 0, math.MaxUint16)))
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
