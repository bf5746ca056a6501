package nalu

import (
	"math"
)

// logEpsilon keeps log(|x|) finite when x is zero.
const logEpsilon = 1e-7

func Sigmoid(x float64) float64 {
	return 1.0 / (1 + math.Exp(-x))
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func apply(dst, s []float64, f func(float64) float64) []float64 {
	for i, v := range s {
		dst[i] = f(v)
	}
	return dst
}
