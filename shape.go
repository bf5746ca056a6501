package nalu

import (
	"fmt"
	"strings"
)

// Unknown marks a dimension whose size is not known until data arrives, typically the batch dimension.
const Unknown = -1

// A Shape describes the dimensions of a Tensor, outermost first.
type Shape []int

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, d := range s {
		if d == Unknown {
			dims[i] = "?"
		} else {
			dims[i] = fmt.Sprintf("%d", d)
		}
	}
	return "(" + strings.Join(dims, ", ") + ")"
}

// InputDim returns the trailing dimension of s.
// It fails unless s has at least a batch and a feature dimension and the feature dimension is known.
func (s Shape) InputDim() (int, error) {
	if len(s) < 2 {
		return 0, &ShapeError{Shape: s, Msg: "expected rank >= 2"}
	}
	d := s[len(s)-1]
	if d < 1 {
		return 0, &ShapeError{Shape: s, Msg: "trailing dimension is undefined"}
	}
	return d, nil
}

// WithLast returns a copy of s whose trailing dimension is replaced with d.
func (s Shape) WithLast(d int) Shape {
	out := make(Shape, len(s))
	copy(out, s)
	out[len(out)-1] = d
	return out
}

func (s Shape) numElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}
