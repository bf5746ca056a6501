package nalu

import (
	"fmt"
)

// A Tensor is a dense, row-major batch of vectors.
// The trailing dimension is the feature dimension, all leading dimensions are batch dimensions.
type Tensor struct {
	Shape Shape
	Data  []float64
}

// NewTensor wraps data in a Tensor of the given shape.
// Every dimension must be known. Leading dimensions may be 0, giving an empty batch.
func NewTensor(shape Shape, data []float64) (*Tensor, error) {
	s := make(Shape, len(shape))
	copy(s, shape)
	t := &Tensor{Shape: s, Data: data}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromRows copies a non-empty batch of equally long vectors into a Tensor of shape (len(rows), len(rows[0])).
func FromRows(rows [][]float64) *Tensor {
	cols := len(rows[0])
	t := &Tensor{Shape: Shape{len(rows), cols}, Data: make([]float64, 0, len(rows)*cols)}
	for _, r := range rows {
		if len(r) != cols {
			panic(fmt.Sprintf("ragged rows: %d != %d", len(r), cols))
		}
		t.Data = append(t.Data, r...)
	}
	return t
}

// Rows returns t flattened to (batch, features), sharing t's data.
func (t *Tensor) Rows() [][]float64 {
	cols := t.cols()
	res := make([][]float64, t.rows())
	for i := range res {
		res[i] = t.Data[i*cols : (i+1)*cols]
	}
	return res
}

func (t *Tensor) rows() int {
	return len(t.Data) / t.cols()
}

func (t *Tensor) cols() int {
	return t.Shape[len(t.Shape)-1]
}

func (t *Tensor) String() string {
	return fmt.Sprintf("%v%s", t.Shape, Sprint2(t.Rows()))
}

func (t *Tensor) check() error {
	if _, err := t.Shape.InputDim(); err != nil {
		return err
	}
	for _, d := range t.Shape {
		if d < 0 {
			return &ShapeError{Shape: t.Shape, Msg: "tensor dimensions must be known"}
		}
	}
	if len(t.Data) != t.Shape.numElements() {
		return &ShapeError{Shape: t.Shape, Msg: "data length does not match shape"}
	}
	return nil
}
