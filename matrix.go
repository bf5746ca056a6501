package nalu

import (
	"bytes"
	"fmt"

	"github.com/gonum/blas/blas64"
)

// A Matrix is a row-major view into the weights of an ArithmeticUnit.
// Val and Grad share the layout, so that element (i, j) of the gradient is Grad[i*Cols+j].
type Matrix struct {
	Rows int
	Cols int
	Val  []float64
	Grad []float64
}

func (m *Matrix) At(i, j int) float64 {
	return m.Val[i*m.Cols+j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.Val[i*m.Cols+j] = v
}

func (m *Matrix) val() blas64.General {
	return general(m.Rows, m.Cols, m.Val)
}

func (m *Matrix) grad() blas64.General {
	return general(m.Rows, m.Cols, m.Grad)
}

func (m *Matrix) String() string {
	var buf bytes.Buffer
	for i := 0; i < m.Rows; i++ {
		buf.WriteString("[")
		for j := 0; j < m.Cols; j++ {
			if j > 0 {
				buf.WriteString(" ")
			}
			fmt.Fprintf(&buf, "{%.3g %.3g}", m.Val[i*m.Cols+j], m.Grad[i*m.Cols+j])
		}
		buf.WriteString("]\n")
	}
	return buf.String()
}

func (m *Matrix) do(tag string, f func(string, *float64, *float64)) {
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			k := i*m.Cols + j
			f(fmt.Sprintf("%s[%d][%d]", tag, i, j), &m.Val[k], &m.Grad[k])
		}
	}
}

func general(rows, cols int, data []float64) blas64.General {
	return blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// Sprint2 formats a matrix held as rows.
func Sprint2(t [][]float64) string {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, row := range t {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("[")
		for j, v := range row {
			if j > 0 {
				buf.WriteString(" ")
			}
			fmt.Fprintf(&buf, "%.3g", v)
		}
		buf.WriteString("]")
	}
	buf.WriteString("]")
	return buf.String()
}
