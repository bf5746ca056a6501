// Package arith generates the static arithmetic task: from a random vector x,
// a is the sum of one slice of x, b the sum of another, and the target is op(a, b).
package arith

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/gonum/floats"

	"github.com/fumin/nalu"
)

type Op struct {
	Name string
	F    func(a, b float64) float64
	// Valid reports whether op(a, b) is well defined and not too close to a singularity.
	Valid func(a, b float64) bool
}

func always(a, b float64) bool { return true }

var Ops = map[string]Op{
	"add":    {Name: "add", F: func(a, b float64) float64 { return a + b }, Valid: always},
	"sub":    {Name: "sub", F: func(a, b float64) float64 { return a - b }, Valid: always},
	"mul":    {Name: "mul", F: func(a, b float64) float64 { return a * b }, Valid: always},
	"div":    {Name: "div", F: func(a, b float64) float64 { return a / b }, Valid: func(a, b float64) bool { return math.Abs(b) > 1e-2 }},
	"square": {Name: "square", F: func(a, b float64) float64 { return a * a }, Valid: always},
	"sqrt":   {Name: "sqrt", F: func(a, b float64) float64 { return math.Sqrt(a) }, Valid: func(a, b float64) bool { return a >= 0 }},
}

func ParseOp(name string) (Op, error) {
	op, ok := Ops[name]
	if !ok {
		names := make([]string, 0, len(Ops))
		for n := range Ops {
			names = append(names, n)
		}
		sort.Strings(names)
		return Op{}, fmt.Errorf("unknown op %q, valid: %s", name, strings.Join(names, ", "))
	}
	return op, nil
}

// A Range is the interval inputs are sampled from.
type Range struct {
	Lo float64
	Hi float64
}

var (
	// Interpolation is the range used for training.
	Interpolation = Range{Lo: 0, Hi: 1}
	// Extrapolation tests generalization outside the training range.
	Extrapolation = Range{Lo: 0, Hi: 5}
)

// A Task fixes the op and the two slices [A[0], A[1]) and [B[0], B[1]) of the input that are summed.
type Task struct {
	Op        Op
	InputSize int
	A         [2]int
	B         [2]int
}

// NewTask picks two random non-empty slices of an inputSize long vector.
func NewTask(op Op, inputSize int, r *rand.Rand) (*Task, error) {
	if inputSize < 1 {
		return nil, fmt.Errorf("input size %d, must be at least 1", inputSize)
	}
	t := Task{
		Op:        op,
		InputSize: inputSize,
		A:         randSlice(inputSize, r),
		B:         randSlice(inputSize, r),
	}
	return &t, nil
}

func randSlice(n int, r *rand.Rand) [2]int {
	i := r.Intn(n)
	j := r.Intn(n)
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j + 1}
}

// Target returns op(a, b) for the input x, and whether it is valid.
func (t *Task) Target(x []float64) (float64, bool) {
	a := floats.Sum(x[t.A[0]:t.A[1]])
	b := floats.Sum(x[t.B[0]:t.B[1]])
	if !t.Op.Valid(a, b) {
		return 0, false
	}
	return t.Op.F(a, b), true
}

// GenBatch samples batchSize inputs uniformly from rg and returns them with their targets.
// Inputs whose target is invalid are resampled.
func (t *Task) GenBatch(batchSize int, rg Range, r *rand.Rand) (*nalu.Tensor, *nalu.Tensor) {
	x := make([][]float64, batchSize)
	y := make([][]float64, batchSize)
	for i := 0; i < batchSize; i++ {
		x[i] = make([]float64, t.InputSize)
		for {
			for j := range x[i] {
				x[i][j] = rg.Lo + r.Float64()*(rg.Hi-rg.Lo)
			}
			if v, ok := t.Target(x[i]); ok {
				y[i] = []float64{v}
				break
			}
		}
	}
	return nalu.FromRows(x), nalu.FromRows(y)
}

// Evaluate returns the mean squared error of net on batchSize fresh examples from rg.
func Evaluate(net nalu.Network, t *Task, batchSize int, rg Range, r *rand.Rand) (float64, [][]float64, error) {
	x, y := t.GenBatch(batchSize, rg, r)
	acts, err := net.Forward(x)
	if err != nil {
		return 0, nil, err
	}
	l, err := nalu.MSE(acts[len(acts)-1], y)
	if err != nil {
		return 0, nil, err
	}
	return l, nalu.Predictions(acts), nil
}
