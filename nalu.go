// Package nalu implements the Neural Accumulator (NAC) and the Neural Arithmetic Logic Unit (NALU),
// layers that learn exact arithmetic on their inputs and extrapolate beyond the ranges seen in training.
package nalu

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gonum/floats"
)

type state int

const (
	unbuilt state = iota
	built
)

// An ArithmeticUnit maps a batch of input_dim wide vectors to a batch of Units wide vectors.
// Its matrices are allocated on the first Build or Forward call, once the input width is known.
type ArithmeticUnit struct {
	// Rand is the source used by the initializers during Build. nil means the global math/rand source.
	Rand *rand.Rand

	units      int
	mode       Mode
	weightInit Initializer
	gateInit   Initializer

	state    state
	inputDim int
	vals     []float64
	grads    []float64
	wHat     *Matrix
	mHat     *Matrix
	g        *Matrix
}

// New creates an unbuilt unit.
// The mode is not checked here, an invalid mode is reported by Forward. Use Config.Validate to check it earlier.
func New(c Config) (*ArithmeticUnit, error) {
	if err := c.validateUnits(); err != nil {
		return nil, err
	}
	wi, err := resolveInitializer(c.WeightInitializer)
	if err != nil {
		return nil, err
	}
	gi, err := resolveInitializer(c.GateInitializer)
	if err != nil {
		return nil, err
	}
	u := ArithmeticUnit{
		units:      c.Units,
		mode:       c.Mode,
		weightInit: wi,
		gateInit:   gi,
	}
	return &u, nil
}

func (u *ArithmeticUnit) Units() int {
	return u.units
}

func (u *ArithmeticUnit) Mode() Mode {
	return u.mode
}

func (u *ArithmeticUnit) Built() bool {
	return u.state == built
}

// InputDim returns the input width the unit was built for, or 0 if it is not built yet.
func (u *ArithmeticUnit) InputDim() int {
	return u.inputDim
}

// Config returns the hyperparameters of u. New(u.Config()) creates an equivalent unbuilt unit.
func (u *ArithmeticUnit) Config() Config {
	c := Config{Units: u.units, Mode: u.mode}
	// Initializers reaching u went through DeserializeInitializer, so they always serialize.
	c.WeightInitializer, _ = SerializeInitializer(u.weightInit)
	c.GateInitializer, _ = SerializeInitializer(u.gateInit)
	return c
}

// Build allocates the unit's matrices for inputs of shape s.
// Building twice for the same input width does nothing, building for another width fails.
func (u *ArithmeticUnit) Build(s Shape) error {
	d, err := s.InputDim()
	if err != nil {
		return err
	}
	if u.state == built {
		if d != u.inputDim {
			return &ShapeError{Shape: s, Msg: fmt.Sprintf("unit is built for input dimension %d", u.inputDim)}
		}
		return nil
	}

	numMatrices := 2
	if u.mode == NALU {
		numMatrices = 3
	}
	n := d * u.units
	u.vals = make([]float64, numMatrices*n)
	u.grads = make([]float64, numMatrices*n)
	u.wHat = u.matrix(0, d)
	u.mHat = u.matrix(1, d)
	u.weightInit.Init(u.wHat.Val, d, u.units, u.Rand)
	u.weightInit.Init(u.mHat.Val, d, u.units, u.Rand)
	if u.mode == NALU {
		u.g = u.matrix(2, d)
		u.gateInit.Init(u.g.Val, d, u.units, u.Rand)
	}
	u.inputDim = d
	u.state = built
	return nil
}

func (u *ArithmeticUnit) matrix(i, d int) *Matrix {
	n := d * u.units
	return &Matrix{Rows: d, Cols: u.units, Val: u.vals[i*n : (i+1)*n], Grad: u.grads[i*n : (i+1)*n]}
}

// ComputeOutputShape returns s with its trailing dimension replaced by Units.
func (u *ArithmeticUnit) ComputeOutputShape(s Shape) (Shape, error) {
	if _, err := s.InputDim(); err != nil {
		return nil, err
	}
	return s.WithLast(u.units), nil
}

// WHat returns the raw weight matrix, nil before Build.
func (u *ArithmeticUnit) WHat() *Matrix {
	return u.wHat
}

// MHat returns the raw magnitude matrix, nil before Build.
func (u *ArithmeticUnit) MHat() *Matrix {
	return u.mHat
}

// G returns the gate matrix. It is nil before Build and in NAC mode.
func (u *ArithmeticUnit) G() *Matrix {
	return u.g
}

// EffectiveWeights returns tanh(W_hat) * sigmoid(M_hat), whose entries all lie in (-1, 1).
// The returned Matrix has no Grad.
func (u *ArithmeticUnit) EffectiveWeights() *Matrix {
	if u.state != built {
		return nil
	}
	n := len(u.wHat.Val)
	w := &Matrix{Rows: u.wHat.Rows, Cols: u.wHat.Cols, Val: make([]float64, n)}
	effectiveWeights(w.Val, u.wHat.Val, u.mHat.Val)
	return w
}

func effectiveWeights(dst, wHat, mHat []float64) {
	apply(dst, wHat, math.Tanh)
	for i, v := range mHat {
		dst[i] *= Sigmoid(v)
	}
}

// WeightsVal returns the values of W_hat, M_hat and G, in that order, as one slice.
// Optimizers write into it.
func (u *ArithmeticUnit) WeightsVal() []float64 {
	return u.vals
}

// WeightsGrad returns the gradients laid out as WeightsVal.
func (u *ArithmeticUnit) WeightsGrad() []float64 {
	return u.grads
}

func (u *ArithmeticUnit) NumWeights() int {
	return len(u.vals)
}

func (u *ArithmeticUnit) ClearGradients() {
	for i := range u.grads {
		u.grads[i] = 0
	}
}

// Weights calls f on every weight of u with a tag such as "W_hat[1][0]".
func (u *ArithmeticUnit) Weights(f func(tag string, val, grad *float64)) {
	if u.state != built {
		return
	}
	u.wHat.do("W_hat", f)
	u.mHat.do("M_hat", f)
	if u.g != nil {
		u.g.do("G", f)
	}
}

func (u *ArithmeticUnit) String() string {
	s := fmt.Sprintf("%s(units=%d, input_dim=%d, weights=%d)", u.mode, u.units, u.inputDim, len(u.vals))
	if u.state == built && floats.HasNaN(u.vals) {
		s += " NaN"
	}
	return s
}
