package nalu

import (
	"log"
	"math"

	"github.com/gonum/blas"
	"github.com/gonum/blas/blas64"
	"github.com/gonum/floats"
)

// An Activation is the result of one forward pass of an ArithmeticUnit.
// It keeps what Backward needs to compute gradients.
type Activation struct {
	Unit *ArithmeticUnit
	X    *Tensor
	Top  *Tensor

	// TopGrad is the gradient of the loss with respect to Top.Data, set by the caller before Backward.
	TopGrad []float64
	// XGrad receives the gradient of the loss with respect to X.Data.
	XGrad []float64

	n     int
	tanhW []float64
	sigM  []float64
	w     []float64
	a     []float64

	// NALU only.
	absX []float64
	logX []float64
	m    []float64
	g    []float64
}

// Forward computes the unit's output for x, building the unit first if needed.
func (u *ArithmeticUnit) Forward(x *Tensor) (*Activation, error) {
	if err := x.check(); err != nil {
		return nil, err
	}
	if err := u.Build(x.Shape); err != nil {
		return nil, err
	}
	if !u.mode.Valid() {
		return nil, errInvalidMode(u.mode)
	}

	n, d, k := x.rows(), u.inputDim, u.units
	act := Activation{
		Unit:    u,
		X:       x,
		Top:     &Tensor{Shape: x.Shape.WithLast(k), Data: make([]float64, n*k)},
		TopGrad: make([]float64, n*k),
		XGrad:   make([]float64, n*d),
		n:       n,
		tanhW:   apply(make([]float64, d*k), u.wHat.Val, math.Tanh),
		sigM:    apply(make([]float64, d*k), u.mHat.Val, Sigmoid),
		a:       make([]float64, n*k),
	}
	act.w = floats.MulTo(make([]float64, d*k), act.tanhW, act.sigM)
	if n == 0 {
		return &act, nil
	}
	w := general(d, k, act.w)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, general(n, d, x.Data), w, 0, general(n, k, act.a))

	if u.mode == NAC {
		copy(act.Top.Data, act.a)
		return &act, nil
	}

	act.absX = apply(make([]float64, n*d), x.Data, math.Abs)
	act.logX = apply(make([]float64, n*d), act.absX, func(v float64) float64 { return math.Log(v + logEpsilon) })
	act.m = make([]float64, n*k)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, general(n, d, act.logX), w, 0, general(n, k, act.m))
	apply(act.m, act.m, math.Exp)
	act.g = make([]float64, n*k)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, general(n, d, act.absX), u.g.val(), 0, general(n, k, act.g))
	apply(act.g, act.g, Sigmoid)
	for i := range act.Top.Data {
		act.Top.Data[i] = act.g[i]*act.a[i] + (1-act.g[i])*act.m[i]
	}
	return &act, nil
}

// Backward accumulates the gradients of the unit's weights and writes the gradient of X into XGrad,
// assuming TopGrad is already set.
func (act *Activation) Backward() {
	u := act.Unit
	n, d, k := act.n, u.inputDim, u.units
	if n == 0 {
		return
	}
	x := general(n, d, act.X.Data)
	w := general(d, k, act.w)
	xGrad := general(n, d, act.XGrad)
	dW := make([]float64, d*k)

	switch u.mode {
	case NAC:
		dy := general(n, k, act.TopGrad)
		blas64.Gemm(blas.Trans, blas.NoTrans, 1, x, dy, 0, general(d, k, dW))
		blas64.Gemm(blas.NoTrans, blas.Trans, 1, dy, w, 1, xGrad)
	case NALU:
		da := make([]float64, n*k)
		dz := make([]float64, n*k)
		dgz := make([]float64, n*k)
		for i, dy := range act.TopGrad {
			// m may overflow to +Inf where the output does not matter.
			if dy == 0 {
				continue
			}
			g := act.g[i]
			da[i] = g * dy
			dz[i] = (1 - g) * dy * act.m[i]
			dgz[i] = (act.a[i] - act.m[i]) * dy * g * (1 - g)
		}
		blas64.Gemm(blas.Trans, blas.NoTrans, 1, x, general(n, k, da), 0, general(d, k, dW))
		blas64.Gemm(blas.Trans, blas.NoTrans, 1, general(n, d, act.logX), general(n, k, dz), 1, general(d, k, dW))
		blas64.Gemm(blas.Trans, blas.NoTrans, 1, general(n, d, act.absX), general(n, k, dgz), 1, u.g.grad())

		blas64.Gemm(blas.NoTrans, blas.Trans, 1, general(n, k, da), w, 1, xGrad)
		dLog := make([]float64, n*d)
		blas64.Gemm(blas.NoTrans, blas.Trans, 1, general(n, k, dz), w, 0, general(n, d, dLog))
		dAbs := make([]float64, n*d)
		blas64.Gemm(blas.NoTrans, blas.Trans, 1, general(n, k, dgz), u.g.val(), 0, general(n, d, dAbs))
		for i, v := range act.X.Data {
			act.XGrad[i] += sign(v) * (dLog[i]/(act.absX[i]+logEpsilon) + dAbs[i])
		}
	}

	for i, dw := range dW {
		t := act.tanhW[i]
		s := act.sigM[i]
		u.wHat.Grad[i] += dw * s * (1 - t*t)
		u.mHat.Grad[i] += dw * t * s * (1 - s)
	}
	if floats.HasNaN(u.grads) {
		log.Printf("%v: NaN gradient, x: %v, top: %v", u, act.X, act.Top)
		panic("nalu: NaN gradient")
	}
}
