package nalu

import (
	"fmt"
	"math"
)

// MSE returns the mean squared error between the prediction in act and y,
// and sets act.TopGrad to its gradient. The loss of an empty batch is 0.
func MSE(act *Activation, y *Tensor) (float64, error) {
	p := act.Top.Data
	if len(y.Data) != len(p) {
		return 0, &ShapeError{Shape: y.Shape, Msg: fmt.Sprintf("target does not match prediction %v", act.Top.Shape)}
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := float64(len(p))
	var l float64 = 0
	for i := range p {
		d := p[i] - y.Data[i]
		l += d * d
		act.TopGrad[i] = 2 * d / n
	}
	return l / n, nil
}

func forwardBackward(net Network, x, y *Tensor) ([]*Activation, float64, error) {
	acts, err := net.Forward(x)
	if err != nil {
		return nil, 0, err
	}
	net.ClearGradients()
	l, err := MSE(acts[len(acts)-1], y)
	if err != nil {
		return nil, 0, err
	}
	Backward(acts)
	return acts, l, nil
}

type SGDMomentum struct {
	N     Network
	PrevD []float64
}

func NewSGDMomentum(n Network) *SGDMomentum {
	s := SGDMomentum{N: n}
	return &s
}

// Train runs one step of gradient descent on the batch (x, y) and returns the loss before the step.
func (s *SGDMomentum) Train(x, y *Tensor, alpha, mt float64) (float64, error) {
	_, l, err := forwardBackward(s.N, x, y)
	if err != nil {
		return 0, err
	}
	if len(s.PrevD) != s.N.NumWeights() {
		s.PrevD = make([]float64, s.N.NumWeights())
	}
	i := 0
	s.N.Weights(func(tag string, val, grad *float64) {
		d := -alpha*(*grad) + mt*s.PrevD[i]
		*val += d
		s.PrevD[i] = d
		i++
	})
	return l, nil
}

// RMSProp is the variant described in Graves, "Generating Sequences With Recurrent Neural Networks", equations 38-41.
type RMSProp struct {
	N Network
	n []float64
	g []float64
	d []float64
}

func NewRMSProp(n Network) *RMSProp {
	r := RMSProp{N: n}
	return &r
}

func (r *RMSProp) Train(x, y *Tensor, a, b, c, d float64) (float64, error) {
	_, l, err := forwardBackward(r.N, x, y)
	if err != nil {
		return 0, err
	}
	if len(r.n) != r.N.NumWeights() {
		r.n = make([]float64, r.N.NumWeights())
		r.g = make([]float64, r.N.NumWeights())
		r.d = make([]float64, r.N.NumWeights())
	}
	i := 0
	r.N.Weights(func(tag string, val, grad *float64) {
		r.n[i] = a*r.n[i] + (1-a)*(*grad)*(*grad)
		r.g[i] = a*r.g[i] + (1-a)*(*grad)
		r.d[i] = b*r.d[i] - c*(*grad)/math.Sqrt(r.n[i]-r.g[i]*r.g[i]+d)
		*val += r.d[i]
		i++
	})
	return l, nil
}
