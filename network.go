package nalu

import (
	"fmt"
)

// A Network chains units, feeding each unit's output into the next.
type Network []*ArithmeticUnit

// NewNetwork creates one unbuilt unit per config.
func NewNetwork(configs ...Config) (Network, error) {
	n := make(Network, len(configs))
	for i, c := range configs {
		u, err := New(c)
		if err != nil {
			return nil, err
		}
		n[i] = u
	}
	return n, nil
}

// Build allocates every unit for inputs of shape s, propagating the shape from unit to unit.
func (n Network) Build(s Shape) error {
	for i, u := range n {
		if err := u.Build(s); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		out, err := u.ComputeOutputShape(s)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		s = out
	}
	return nil
}

// Forward runs x through every unit and returns their activations, the last one holding the prediction.
func (n Network) Forward(x *Tensor) ([]*Activation, error) {
	acts := make([]*Activation, len(n))
	for i, u := range n {
		act, err := u.Forward(x)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		acts[i] = act
		x = act.Top
	}
	return acts, nil
}

// Backward propagates the TopGrad of the last activation through all of acts.
func Backward(acts []*Activation) {
	for i := len(acts) - 1; i >= 0; i-- {
		acts[i].Backward()
		if i > 0 {
			copy(acts[i-1].TopGrad, acts[i].XGrad)
		}
	}
}

func (n Network) Weights(f func(tag string, val, grad *float64)) {
	for i, u := range n {
		u.Weights(func(tag string, val, grad *float64) { f(fmt.Sprintf("%d.%s", i, tag), val, grad) })
	}
}

func (n Network) NumWeights() int {
	var s int
	for _, u := range n {
		s += u.NumWeights()
	}
	return s
}

func (n Network) ClearGradients() {
	for _, u := range n {
		u.ClearGradients()
	}
}

// WeightsVal copies the weights of all units into one slice.
func (n Network) WeightsVal() []float64 {
	ws := make([]float64, 0, n.NumWeights())
	for _, u := range n {
		ws = append(ws, u.WeightsVal()...)
	}
	return ws
}

// SetWeightsVal overwrites the weights of every built unit with ws, laid out as WeightsVal.
func (n Network) SetWeightsVal(ws []float64) error {
	if len(ws) != n.NumWeights() {
		return fmt.Errorf("nalu: got %d weights, network has %d", len(ws), n.NumWeights())
	}
	for _, u := range n {
		ws = ws[copy(u.WeightsVal(), ws):]
	}
	return nil
}

// Configs returns the configuration of every unit.
func (n Network) Configs() []Config {
	cs := make([]Config, len(n))
	for i, u := range n {
		cs[i] = u.Config()
	}
	return cs
}

// Predictions returns the output of the last activation as rows.
func Predictions(acts []*Activation) [][]float64 {
	return acts[len(acts)-1].Top.Rows()
}
