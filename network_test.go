package nalu

import (
	"math/rand"
	"testing"

	"github.com/gonum/floats"
)

func TestNetworkBuild(t *testing.T) {
	net, err := NewNetwork(DefaultConfig(4, NALU), DefaultConfig(2, NAC), DefaultConfig(1, NALU))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := net.Build(Shape{Unknown, 6}); err != nil {
		t.Fatalf("%v", err)
	}
	dims := []int{6, 4, 2}
	for i, u := range net {
		if u.InputDim() != dims[i] {
			t.Errorf("layer %d built for %d, expected %d", i, u.InputDim(), dims[i])
		}
	}
	if n := net.NumWeights(); n != 3*6*4+2*4*2+3*2*1 {
		t.Errorf("wrong number of weights %d", n)
	}

	ws := net.WeightsVal()
	for i := range ws {
		ws[i] = float64(i)
	}
	if err := net.SetWeightsVal(ws); err != nil {
		t.Fatalf("%v", err)
	}
	if !floats.Equal(ws, net.WeightsVal()) {
		t.Errorf("SetWeightsVal did not round trip")
	}
	if err := net.SetWeightsVal(ws[1:]); err == nil {
		t.Errorf("expected error on short weights")
	}
}

func TestNetworkForwardError(t *testing.T) {
	net, err := NewNetwork(DefaultConfig(2, NAC), DefaultConfig(1, "XOR"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := net.Forward(FromRows([][]float64{{1, 2, 3}})); err == nil {
		t.Errorf("expected error from the second layer")
	}
	if _, err := NewNetwork(DefaultConfig(0, NAC)); err == nil {
		t.Errorf("expected error for zero units")
	}
}

func TestMSE(t *testing.T) {
	u := newUnit(t, 1, NAC)
	if err := u.Build(Shape{Unknown, 1}); err != nil {
		t.Fatalf("%v", err)
	}
	u.WHat().Set(0, 0, 20)
	u.MHat().Set(0, 0, 40)
	act, err := u.Forward(FromRows([][]float64{{1}, {2}}))
	if err != nil {
		t.Fatalf("%v", err)
	}
	l, err := MSE(act, FromRows([][]float64{{0}, {4}}))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !floats.EqualWithinAbs(l, (1+4)/2.0, 1e-9) {
		t.Errorf("wrong loss %f", l)
	}
	if !floats.EqualApprox(act.TopGrad, []float64{1, -2}, 1e-9) {
		t.Errorf("wrong loss gradient %v", act.TopGrad)
	}
}

func TestMSEShapes(t *testing.T) {
	net, err := NewNetwork(DefaultConfig(1, NAC))
	if err != nil {
		t.Fatalf("%v", err)
	}
	acts, err := net.Forward(FromRows([][]float64{{1, 2}, {3, 4}}))
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, y := range [][][]float64{{{1}}, {{1}, {2}, {3}}} {
		if _, err := MSE(acts[0], FromRows(y)); err == nil {
			t.Errorf("expected error for %d targets", len(y))
		}
	}

	x, err := NewTensor(Shape{0, 2}, nil)
	if err != nil {
		t.Fatalf("%v", err)
	}
	y, err := NewTensor(Shape{0, 1}, nil)
	if err != nil {
		t.Fatalf("%v", err)
	}
	acts, err = net.Forward(x)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if l, err := MSE(acts[0], y); err != nil || l != 0 {
		t.Errorf("wrong empty batch loss %f, %v", l, err)
	}
}

func additionBatch(r *rand.Rand, n int) (*Tensor, *Tensor) {
	x := make([][]float64, n)
	y := make([][]float64, n)
	for i := range x {
		x[i] = []float64{r.Float64(), r.Float64(), r.Float64(), r.Float64()}
		y[i] = []float64{x[i][0] + x[i][1]}
	}
	return FromRows(x), FromRows(y)
}

func TestSGDMomentum(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	net, err := NewNetwork(DefaultConfig(1, NAC))
	if err != nil {
		t.Fatalf("%v", err)
	}
	net[0].Rand = r
	sgd := NewSGDMomentum(net)

	var first, last float64
	for i := 0; i < 3000; i++ {
		x, y := additionBatch(r, 32)
		l, err := sgd.Train(x, y, 0.05, 0.9)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if i == 0 {
			first = l
		}
		last = l
	}
	if last > first/10 {
		t.Errorf("loss did not decrease enough: %f -> %f", first, last)
	}
}

func TestRMSProp(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	net, err := NewNetwork(DefaultConfig(1, NAC))
	if err != nil {
		t.Fatalf("%v", err)
	}
	net[0].Rand = r
	rmsp := NewRMSProp(net)

	var first, last float64
	for i := 0; i < 3000; i++ {
		x, y := additionBatch(r, 32)
		l, err := rmsp.Train(x, y, 0.95, 0.5, 3e-3, 1e-3)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if i == 0 {
			first = l
		}
		last = l
	}
	if last > first/10 {
		t.Errorf("loss did not decrease enough: %f -> %f", first, last)
	}
	w := net[0].EffectiveWeights()
	if w.At(0, 0) < 0.5 || w.At(1, 0) < 0.5 {
		t.Errorf("expected the summed inputs to have large weights, got %v", w.Val)
	}
}
