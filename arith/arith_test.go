package arith

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/gonum/floats"

	"github.com/fumin/nalu"
)

func TestParseOp(t *testing.T) {
	for name := range Ops {
		op, err := ParseOp(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if op.Name != name {
			t.Errorf("expected %s, got %s", name, op.Name)
		}
	}
	if _, err := ParseOp("mod"); err == nil {
		t.Errorf("expected error for unknown op")
	}
}

func TestGenBatch(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for name, op := range Ops {
		task, err := NewTask(op, 10, r)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if task.A[0] >= task.A[1] || task.B[0] >= task.B[1] || task.A[1] > 10 || task.B[1] > 10 {
			t.Fatalf("%s: bad slices %v %v", name, task.A, task.B)
		}
		x, y := task.GenBatch(50, Extrapolation, r)
		if x.Shape[0] != 50 || x.Shape[1] != 10 || y.Shape[0] != 50 || y.Shape[1] != 1 {
			t.Fatalf("%s: wrong shapes %v %v", name, x.Shape, y.Shape)
		}
		if floats.Min(x.Data) < Extrapolation.Lo || floats.Max(x.Data) >= Extrapolation.Hi {
			t.Errorf("%s: inputs outside %+v", name, Extrapolation)
		}
		xs := x.Rows()
		for i, row := range xs {
			a := floats.Sum(row[task.A[0]:task.A[1]])
			b := floats.Sum(row[task.B[0]:task.B[1]])
			want := op.F(a, b)
			if math.Abs(want-y.Data[i]) > 1e-12*math.Max(1, math.Abs(want)) {
				t.Errorf("%s: expected %f, got %f", name, want, y.Data[i])
			}
		}
	}
}

func TestNewTaskInputSize(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for _, n := range []int{0, -3} {
		if _, err := NewTask(Ops["add"], n, r); err == nil {
			t.Errorf("expected error for input size %d", n)
		}
	}
	task, err := NewTask(Ops["add"], 1, r)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if task.A != [2]int{0, 1} || task.B != [2]int{0, 1} {
		t.Errorf("wrong slices %v %v", task.A, task.B)
	}
}

func TestDivResamples(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	task := &Task{Op: Ops["div"], InputSize: 2, A: [2]int{0, 1}, B: [2]int{1, 2}}
	if _, ok := task.Target([]float64{1, 0}); ok {
		t.Errorf("division by zero is valid")
	}
	_, y := task.GenBatch(200, Range{Lo: 0, Hi: 0.05}, r)
	for _, v := range y.Data {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("non-finite target %f", v)
		}
	}
}

func TestCheckpoint(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	task, err := NewTask(Ops["mul"], 6, r)
	if err != nil {
		t.Fatalf("%v", err)
	}
	net, err := nalu.NewNetwork(nalu.DefaultConfig(2, nalu.NALU), nalu.DefaultConfig(1, nalu.NAC))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := net.Build(nalu.Shape{nalu.Unknown, 6}); err != nil {
		t.Fatalf("%v", err)
	}

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpoint(task, net).Save(path); err != nil {
		t.Fatalf("%v", err)
	}
	c, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	task2, net2, err := c.Restore()
	if err != nil {
		t.Fatalf("%v", err)
	}
	if task2.Op.Name != "mul" || task2.A != task.A || task2.B != task.B || task2.InputSize != 6 {
		t.Errorf("wrong task %+v", task2)
	}
	if !floats.Equal(net.WeightsVal(), net2.WeightsVal()) {
		t.Errorf("weights differ")
	}

	x, _ := task.GenBatch(5, Interpolation, r)
	acts, err := net.Forward(x)
	if err != nil {
		t.Fatalf("%v", err)
	}
	acts2, err := net2.Forward(x)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !floats.Equal(acts[1].Top.Data, acts2[1].Top.Data) {
		t.Errorf("restored network predicts differently")
	}

	if _, err := LoadCheckpoint(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestEvaluate(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	task := &Task{Op: Ops["add"], InputSize: 3, A: [2]int{0, 1}, B: [2]int{1, 2}}
	net, err := nalu.NewNetwork(nalu.DefaultConfig(1, nalu.NAC))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := net.Build(nalu.Shape{nalu.Unknown, 3}); err != nil {
		t.Fatalf("%v", err)
	}
	// Weights of x0 and x1 saturate to 1, the weight of x2 to 0.
	if err := net.SetWeightsVal([]float64{20, 20, 0, 40, 40, -40}); err != nil {
		t.Fatalf("%v", err)
	}
	l, preds, err := Evaluate(net, task, 100, Extrapolation, r)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if l > 1e-12 {
		t.Errorf("expected exact addition, got mse %g", l)
	}
	if len(preds) != 100 {
		t.Errorf("expected 100 predictions, got %d", len(preds))
	}
}
