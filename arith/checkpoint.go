package arith

import (
	"encoding/json"
	"os"

	"github.com/unixpickle/essentials"

	"github.com/fumin/nalu"
)

// A Checkpoint is a trained network together with the task it was trained on.
type Checkpoint struct {
	Op        string        `json:"op"`
	InputSize int           `json:"input_size"`
	A         [2]int        `json:"a"`
	B         [2]int        `json:"b"`
	Configs   []nalu.Config `json:"configs"`
	Weights   []float64     `json:"weights"`
}

func NewCheckpoint(t *Task, net nalu.Network) *Checkpoint {
	c := Checkpoint{
		Op:        t.Op.Name,
		InputSize: t.InputSize,
		A:         t.A,
		B:         t.B,
		Configs:   net.Configs(),
		Weights:   net.WeightsVal(),
	}
	return &c
}

// Restore rebuilds the task and the network, with its trained weights.
func (c *Checkpoint) Restore() (*Task, nalu.Network, error) {
	op, err := ParseOp(c.Op)
	if err != nil {
		return nil, nil, essentials.AddCtx("restore checkpoint", err)
	}
	t := &Task{Op: op, InputSize: c.InputSize, A: c.A, B: c.B}
	net, err := nalu.NewNetwork(c.Configs...)
	if err != nil {
		return nil, nil, essentials.AddCtx("restore checkpoint", err)
	}
	if err := net.Build(nalu.Shape{nalu.Unknown, c.InputSize}); err != nil {
		return nil, nil, essentials.AddCtx("restore checkpoint", err)
	}
	if err := net.SetWeightsVal(c.Weights); err != nil {
		return nil, nil, essentials.AddCtx("restore checkpoint", err)
	}
	return t, net, nil
}

func (c *Checkpoint) Save(path string) error {
	b, err := json.Marshal(c)
	if err != nil {
		return essentials.AddCtx("save checkpoint", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return essentials.AddCtx("save checkpoint", err)
	}
	return nil
}

func LoadCheckpoint(path string) (*Checkpoint, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load checkpoint", err)
	}
	var c Checkpoint
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, essentials.AddCtx("load checkpoint", err)
	}
	return &c, nil
}
