package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/fumin/nalu"
	"github.com/fumin/nalu/arith"
)

var (
	checkpoint = flag.String("checkpoint", "", "trained checkpoint in JSON")
	samples    = flag.Int("samples", 1000, "examples per range")
	seed       = flag.Int64("seed", 11, "random seed")
	show       = flag.Int("show", 5, "number of predictions to print per range")
)

func main() {
	flag.Parse()
	c, err := arith.LoadCheckpoint(*checkpoint)
	if err != nil {
		log.Fatalf("%v", err)
	}
	task, net, err := c.Restore()
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, u := range net {
		if w := u.EffectiveWeights(); w != nil {
			log.Printf("%v W:\n%s", u, nalu.Sprint2(rows(w)))
		}
	}

	rng := rand.New(rand.NewSource(*seed))
	ranges := []arith.Range{arith.Interpolation, arith.Extrapolation, {Lo: 0, Hi: 10}}
	for _, rg := range ranges {
		x, y := task.GenBatch(*samples, rg, rng)
		acts, err := net.Forward(x)
		if err != nil {
			log.Fatalf("%v", err)
		}
		l, err := nalu.MSE(acts[len(acts)-1], y)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("op: %s, range: %+v, mse: %g", task.Op.Name, rg, l)

		preds := nalu.Predictions(acts)
		ys := y.Rows()
		for i := 0; i < *show && i < len(preds); i++ {
			log.Printf("  y: %.4g, pred: %.4g", ys[i][0], preds[i][0])
		}
	}
}

func rows(m *nalu.Matrix) [][]float64 {
	r := make([][]float64, m.Rows)
	for i := range r {
		r[i] = m.Val[i*m.Cols : (i+1)*m.Cols]
	}
	return r
}
