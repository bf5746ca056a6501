package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"runtime/pprof"

	"github.com/fumin/nalu"
	"github.com/fumin/nalu/arith"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	opName     = flag.String("op", "add", "arithmetic op to learn")
	mode       = flag.String("mode", "NALU", "NAC or NALU")
	inputSize  = flag.Int("inputSize", 100, "size of the input vector")
	hidden     = flag.Int("hidden", 2, "width of the hidden unit")
	batchSize  = flag.Int("batchSize", 64, "examples per step")
	steps      = flag.Int("steps", 100000, "training steps")
	lr         = flag.Float64("lr", 1e-3, "RMSProp learning rate")
	seed       = flag.Int64("seed", 7, "random seed")
	out        = flag.String("out", "", "write the trained checkpoint to this file")
	port       = flag.Int("port", 8087, "HTTP port, 0 disables the server")

	weightsChan = make(chan chan []byte)
	configChan  = make(chan chan []byte)
	lossChan    = make(chan chan []float64)
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if *port != 0 {
		http.HandleFunc("/Weights", func(w http.ResponseWriter, r *http.Request) {
			c := make(chan []byte)
			weightsChan <- c
			w.Write(<-c)
		})
		http.HandleFunc("/Config", func(w http.ResponseWriter, r *http.Request) {
			c := make(chan []byte)
			configChan <- c
			w.Write(<-c)
		})
		http.HandleFunc("/Loss", func(w http.ResponseWriter, r *http.Request) {
			c := make(chan []float64)
			lossChan <- c
			json.NewEncoder(w).Encode(<-c)
		})
		go func() {
			log.Printf("Listening on port %d", *port)
			if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), nil); err != nil {
				log.Fatalf("%v", err)
			}
		}()
	}

	log.Printf("seed: %d", *seed)
	rng := rand.New(rand.NewSource(*seed))

	op, err := arith.ParseOp(*opName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	task, err := arith.NewTask(op, *inputSize, rng)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("op: %s, a: x%v, b: x%v", op.Name, task.A, task.B)

	m := nalu.Mode(*mode)
	cfgs := []nalu.Config{nalu.DefaultConfig(*hidden, m), nalu.DefaultConfig(1, m)}
	for _, c := range cfgs {
		if err := c.Validate(); err != nil {
			log.Fatalf("%v", err)
		}
	}
	net, err := nalu.NewNetwork(cfgs...)
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, u := range net {
		u.Rand = rng
	}
	if err := net.Build(nalu.Shape{nalu.Unknown, *inputSize}); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("network: %v, numweights: %d", net, net.NumWeights())

	rmsp := nalu.NewRMSProp(net)
	losses := make([]float64, 0)
	var lossSum float64 = 0
	acc := 1000
	for i := 1; i <= *steps; i++ {
		x, y := task.GenBatch(*batchSize, arith.Interpolation, rng)
		l, err := rmsp.Train(x, y, 0.95, 0.5, *lr, 1e-3)
		if err != nil {
			log.Fatalf("%v", err)
		}
		lossSum += l
		if i%acc == 0 {
			losses = append(losses, lossSum/float64(acc))
			log.Printf("%d, mse: %g", i, lossSum/float64(acc))
			lossSum = 0
		}

		handleHTTP(task, net, losses)
	}

	for _, rg := range []arith.Range{arith.Interpolation, arith.Extrapolation} {
		l, _, err := arith.Evaluate(net, task, 1000, rg, rng)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("range: %+v, mse: %g", rg, l)
	}

	if *out != "" {
		if err := arith.NewCheckpoint(task, net).Save(*out); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("wrote %s", *out)
	}
}

func handleHTTP(task *arith.Task, net nalu.Network, losses []float64) {
	select {
	case cn := <-weightsChan:
		b, err := json.Marshal(net.WeightsVal())
		if err != nil {
			log.Fatalf("%v", err)
		}
		cn <- b
	case cn := <-configChan:
		b, err := json.Marshal(arith.NewCheckpoint(task, net).Configs)
		if err != nil {
			log.Fatalf("%v", err)
		}
		cn <- b
	case cn := <-lossChan:
		cn <- losses
	default:
		return
	}
}
