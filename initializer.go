package nalu

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// An Initializer fills a freshly allocated (fanIn x fanOut) parameter matrix.
// A nil r means the global math/rand source.
type Initializer interface {
	Init(dst []float64, fanIn, fanOut int, r *rand.Rand)
}

// InitializerConfig is the serialized form of an Initializer.
type InitializerConfig struct {
	ClassName string             `json:"class_name"`
	Config    map[string]float64 `json:"config,omitempty"`
}

// GlorotUniform samples from U(-limit, limit) with limit = sqrt(6 / (fanIn + fanOut)).
type GlorotUniform struct{}

func (GlorotUniform) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range dst {
		dst[i] = (2*float64Rand(r) - 1) * limit
	}
}

// GlorotNormal samples from a normal distribution truncated at two standard deviations,
// scaled so that the variance after truncation is 2 / (fanIn + fanOut).
type GlorotNormal struct{}

// truncatedNormalStddev is the standard deviation of N(0, 1) truncated to [-2, 2].
const truncatedNormalStddev = 0.87962566103423978

func (GlorotNormal) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	stddev := math.Sqrt(2/float64(fanIn+fanOut)) / truncatedNormalStddev
	for i := range dst {
		dst[i] = truncatedNorm(r) * stddev
	}
}

type RandomUniform struct {
	Minval float64
	Maxval float64
}

func (u RandomUniform) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	for i := range dst {
		dst[i] = u.Minval + float64Rand(r)*(u.Maxval-u.Minval)
	}
}

type RandomNormal struct {
	Mean   float64
	Stddev float64
}

func (n RandomNormal) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	for i := range dst {
		dst[i] = n.Mean + normRand(r)*n.Stddev
	}
}

type Constant struct {
	Value float64
}

func (c Constant) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	for i := range dst {
		dst[i] = c.Value
	}
}

type Zeros struct{}

func (Zeros) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	Constant{}.Init(dst, fanIn, fanOut, r)
}

type Ones struct{}

func (Ones) Init(dst []float64, fanIn, fanOut int, r *rand.Rand) {
	Constant{Value: 1}.Init(dst, fanIn, fanOut, r)
}

var initializers = map[string]func(map[string]float64) Initializer{
	"GlorotUniform": func(map[string]float64) Initializer { return GlorotUniform{} },
	"GlorotNormal":  func(map[string]float64) Initializer { return GlorotNormal{} },
	"RandomUniform": func(c map[string]float64) Initializer {
		return RandomUniform{Minval: param(c, "minval", -0.05), Maxval: param(c, "maxval", 0.05)}
	},
	"RandomNormal": func(c map[string]float64) Initializer {
		return RandomNormal{Mean: param(c, "mean", 0), Stddev: param(c, "stddev", 0.05)}
	},
	"Constant": func(c map[string]float64) Initializer { return Constant{Value: param(c, "value", 0)} },
	"Zeros":    func(map[string]float64) Initializer { return Zeros{} },
	"Ones":     func(map[string]float64) Initializer { return Ones{} },
}

// GetInitializer resolves an initializer by name with its default parameters.
// Both "GlorotUniform" and "glorot_uniform" spellings are accepted.
func GetInitializer(name string) (Initializer, error) {
	return DeserializeInitializer(InitializerConfig{ClassName: name})
}

// DeserializeInitializer rebuilds the Initializer described by c.
func DeserializeInitializer(c InitializerConfig) (Initializer, error) {
	f, ok := initializers[className(c.ClassName)]
	if !ok {
		names := make([]string, 0, len(initializers))
		for n := range initializers {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, &ConfigurationError{Field: "initializer", Msg: fmt.Sprintf("unknown %q, valid: %s", c.ClassName, strings.Join(names, ", "))}
	}
	return f(c.Config), nil
}

// SerializeInitializer is the inverse of DeserializeInitializer.
func SerializeInitializer(init Initializer) (InitializerConfig, error) {
	switch v := init.(type) {
	case GlorotUniform:
		return InitializerConfig{ClassName: "GlorotUniform"}, nil
	case GlorotNormal:
		return InitializerConfig{ClassName: "GlorotNormal"}, nil
	case RandomUniform:
		return InitializerConfig{ClassName: "RandomUniform", Config: map[string]float64{"minval": v.Minval, "maxval": v.Maxval}}, nil
	case RandomNormal:
		return InitializerConfig{ClassName: "RandomNormal", Config: map[string]float64{"mean": v.Mean, "stddev": v.Stddev}}, nil
	case Constant:
		return InitializerConfig{ClassName: "Constant", Config: map[string]float64{"value": v.Value}}, nil
	case Zeros:
		return InitializerConfig{ClassName: "Zeros"}, nil
	case Ones:
		return InitializerConfig{ClassName: "Ones"}, nil
	}
	return InitializerConfig{}, &ConfigurationError{Field: "initializer", Msg: fmt.Sprintf("%T is not serializable", init)}
}

// className turns "glorot_uniform" into "GlorotUniform".
func className(name string) string {
	if !strings.Contains(name, "_") && name != strings.ToLower(name) {
		return name
	}
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

func param(c map[string]float64, key string, def float64) float64 {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

func float64Rand(r *rand.Rand) float64 {
	if r == nil {
		return rand.Float64()
	}
	return r.Float64()
}

func normRand(r *rand.Rand) float64 {
	if r == nil {
		return rand.NormFloat64()
	}
	return r.NormFloat64()
}

func truncatedNorm(r *rand.Rand) float64 {
	for {
		if v := normRand(r); math.Abs(v) <= 2 {
			return v
		}
	}
}
