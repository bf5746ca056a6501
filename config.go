package nalu

import (
	"fmt"
)

// Mode selects the arithmetic an ArithmeticUnit can express.
type Mode string

const (
	// NAC only adds and subtracts its inputs.
	NAC Mode = "NAC"
	// NALU gates between the NAC and a log-space branch that multiplies, divides and raises to powers.
	NALU Mode = "NALU"
)

func (m Mode) Valid() bool {
	return m == NAC || m == NALU
}

func errInvalidMode(m Mode) error {
	return &ConfigurationError{Field: "mode", Msg: fmt.Sprintf("%q, valid modes: %q, %q", string(m), NAC, NALU)}
}

// Config holds the hyperparameters of an ArithmeticUnit.
// It is all that is needed to rebuild an equivalent, unbuilt unit.
type Config struct {
	Units             int               `json:"units"`
	Mode              Mode              `json:"mode"`
	WeightInitializer InitializerConfig `json:"weight_initializer"`
	GateInitializer   InitializerConfig `json:"gate_initializer"`
}

// DefaultConfig returns a Config that initializes every matrix with GlorotUniform.
func DefaultConfig(units int, mode Mode) Config {
	return Config{
		Units:             units,
		Mode:              mode,
		WeightInitializer: InitializerConfig{ClassName: "GlorotUniform"},
		GateInitializer:   InitializerConfig{ClassName: "GlorotUniform"},
	}
}

// Validate checks every field of c, including the mode.
// New leaves the mode to the first Forward call, callers that want to fail early call Validate first.
func (c Config) Validate() error {
	if err := c.validateUnits(); err != nil {
		return err
	}
	if !c.Mode.Valid() {
		return errInvalidMode(c.Mode)
	}
	if _, err := resolveInitializer(c.WeightInitializer); err != nil {
		return err
	}
	if _, err := resolveInitializer(c.GateInitializer); err != nil {
		return err
	}
	return nil
}

func (c Config) validateUnits() error {
	if c.Units < 1 {
		return &ConfigurationError{Field: "units", Msg: fmt.Sprintf("%d < 1", c.Units)}
	}
	return nil
}

func resolveInitializer(c InitializerConfig) (Initializer, error) {
	if c.ClassName == "" {
		return GlorotUniform{}, nil
	}
	return DeserializeInitializer(c)
}
