package nalu

import (
	"fmt"
)

// A ConfigurationError reports an invalid hyperparameter of an ArithmeticUnit.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("nalu: invalid %s: %s", e.Field, e.Msg)
}

// A ShapeError reports an input shape that an ArithmeticUnit cannot accept.
type ShapeError struct {
	Shape Shape
	Msg   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("nalu: bad shape %v: %s", e.Shape, e.Msg)
}
