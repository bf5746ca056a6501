package nalu

import (
	"encoding/json"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var u ArithmeticUnit
	serializer.RegisterTypedDeserializer(u.SerializerType(), DeserializeArithmeticUnit)
}

// SerializerType returns the unique ID used to serialize an ArithmeticUnit with the serializer package.
func (u *ArithmeticUnit) SerializerType() string {
	return "github.com/fumin/nalu.ArithmeticUnit"
}

// Serialize encodes the configuration of u. Weights are not included, see WeightsVal.
func (u *ArithmeticUnit) Serialize() ([]byte, error) {
	c := u.Config()
	wi, err := json.Marshal(c.WeightInitializer)
	if err != nil {
		return nil, essentials.AddCtx("serialize ArithmeticUnit", err)
	}
	gi, err := json.Marshal(c.GateInitializer)
	if err != nil {
		return nil, essentials.AddCtx("serialize ArithmeticUnit", err)
	}
	return serializer.SerializeAny(
		serializer.Int(c.Units),
		serializer.String(c.Mode),
		serializer.String(wi),
		serializer.String(gi),
	)
}

// DeserializeArithmeticUnit decodes an unbuilt ArithmeticUnit created by Serialize.
func DeserializeArithmeticUnit(d []byte) (*ArithmeticUnit, error) {
	var units serializer.Int
	var mode, wi, gi serializer.String
	if err := serializer.DeserializeAny(d, &units, &mode, &wi, &gi); err != nil {
		return nil, essentials.AddCtx("deserialize ArithmeticUnit", err)
	}
	c := Config{Units: int(units), Mode: Mode(mode)}
	if err := json.Unmarshal([]byte(wi), &c.WeightInitializer); err != nil {
		return nil, essentials.AddCtx("deserialize ArithmeticUnit", err)
	}
	if err := json.Unmarshal([]byte(gi), &c.GateInitializer); err != nil {
		return nil, essentials.AddCtx("deserialize ArithmeticUnit", err)
	}
	u, err := New(c)
	if err != nil {
		return nil, essentials.AddCtx("deserialize ArithmeticUnit", err)
	}
	return u, nil
}
