package metrics

import (
	"math"
	"strconv"
)

// RoundFloat64 is a float64 printed with Precision decimals.
type RoundFloat64 struct {
	Value     float64
	Precision int
}

func (v RoundFloat64) String() string {
	switch {
	case math.IsNaN(v.Value):
		return "NaN"
	case math.IsInf(v.Value, 1):
		return "+Inf"
	case math.IsInf(v.Value, -1):
		return "-Inf"
	}
	shift := math.Pow10(v.Precision)
	return strconv.FormatFloat(math.Round(v.Value*shift)/shift, 'f', v.Precision, 64)
}

// Centi is a value at the 0.01 resolution of the MS5611 outputs.
func Centi(v float64) RoundFloat64 {
	return RoundFloat64{Value: v, Precision: 2}
}
