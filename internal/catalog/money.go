package catalog

import (
	"encoding/json"
	"fmt"
	"math"
)

// Money is an amount in minor currency units (pence).
type Money int64

// Pounds converts a major-unit amount to Money, rounding to the nearest penny.
func Pounds(v float64) Money {
	return Money(math.Round(v * 100))
}

// Scale multiplies the amount by factor, rounding half away from zero.
func (m Money) Scale(factor float64) Money {
	return Money(math.Round(float64(m) * factor))
}

// Major returns the amount in pounds.
func (m Money) Major() float64 {
	return float64(m) / 100
}

// String renders the amount as "£300.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s£%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a decimal number of pounds.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Major())
}

// UnmarshalJSON accepts a decimal number of pounds.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("catalog: money must be a number: %w", err)
	}
	*m = Pounds(v)
	return nil
}
