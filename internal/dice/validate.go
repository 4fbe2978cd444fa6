package dice

import (
	"math"
)

func validateBias(bias float64) error {
	if math.IsNaN(bias) || math.IsInf(bias, 0) {
		return ErrInvalidBias
	}
	if bias <= 0 || bias >= Sides {
		return ErrInvalidBias
	}
	return nil
}

// ValidBias reports whether bias can be used for a roll.
func ValidBias(bias float64) bool { return validateBias(bias) == nil }
