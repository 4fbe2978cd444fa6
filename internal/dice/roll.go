// Package dice rolls six-sided dice with an adjustable weight on the one face.
package dice

import "errors"

const Sides = 6

// NeutralBias rolls every face with equal probability.
const NeutralBias = 1.0

var ErrInvalidBias = errors.New("invalid bias; must be in (0, 6)")

// Face rolls one die.
// bias scales the chance of a 1: P(1) = bias/6. The remaining probability is
// split evenly over faces 2..6. bias 1 is a fair die.
func Face(bias float64, rng RandomSource) (int, error) {
	if err := validateBias(bias); err != nil {
		return 0, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	r := rng.Float64()
	boundary := bias / Sides
	if r <= boundary {
		return 1, nil
	}
	face := int((r-boundary)*(Sides-1)/(1-boundary)) + 2
	if face > Sides {
		face = Sides // rounding at r close to 1
	}
	return face, nil
}

// Roll rolls n dice with the same bias.
func Roll(n int, bias float64, rng RandomSource) ([]int, error) {
	if err := validateBias(bias); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	faces := make([]int, 0, n)
	for i := 0; i < n; i++ {
		f, err := Face(bias, rng)
		if err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
	return faces, nil
}

// Roller rolls dice from a fixed RandomSource.
type Roller struct {
	RNG RandomSource
}

// NewRoller creates a Roller. A nil rng uses DefaultRNG.
func NewRoller(rng RandomSource) *Roller {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Roller{RNG: rng}
}

// Roll rolls n dice. An out-of-range bias falls back to a fair roll so a bad
// tuning value can never stall a game.
func (r *Roller) Roll(n int, bias float64) []int {
	if validateBias(bias) != nil {
		bias = NeutralBias
	}
	faces, _ := Roll(n, bias, r.RNG)
	return faces
}
