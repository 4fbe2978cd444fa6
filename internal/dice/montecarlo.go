package dice

import (
	"math"
	"sort"

	"github.com/xtding233/farkle-backend/internal/scoring"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Points scored by a single roll of SimParams.Dice dice.
	GoalRollScore TrialGoal = "roll_score"
	// Points banked by a whole turn played with the BankAt/MinDice strategy.
	GoalTurnScore TrialGoal = "turn_score"
)

// SimParams describes the mechanics for one simulation run.
type SimParams struct {
	Bias float64 // weight on the one face, see Face
	Dice int     // dice per roll for GoalRollScore; <=0 means 6

	// Turn strategy for GoalTurnScore: every scoring die is held after each
	// roll, and the turn banks once BankAt points are reached or fewer than
	// MinDice dice remain to roll.
	BankAt  int
	MinDice int
}

// Stats summarizes simulation results.
type Stats struct {
	Mean       float64
	Var        float64
	StdDev     float64
	P50        float64
	P90        float64
	P99        float64
	FarkleRate float64 // share of trials that scored zero
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	zeros := 0
	for _, v := range xs {
		sum += float64(v)
		if v == 0 {
			zeros++
		}
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:       mean,
		Var:        variance,
		StdDev:     math.Sqrt(variance),
		P50:        percentile(0.50),
		P90:        percentile(0.90),
		P99:        percentile(0.99),
		FarkleRate: float64(zeros) / float64(n),
		Samples:    xs,
	}
}

// simulateOne returns the primary metric for one trial depending on the goal.
func simulateOne(p SimParams, goal TrialGoal, rng RandomSource) (int, error) {
	n := p.Dice
	if n <= 0 || n > Sides {
		n = Sides
	}

	switch goal {
	case GoalTurnScore:
		return simulateTurn(p, rng)
	default:
		faces, err := Roll(n, p.Bias, rng)
		if err != nil {
			return 0, err
		}
		return scoring.Score(faces).Points, nil
	}
}

func simulateTurn(p SimParams, rng RandomSource) (int, error) {
	remaining := Sides
	points := 0
	// the cap stops a strategy that never banks
	for rolls := 0; rolls < 1000; rolls++ {
		faces, err := Roll(remaining, p.Bias, rng)
		if err != nil {
			return 0, err
		}
		res := scoring.Score(faces)
		if res.Farkle() {
			return 0, nil
		}
		points += res.Points
		for _, u := range res.Used {
			if u {
				remaining--
			}
		}
		if remaining == 0 {
			remaining = Sides // hot dice
		}
		if (p.BankAt > 0 && points >= p.BankAt) || remaining < p.MinDice {
			return points, nil
		}
	}
	return points, nil
}

// RunMonteCarlo repeats trials and returns summary stats.
// goal determines what metric is recorded per trial.
func RunMonteCarlo(p SimParams, goal TrialGoal, trials int, rng RandomSource) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if err := validateBias(p.Bias); err != nil {
		return Stats{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(p, goal, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}
