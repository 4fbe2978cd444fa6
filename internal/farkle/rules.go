package farkle

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the game variant.
type Mode string

const (
	ModeNormal   Mode = "NORMAL"
	ModeLong     Mode = "LONG"
	ModeTutorial Mode = "TUTORIAL"
)

// ParseMode accepts a mode name in any case. Empty means NORMAL.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeNormal, nil
	}
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeLong, ModeTutorial:
		return true
	}
	return false
}

// BiasRules tune the return-to-player skew applied to rolls.
type BiasRules struct {
	MinTurns  int64   // lifetime games needed before the ratio applies
	MinEarned int64   // lifetime earnings needed before the ratio applies
	Target    float64 // multiplier on amountBet/amountEarned
	Min       float64
	Max       float64
	Newcomer  float64 // bias for players that never earned anything
	Neutral   float64
}

// TutorialRoll is one scripted roll of the tutorial.
type TutorialRoll struct {
	Dice  []int
	Extra bool // the roll is presented as an extra roll
}

// Rules holds every tunable constant of the game.
type Rules struct {
	Bias BiasRules

	PayoutDivisor    int64 // NORMAL payout = points * bet / PayoutDivisor
	JackpotDivisor   int64 // share of each wager fed to the jackpot
	JackpotThreshold int   // turn points that seize the jackpot
	JackpotReset     int64
	Replenish        int64 // wager multiple credited when the balance goes negative

	FirstBonus    int64
	DailyBonus    int64
	BonusInterval time.Duration

	MaxLongTurns int
	GoalLadder   []int
	GoalStep     int

	FarkleStreak  int
	FarklePenalty int

	Tutorial []TutorialRoll
}

var defaultLadder = [...]int{5000, 8000, 10000, 12000, 15000, 20000, 25000, 30000}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		Bias: BiasRules{
			MinTurns:  10,
			MinEarned: 5000,
			Target:    0.9,
			Min:       0.5,
			Max:       2.5,
			Newcomer:  3.0,
			Neutral:   1.0,
		},
		PayoutDivisor:    500,
		JackpotDivisor:   10,
		JackpotThreshold: 10000,
		JackpotReset:     1000,
		Replenish:        5,
		FirstBonus:       20,
		DailyBonus:       3,
		BonusInterval:    24 * time.Hour,
		MaxLongTurns:     10,
		GoalLadder:       defaultLadder[:],
		GoalStep:         10000,
		FarkleStreak:     3,
		FarklePenalty:    -500,
		Tutorial:         DefaultTutorial(),
	}
}

// DefaultTutorial is the stock scripted tutorial: two scoring rolls, a
// farkle, an extra-rolled straight after the undo, then hot dice.
func DefaultTutorial() []TutorialRoll {
	return []TutorialRoll{
		{Dice: []int{1, 2, 5, 3, 3, 6}},
		{Dice: []int{4, 2, 2, 2}},
		{Dice: []int{6}},
		{Dice: []int{1, 2, 3, 4, 5, 6}, Extra: true},
		{Dice: []int{3, 4, 4, 2, 4, 4}},
	}
}

// GoalAmount is the cumulative score needed to clear ladder level i.
func (r Rules) GoalAmount(i int) int {
	n := len(r.GoalLadder)
	if n == 0 {
		return r.GoalStep * (i + 1)
	}
	if i < n {
		return r.GoalLadder[i]
	}
	return r.GoalLadder[n-1] + r.GoalStep*(i-n+1)
}

// levelsCrossed counts the ladder levels from level `from` that a cumulative
// score of total clears.
func (r Rules) levelsCrossed(total, from int) int {
	n := 0
	for total >= r.GoalAmount(from+n) {
		n++
		if from+n >= len(r.GoalLadder) && r.GoalStep <= 0 {
			break
		}
	}
	return n
}
