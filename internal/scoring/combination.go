package scoring

import "fmt"

// Kind names the scoring combinations a roll can be partitioned into.
type Kind int

const (
	KindOfAKind Kind = iota + 1
	KindStraight
	KindThreePair
	KindLooseDigits
)

func (k Kind) String() string {
	switch k {
	case KindOfAKind:
		return "of_a_kind"
	case KindStraight:
		return "straight"
	case KindThreePair:
		return "three_pair"
	case KindLooseDigits:
		return "loose_digits"
	default:
		return "unknown"
	}
}

const (
	Sides = 6

	StraightPoints  = 1500
	ThreePairPoints = 750
)

// faceBase is the per-face multiplier for of-a-kind scores. Index 0 is unused.
var faceBase = [Sides + 1]int{0, 10, 2, 3, 4, 5, 6}

// looseValue is what a single unmatched die is worth. Only 1s and 5s score.
var looseValue = [Sides + 1]int{0, 100, 0, 0, 0, 50, 0}

// Combination is one scoring group inside a roll.
type Combination struct {
	Kind   Kind  `json:"kind"`
	Face   int   `json:"face,omitempty"`  // OfAKind only
	Count  int   `json:"count,omitempty"` // OfAKind only
	Dice   []int `json:"dice"`            // indices into the scored faces
	Points int   `json:"points"`
}

func (c Combination) String() string {
	if c.Kind == KindOfAKind {
		return fmt.Sprintf("%d of a kind (%d) = %d", c.Count, c.Face, c.Points)
	}
	return fmt.Sprintf("%s = %d", c.Kind, c.Points)
}

// kindMultiplier doubles for each die past three.
func kindMultiplier(count int) int {
	switch count {
	case 3:
		return 1
	case 4:
		return 2
	case 5:
		return 4
	case 6:
		return 8
	default:
		return 0
	}
}

func newOfAKind(faces []int, face int) Combination {
	c := Combination{Kind: KindOfAKind, Face: face}
	for idx, f := range faces {
		if f == face {
			c.Dice = append(c.Dice, idx)
		}
	}
	c.Count = len(c.Dice)
	c.Points = faceBase[face] * 100 * kindMultiplier(c.Count)
	return c
}

func newStraight(faces []int) Combination {
	return Combination{Kind: KindStraight, Dice: allIndices(len(faces)), Points: StraightPoints}
}

func newThreePair(faces []int) Combination {
	return Combination{Kind: KindThreePair, Dice: allIndices(len(faces)), Points: ThreePairPoints}
}

// newLooseDigits collects every 1 and 5 whose index is not already used.
func newLooseDigits(faces []int, used []bool) Combination {
	c := Combination{Kind: KindLooseDigits}
	for idx, f := range faces {
		if used[idx] || f < 1 || f > Sides || looseValue[f] == 0 {
			continue
		}
		c.Dice = append(c.Dice, idx)
		c.Points += looseValue[f]
	}
	return c
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
