// Package scoring decides what a set of dice is worth.
//
// Score partitions the faces into the highest-value set of combinations. It
// is deterministic and never fails: faces outside 1..6 simply do not score.
package scoring

import "fmt"

// Result is the outcome of scoring one set of faces.
type Result struct {
	Points       int           `json:"points"`
	Combinations []Combination `json:"combinations"`
	Used         []bool        `json:"used"` // one flag per input face
}

// Farkle reports whether the faces scored nothing.
func (r Result) Farkle() bool { return r.Points == 0 }

// AllUsed reports whether every input face contributed to a combination.
func (r Result) AllUsed() bool {
	for _, u := range r.Used {
		if !u {
			return false
		}
	}
	return true
}

// Score computes the best partition of faces into combinations.
//
// Straights take precedence over everything. Of-a-kind groups are found from
// the largest match size down so a four of a kind is never split, leftover 1s
// and 5s score as loose digits, and with six dice a three pair replaces the
// result when that result left dice unused or was worth less than 750.
func Score(faces []int) Result {
	res := Result{Used: make([]bool, len(faces))}
	if len(faces) == 0 {
		return res
	}

	var counts [Sides + 1]int
	for _, f := range faces {
		if f >= 1 && f <= Sides {
			counts[f]++
		}
	}

	if isStraight(faces, counts) {
		res.Combinations = []Combination{newStraight(faces)}
		res.total()
		return res
	}

	used := make([]bool, len(faces))
	for match := len(faces); match >= 3; match-- {
		for face := 1; face <= Sides; face++ {
			if counts[face] != match {
				continue
			}
			c := newOfAKind(faces, face)
			for _, idx := range c.Dice {
				used[idx] = true
			}
			res.Combinations = append(res.Combinations, c)
		}
	}

	if loose := newLooseDigits(faces, used); loose.Points > 0 {
		res.Combinations = append(res.Combinations, loose)
	}

	if len(faces) == 6 && pairCount(counts) == 3 {
		consumed, points := 0, 0
		for _, c := range res.Combinations {
			consumed += len(c.Dice)
			points += c.Points
		}
		if consumed < 6 || points < ThreePairPoints {
			res.Combinations = []Combination{newThreePair(faces)}
		}
	}

	res.total()
	return res
}

func isStraight(faces []int, counts [Sides + 1]int) bool {
	if len(faces) != Sides {
		return false
	}
	for face := 1; face <= Sides; face++ {
		if counts[face] != 1 {
			return false
		}
	}
	return true
}

// pairCount counts a four of a kind as two pairs.
func pairCount(counts [Sides + 1]int) int {
	pairs := 0
	for face := 1; face <= Sides; face++ {
		switch counts[face] {
		case 2:
			pairs++
		case 4:
			pairs += 2
		}
	}
	return pairs
}

// total sums the combinations and marks used dice. Overlapping combinations
// mean the partition above is broken, which would corrupt every hold check.
func (r *Result) total() {
	r.Points = 0
	for _, c := range r.Combinations {
		r.Points += c.Points
		for _, idx := range c.Dice {
			if idx < 0 || idx >= len(r.Used) {
				panic(fmt.Sprintf("scoring: die index %d out of range in %s", idx, c))
			}
			if r.Used[idx] {
				panic(fmt.Sprintf("scoring: die index %d consumed twice", idx))
			}
			r.Used[idx] = true
		}
	}
}
