package farkle

import (
	"github.com/xtding233/farkle-backend/internal/scoring"
)

// Roller draws n biased die faces.
type Roller interface {
	Roll(n int, bias float64) []int
}

// TurnState tracks the dice of one turn.
type TurnState struct {
	Dice       []int `json:"dice"`
	DiceRolled int   `json:"diceRolled"` // dice to roll next

	Points          int `json:"points"`          // banked this turn
	UnboostedPoints int `json:"unboostedPoints"` // banked before any power-up
	SavePoints      int `json:"savePoints"`      // points before the last farkle

	Rolled    bool `json:"rolled"`    // dice are on the table awaiting a decision
	Farkle    bool `json:"farkle"`    // the last roll scored nothing
	Unfarkled bool `json:"unfarkled"` // the last farkle was undone

	HasExtra   bool `json:"hasExtra"`
	HasDoubled bool `json:"hasDoubled"`
	HasUndone  bool `json:"hasUndone"`

	Ended      bool `json:"ended"`
	FreshRolls int  `json:"freshRolls"` // rolls of all six dice
}

// NewTurn returns a turn ready for its first roll.
func NewTurn() TurnState {
	return TurnState{DiceRolled: scoring.Sides}
}

func (t TurnState) clone() TurnState {
	t.Dice = append([]int(nil), t.Dice...)
	return t
}

// Open reports whether rolled dice are waiting for a hold.
func (t *TurnState) Open() bool { return t.Rolled && !t.Farkle }

// untouched reports whether nothing has happened in the turn yet.
func (t *TurnState) untouched() bool {
	return !t.Rolled && !t.Ended && t.FreshRolls == 0 && t.Points == 0
}

// Unresolved reports whether the last roll is a farkle nobody undid.
func (t *TurnState) Unresolved() bool { return t.Rolled && t.Farkle && !t.Unfarkled }

// Roll draws DiceRolled faces with the given bias and scores them.
func (t *TurnState) Roll(r Roller, bias float64) error {
	if t.Ended {
		return ErrTurnEnded
	}
	if t.Rolled {
		return ErrMustHold
	}
	t.roll(r.Roll(t.DiceRolled, bias))
	return nil
}

// ExtraRoll puts all six dice back and rolls them unbiased.
func (t *TurnState) ExtraRoll(r Roller) error {
	if t.Ended {
		return ErrTurnEnded
	}
	if t.HasExtra {
		return ErrPowerUpUsed
	}
	if t.Rolled {
		return ErrMustHold
	}
	t.HasExtra = true
	t.DiceRolled = scoring.Sides
	t.roll(r.Roll(t.DiceRolled, 1.0))
	return nil
}

// RollScripted places predetermined faces on the table.
func (t *TurnState) RollScripted(step TutorialRoll) error {
	if t.Ended {
		return ErrTurnEnded
	}
	if t.Rolled {
		return ErrMustHold
	}
	if step.Extra {
		t.HasExtra = true
	}
	t.DiceRolled = len(step.Dice)
	t.roll(append([]int(nil), step.Dice...))
	return nil
}

func (t *TurnState) roll(faces []int) {
	if t.DiceRolled == scoring.Sides {
		t.FreshRolls++
	}
	t.Dice = faces
	t.Rolled = true
	t.Unfarkled = false
	t.Farkle = scoring.Score(faces).Farkle()
	if t.Farkle {
		t.setPoints(0)
	}
}

// HoldAndBank settles the dice on the table. Held dice must all score; they
// are banked and removed from the pool. Without a hold the roll must be a
// farkle, unless the turn is ending.
func (t *TurnState) HoldAndBank(hold []int, ending bool) error {
	if !t.Rolled {
		return nil
	}
	if len(hold) == 0 {
		if !ending && !t.Farkle {
			return ErrMustHold
		}
		t.Rolled = false
		return nil
	}
	if t.Farkle {
		return ErrFarkleHold
	}
	res, err := t.scoreHeld(hold)
	if err != nil {
		return err
	}
	t.addPoints(res.Points)
	t.DiceRolled -= len(hold)
	if t.DiceRolled <= 0 {
		// hot dice
		t.DiceRolled = scoring.Sides
	}
	t.Rolled = false
	return nil
}

func (t *TurnState) scoreHeld(hold []int) (scoring.Result, error) {
	seen := make(map[int]bool, len(hold))
	held := make([]int, 0, len(hold))
	for _, i := range hold {
		if i < 0 || i >= len(t.Dice) || seen[i] {
			return scoring.Result{}, ErrInvalidHold
		}
		seen[i] = true
		held = append(held, t.Dice[i])
	}
	res := scoring.Score(held)
	if !res.AllUsed() {
		return scoring.Result{}, ErrInvalidHold
	}
	return res, nil
}

// Undo reverses the current farkle.
func (t *TurnState) Undo() error {
	if !t.Rolled || !t.Farkle {
		return ErrNotFarkled
	}
	if t.HasUndone {
		return ErrPowerUpUsed
	}
	t.HasUndone = true
	t.Unfarkled = true
	// unboosted points stay zeroed
	t.Points = t.SavePoints
	return nil
}

// Double adds the banked points to themselves.
func (t *TurnState) Double() error {
	if t.HasDoubled {
		return ErrPowerUpUsed
	}
	t.HasDoubled = true
	t.addPoints(t.Points)
	return nil
}

func (t *TurnState) boosted() bool { return t.HasExtra || t.HasUndone || t.HasDoubled }

func (t *TurnState) addPoints(n int) {
	t.Points += n
	if !t.boosted() {
		t.UnboostedPoints = t.Points
	}
}

func (t *TurnState) setPoints(n int) {
	t.SavePoints = t.Points
	t.Points = n
	if !t.HasExtra && !t.HasUndone {
		t.UnboostedPoints = t.Points
	}
}
