package farkle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xtding233/farkle-backend/internal/scoring"
)

var ErrCorruptSnapshot = errors.New("corrupt game snapshot")

// turnRecord is the persisted shape of a TurnState. Missing diceRolled
// defaults to six; every other field defaults to its zero value.
type turnRecord struct {
	Dice            []int `json:"dice"`
	DiceRolled      *int  `json:"diceRolled"`
	Points          int   `json:"points"`
	UnboostedPoints int   `json:"unboostedPoints"`
	SavePoints      int   `json:"savePoints"`
	Rolled          bool  `json:"rolled"`
	Farkle          bool  `json:"farkle"`
	Unfarkled       bool  `json:"unfarkled"`
	HasExtra        bool  `json:"hasExtra"`
	HasDoubled      bool  `json:"hasDoubled"`
	HasUndone       bool  `json:"hasUndone"`
	Ended           bool  `json:"ended"`
	FreshRolls      int   `json:"freshRolls"`
}

// gameRecord is the persisted shape of a GameState. Defaults: a missing
// turn is a fresh turn, a missing gameMode is NORMAL and a missing gameOver
// is true.
type gameRecord struct {
	UniqID       string       `json:"uniqID"`
	Turn         *turnRecord  `json:"turn"`
	Turns        []turnRecord `json:"turns"`
	TurnBet      int64        `json:"turnBet"`
	GameMode     *Mode        `json:"gameMode"`
	TutorialStep int          `json:"tutorialStep"`
	Won          int64        `json:"won"`
	WonGame      int64        `json:"wonGame"`
	BoostBonus   bool         `json:"boostBonus"`
	GameOver     *bool        `json:"gameOver"`
	HasExtra     bool         `json:"hasExtra"`
	HasDoubled   bool         `json:"hasDoubled"`
	HasUndone    bool         `json:"hasUndone"`
	Goal         int          `json:"goal"`
	PlayerID     string       `json:"playerId"`
	Message      string       `json:"message"`
	Version      int64        `json:"version"`
	Jackpot      int64        `json:"jackpot"`
	Balance      int64        `json:"balance"`
	NumBoosts    int64        `json:"numBoosts"`
	NumGems      int64        `json:"numGems"`
	AmountBet    int64        `json:"amountBet"`
	AmountEarned int64        `json:"amountEarned"`
	NumTurns     int64        `json:"numTurns"`
	LastBonus    string       `json:"lastBonus"`
}

// Encode serializes a game for storage.
func Encode(g *GameState) ([]byte, error) {
	return json.Marshal(g)
}

// Decode restores a game written by Encode. Unknown fields and out-of-range
// dice are rejected.
func Decode(data []byte) (*GameState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var rec gameRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	g := &GameState{
		UniqID:       rec.UniqID,
		Turn:         NewTurn(),
		TurnBet:      rec.TurnBet,
		GameMode:     ModeNormal,
		TutorialStep: rec.TutorialStep,
		Won:          rec.Won,
		WonGame:      rec.WonGame,
		BoostBonus:   rec.BoostBonus,
		GameOver:     true,
		HasExtra:     rec.HasExtra,
		HasDoubled:   rec.HasDoubled,
		HasUndone:    rec.HasUndone,
		Goal:         rec.Goal,
		PlayerID:     rec.PlayerID,
		Message:      rec.Message,
		Version:      rec.Version,
		Jackpot:      rec.Jackpot,
		Balance:      rec.Balance,
		NumBoosts:    rec.NumBoosts,
		NumGems:      rec.NumGems,
		AmountBet:    rec.AmountBet,
		AmountEarned: rec.AmountEarned,
		NumTurns:     rec.NumTurns,
		LastBonus:    rec.LastBonus,
	}
	if rec.GameMode != nil {
		if !rec.GameMode.Valid() {
			return nil, fmt.Errorf("%w: game mode %q", ErrCorruptSnapshot, *rec.GameMode)
		}
		g.GameMode = *rec.GameMode
	}
	if rec.GameOver != nil {
		g.GameOver = *rec.GameOver
	}
	if rec.Turn != nil {
		t, err := rec.Turn.state()
		if err != nil {
			return nil, err
		}
		g.Turn = t
	}
	for i := range rec.Turns {
		t, err := rec.Turns[i].state()
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		g.Turns = append(g.Turns, t)
	}
	return g, nil
}

func (r turnRecord) state() (TurnState, error) {
	t := TurnState{
		Dice:            append([]int(nil), r.Dice...),
		DiceRolled:      scoring.Sides,
		Points:          r.Points,
		UnboostedPoints: r.UnboostedPoints,
		SavePoints:      r.SavePoints,
		Rolled:          r.Rolled,
		Farkle:          r.Farkle,
		Unfarkled:       r.Unfarkled,
		HasExtra:        r.HasExtra,
		HasDoubled:      r.HasDoubled,
		HasUndone:       r.HasUndone,
		Ended:           r.Ended,
		FreshRolls:      r.FreshRolls,
	}
	if r.DiceRolled != nil {
		t.DiceRolled = *r.DiceRolled
	}
	if t.DiceRolled < 1 || t.DiceRolled > scoring.Sides {
		return TurnState{}, fmt.Errorf("%w: diceRolled %d", ErrCorruptSnapshot, t.DiceRolled)
	}
	if len(t.Dice) > scoring.Sides {
		return TurnState{}, fmt.Errorf("%w: %d dice", ErrCorruptSnapshot, len(t.Dice))
	}
	for _, f := range t.Dice {
		if f < 1 || f > scoring.Sides {
			return TurnState{}, fmt.Errorf("%w: die face %d", ErrCorruptSnapshot, f)
		}
	}
	return t, nil
}
