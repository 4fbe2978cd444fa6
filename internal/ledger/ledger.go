// Package ledger accumulates the economic side-effects of one lifecycle call.
//
// A Ledger holds two mappings: deltas for the player aggregate and deltas for
// the game-wide aggregate. Numeric entries add up within a call; string
// entries are last-write-wins. The persistence layer applies both mappings in
// the same transaction that saves the session.
package ledger

import (
	"encoding/json"
	"sort"
)

// Player aggregate fields.
const (
	FieldCredits     = "credits"
	FieldGems        = "gems"
	FieldBoostTokens = "boost_tokens"
	FieldAmountBet   = "amount_bet"
	FieldAmountWon   = "amount_won"
	FieldGamesPlayed = "games_played"
	FieldLastBonus   = "last_bonus"
)

// Game aggregate fields.
const (
	FieldJackpot = "jackpot"
)

// Adjustment is either an additive delta or an overwrite value.
type Adjustment struct {
	Delta     int64
	Value     string
	Overwrite bool
}

// MarshalJSON encodes deltas as bare integers and overwrites as strings.
func (a Adjustment) MarshalJSON() ([]byte, error) {
	if a.Overwrite {
		return json.Marshal(a.Value)
	}
	return json.Marshal(a.Delta)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *Adjustment) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Adjustment{Value: s, Overwrite: true}
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Adjustment{Delta: n}
	return nil
}

// Entries maps a field name to its adjustment.
type Entries map[string]Adjustment

// Fields returns the field names in sorted order.
func (e Entries) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ledger is the output of one lifecycle call.
type Ledger struct {
	Player Entries `json:"player"`
	Game   Entries `json:"game"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{Player: Entries{}, Game: Entries{}}
}

// AddPlayer adds delta to a player field.
func (l *Ledger) AddPlayer(field string, delta int64) { l.Player.add(field, delta) }

// SetPlayer overwrites a player field.
func (l *Ledger) SetPlayer(field, value string) { l.Player.set(field, value) }

// AddGame adds delta to a game field.
func (l *Ledger) AddGame(field string, delta int64) { l.Game.add(field, delta) }

// Empty reports whether the ledger has no entries.
func (l *Ledger) Empty() bool {
	return l == nil || (len(l.Player) == 0 && len(l.Game) == 0)
}

func (e Entries) add(field string, delta int64) {
	cur := e[field]
	if cur.Overwrite {
		// string fields ignore deltas
		return
	}
	cur.Delta += delta
	e[field] = cur
}

func (e Entries) set(field, value string) {
	e[field] = Adjustment{Value: value, Overwrite: true}
}
