package farkle

import (
	"fmt"
	"time"

	"github.com/xtding233/farkle-backend/internal/ledger"
	"github.com/xtding233/farkle-backend/internal/pricing"
	"github.com/xtding233/farkle-backend/internal/scoring"
)

// GameState is one session: a game of one or more turns plus copies of the
// player and game aggregates it touches.
type GameState struct {
	UniqID       string      `json:"uniqID"`
	Turn         TurnState   `json:"turn"`
	Turns        []TurnState `json:"turns"`
	TurnBet      int64       `json:"turnBet"`
	GameMode     Mode        `json:"gameMode"`
	TutorialStep int         `json:"tutorialStep"`
	Won          int64       `json:"won"`     // credits won on the last turn
	WonGame      int64       `json:"wonGame"` // credits won this game
	BoostBonus   bool        `json:"boostBonus"`
	GameOver     bool        `json:"gameOver"`
	HasExtra     bool        `json:"hasExtra"`
	HasDoubled   bool        `json:"hasDoubled"`
	HasUndone    bool        `json:"hasUndone"`
	Goal         int         `json:"goal"` // next LONG ladder level
	PlayerID     string      `json:"playerId"`
	Message      string      `json:"message"`
	Version      int64       `json:"version"`

	// Mirrors of the aggregates, refreshed before every call.
	Jackpot      int64  `json:"jackpot"`
	Balance      int64  `json:"balance"`
	NumBoosts    int64  `json:"numBoosts"`
	NumGems      int64  `json:"numGems"`
	AmountBet    int64  `json:"amountBet"`
	AmountEarned int64  `json:"amountEarned"`
	NumTurns     int64  `json:"numTurns"`
	LastBonus    string `json:"lastBonus"`
}

// PlayerView is the slice of the player aggregate a game reads.
type PlayerView struct {
	ID          string
	Credits     int64
	Gems        int64
	BoostTokens int64
	AmountBet   int64
	AmountWon   int64
	GamesPlayed int64
	LastBonus   string
}

// NewGame returns an empty session waiting for its first wager.
func NewGame(id, playerID string) *GameState {
	return &GameState{
		UniqID:   id,
		Turn:     NewTurn(),
		GameMode: ModeNormal,
		GameOver: true,
		PlayerID: playerID,
	}
}

// Clone returns a deep copy.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Turn = g.Turn.clone()
	if g.Turns != nil {
		c.Turns = make([]TurnState, len(g.Turns))
		for i, t := range g.Turns {
			c.Turns[i] = t.clone()
		}
	}
	return &c
}

// SyncPlayer copies the player aggregate into the mirrors.
func (g *GameState) SyncPlayer(p PlayerView) {
	g.PlayerID = p.ID
	g.Balance = p.Credits
	g.NumGems = p.Gems
	g.NumBoosts = p.BoostTokens
	g.AmountBet = p.AmountBet
	g.AmountEarned = p.AmountWon
	g.NumTurns = p.GamesPlayed
	g.LastBonus = p.LastBonus
}

// SyncGame copies the game aggregate into the mirrors.
func (g *GameState) SyncGame(jackpot int64) { g.Jackpot = jackpot }

// GameScore sums the points of the ended turns.
func (g *GameState) GameScore() int {
	total := 0
	for _, t := range g.Turns {
		total += t.Points
	}
	return total
}

// apply runs op on a copy and commits it only when op succeeds. On failure
// the receiver keeps its state and only records the message.
func (g *GameState) apply(op func(next *GameState, led *ledger.Ledger) (string, error)) (*ledger.Ledger, error) {
	next := g.Clone()
	led := ledger.New()
	msg, err := op(next, led)
	if err != nil {
		g.Message = err.Error()
		return nil, err
	}
	next.Message = msg
	*g = *next
	return led, nil
}

// StartTurn begins a new game with the given wager and mode, or the next
// turn of a LONG game in progress. A turn in play has to be ended first, so a
// farkle can never be discarded this way.
func (g *GameState) StartTurn(bet int64, mode Mode, rules Rules, now time.Time) (*ledger.Ledger, error) {
	return g.apply(func(s *GameState, led *ledger.Ledger) (string, error) {
		if !s.GameOver {
			switch {
			case s.Turn.Unresolved():
				return "", ErrFarkleUnresolved
			case s.Turn.Open():
				return "", ErrMustHold
			case s.GameMode != ModeLong:
				return "", ErrGameInProgress
			case !s.Turn.Ended && !s.Turn.untouched():
				return "", ErrGameInProgress
			}
			s.Turn = NewTurn()
			return "next turn in game", nil
		}
		if bet <= 0 {
			return "", ErrInvalidAmount
		}
		if mode == "" {
			mode = ModeNormal
		}
		if !mode.Valid() {
			return "", ErrInvalidMode
		}
		s.newGame(bet, mode, rules, now, led)
		return "new game", nil
	})
}

func (g *GameState) newGame(bet int64, mode Mode, rules Rules, now time.Time, led *ledger.Ledger) {
	g.GameMode = mode
	g.NumTurns++
	led.AddPlayer(ledger.FieldGamesPlayed, 1)
	g.TurnBet = bet
	g.grantBonus(rules, now, led)

	if mode == ModeLong {
		g.Goal = 0
	}
	if mode == ModeTutorial {
		g.TutorialStep = 1
	} else {
		g.AmountBet += bet
		g.Balance -= bet
		led.AddPlayer(ledger.FieldAmountBet, bet)
		led.AddPlayer(ledger.FieldCredits, -bet)
		share := floorDiv(bet, rules.JackpotDivisor)
		g.Jackpot += share
		led.AddGame(ledger.FieldJackpot, share)
		if g.Balance < 0 {
			refill := bet * rules.Replenish
			g.Balance += refill
			led.AddPlayer(ledger.FieldCredits, refill)
		}
	}

	g.Turns = nil
	g.Turn = NewTurn()
	g.WonGame = 0
	g.Won = 0
	g.HasDoubled = false
	g.HasExtra = false
	g.HasUndone = false
	g.GameOver = false
}

func (g *GameState) grantBonus(rules Rules, now time.Time, led *ledger.Ledger) {
	g.BoostBonus = false
	var grant int64
	switch {
	case g.LastBonus == "":
		grant = rules.FirstBonus
	case bonusDue(g.LastBonus, now, rules.BonusInterval):
		grant = rules.DailyBonus
		g.BoostBonus = true
	default:
		return
	}
	stamp := now.UTC().Format(time.RFC3339)
	g.LastBonus = stamp
	g.NumBoosts += grant
	led.SetPlayer(ledger.FieldLastBonus, stamp)
	led.AddPlayer(ledger.FieldBoostTokens, grant)
}

// bonusDue treats an unreadable timestamp as expired.
func bonusDue(last string, now time.Time, interval time.Duration) bool {
	at, err := time.Parse(time.RFC3339, last)
	if err != nil {
		return true
	}
	return now.Sub(at) >= interval
}

// Roll banks the held dice and rolls the rest. useExtra spends a boost to
// roll all six dice instead.
func (g *GameState) Roll(hold []int, useExtra bool, rules Rules, r Roller) (*ledger.Ledger, error) {
	return g.apply(func(s *GameState, led *ledger.Ledger) (string, error) {
		switch {
		case s.GameOver:
			return "", ErrGameOver
		case s.Turn.Unresolved():
			return "", ErrFarkleUnresolved
		case s.TurnBet == 0:
			return "", ErrNoActiveWager
		}
		if s.Turn.Ended {
			// a LONG game goes from one turn's end straight into the next roll
			s.Turn = NewTurn()
		}
		if err := s.Turn.HoldAndBank(hold, false); err != nil {
			return "", err
		}

		var msg string
		switch {
		case s.GameMode == ModeTutorial:
			if s.TutorialStep < 1 || s.TutorialStep > len(rules.Tutorial) {
				return "", ErrTutorialComplete
			}
			if err := s.Turn.RollScripted(rules.Tutorial[s.TutorialStep-1]); err != nil {
				return "", err
			}
			s.TutorialStep++
			msg = "tutorial progress"
		case useExtra && s.Turn.DiceRolled < scoring.Sides:
			if s.HasExtra || s.Turn.HasExtra {
				return "", ErrPowerUpUsed
			}
			if s.NumBoosts <= 0 {
				return "", ErrNoTokens
			}
			s.NumBoosts--
			led.AddPlayer(ledger.FieldBoostTokens, -1)
			if err := s.Turn.ExtraRoll(r); err != nil {
				return "", err
			}
			msg = "extra roll"
		default:
			msg = fmt.Sprintf("rolling %d dice", s.Turn.DiceRolled)
			if err := s.Turn.Roll(r, s.Bias(rules.Bias)); err != nil {
				return "", err
			}
		}
		s.liftTurnFlags()
		return msg, nil
	})
}

func (g *GameState) liftTurnFlags() {
	g.HasExtra = g.HasExtra || g.Turn.HasExtra
	g.HasDoubled = g.HasDoubled || g.Turn.HasDoubled
	g.HasUndone = g.HasUndone || g.Turn.HasUndone
}

// Bias derives the roll skew from the player's lifetime payout ratio.
// Values above 1 make ones more likely.
func (g *GameState) Bias(b BiasRules) float64 {
	switch {
	case g.NumTurns > b.MinTurns && g.AmountEarned > b.MinEarned:
		ratio := float64(g.AmountBet) / float64(g.AmountEarned) * b.Target
		return min(max(ratio, b.Min), b.Max)
	case g.AmountEarned == 0:
		return b.Newcomer
	default:
		return b.Neutral
	}
}

// EndTurn banks the held dice, optionally doubles the turn and settles the
// turn or the game.
func (g *GameState) EndTurn(hold []int, useDouble bool, rules Rules) (*ledger.Ledger, error) {
	return g.apply(func(s *GameState, led *ledger.Ledger) (string, error) {
		if s.GameOver {
			return "", ErrGameOver
		}
		if s.Turn.Ended {
			return "", ErrTurnEnded
		}
		if s.Turn.Farkle {
			hold = nil
		}
		if err := s.Turn.HoldAndBank(hold, true); err != nil {
			return "", err
		}
		if s.farkleStreak(rules.FarkleStreak) {
			s.Turn.Points = rules.FarklePenalty
		}

		if useDouble {
			if s.HasDoubled || s.Turn.HasDoubled {
				return "", ErrPowerUpUsed
			}
			if s.NumBoosts <= 0 {
				return "", ErrNoTokens
			}
			if s.Turn.Points > 0 {
				s.NumBoosts--
				led.AddPlayer(ledger.FieldBoostTokens, -1)
				if err := s.Turn.Double(); err != nil {
					return "", err
				}
				s.HasDoubled = true
			}
		}

		s.Turn.Ended = true
		s.Turns = append(s.Turns, s.Turn.clone())

		msg := "turn over"
		if s.Turn.Points >= rules.JackpotThreshold {
			led.AddGame(ledger.FieldJackpot, rules.JackpotReset-s.Jackpot)
			led.AddPlayer(ledger.FieldCredits, s.Jackpot)
			s.Balance += s.Jackpot
			s.Jackpot = rules.JackpotReset
			msg = "jackpot"
		}

		var earned int64
		if s.GameMode == ModeLong {
			crossed := rules.levelsCrossed(s.GameScore(), s.Goal)
			s.Won = int64(crossed) * s.TurnBet
			s.Goal += crossed
			s.WonGame += s.Won
			s.Balance += s.Won
			s.GameOver = len(s.Turns) >= rules.MaxLongTurns
			if s.GameOver {
				earned = int64(s.Goal) * s.TurnBet
			}
		} else {
			if s.GameMode != ModeTutorial {
				earned = floorDiv(int64(s.Turn.UnboostedPoints)*s.TurnBet, rules.PayoutDivisor)
			}
			s.Won = floorDiv(int64(s.Turn.Points)*s.TurnBet, rules.PayoutDivisor)
			s.WonGame = s.Won
			s.Balance += s.Won
			s.GameOver = true
		}

		if s.GameOver {
			led.AddPlayer(ledger.FieldCredits, s.WonGame)
			led.AddPlayer(ledger.FieldAmountWon, earned)
			s.AmountEarned += earned
			s.TurnBet = 0
			if msg == "turn over" {
				msg = "game over"
			}
		}
		return msg, nil
	})
}

// farkleStreak reports whether the current turn and the n-1 turns before it
// all ended on unresolved, pointless farkles.
func (g *GameState) farkleStreak(n int) bool {
	if n <= 0 || !g.Turn.Farkle || g.Turn.Unfarkled || len(g.Turns) < n-1 {
		return false
	}
	for _, t := range g.Turns[len(g.Turns)-(n-1):] {
		if !t.Farkle || t.Unfarkled || t.Points != 0 {
			return false
		}
	}
	return true
}

// Unfarkle undoes the current farkle with a boost. The tutorial undo is free.
func (g *GameState) Unfarkle(rules Rules) (*ledger.Ledger, error) {
	return g.apply(func(s *GameState, led *ledger.Ledger) (string, error) {
		if s.GameOver {
			return "", ErrGameOver
		}
		if !s.Turn.Rolled || !s.Turn.Farkle {
			return "", ErrNotFarkled
		}
		if s.GameMode != ModeTutorial {
			if s.HasUndone {
				return "", ErrPowerUpUsed
			}
			if s.NumBoosts <= 0 {
				return "", ErrNoTokens
			}
			s.NumBoosts--
			led.AddPlayer(ledger.FieldBoostTokens, -1)
		}
		if err := s.Turn.Undo(); err != nil {
			return "", err
		}
		s.liftTurnFlags()
		return "farkle undone", nil
	})
}

// BuyBoosts exchanges gems for boost tokens.
func (g *GameState) BuyBoosts(gems int64, cat pricing.Catalog) (*ledger.Ledger, error) {
	return g.apply(func(s *GameState, led *ledger.Ledger) (string, error) {
		if gems <= 0 {
			return "", ErrInvalidAmount
		}
		if s.NumGems < gems {
			return "", ErrNoGems
		}
		plan := pricing.Exchange(cat, int(gems))
		if plan.TotalTokens == 0 {
			return "", ErrInvalidAmount
		}
		spent, tokens := int64(plan.TotalGems), int64(plan.TotalTokens)
		s.NumGems -= spent
		s.NumBoosts += tokens
		led.AddPlayer(ledger.FieldGems, -spent)
		led.AddPlayer(ledger.FieldBoostTokens, tokens)
		return fmt.Sprintf("bought %d boosts", tokens), nil
	})
}

func floorDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
