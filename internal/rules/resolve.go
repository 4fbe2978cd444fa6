// resolve.go
package rules

import (
	"fmt"
	"time"

	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/pricing"
)

// DefaultBet is the wager used when a start request names none.
const DefaultBet int64 = 500

// Resolver yields the settings in force for a mode.
type Resolver interface {
	Resolve(mode farkle.Mode) (Settings, error)
}

// FileResolver resolves settings from YAML files through a Loader.
type FileResolver struct {
	Loader *Loader
}

func (r FileResolver) Resolve(mode farkle.Mode) (Settings, error) {
	raw, err := r.Loader.LoadMerged(mode)
	if err != nil {
		return Settings{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Settings{}, fmt.Errorf("rules for %s: %w", mode, err)
	}
	return Normalize(mode, raw), nil
}

// Static resolves every mode to the built-in defaults.
type Static struct{}

func (Static) Resolve(mode farkle.Mode) (Settings, error) {
	return Normalize(mode, RawConfig{}), nil
}

// Normalize applies a validated RawConfig on top of the built-in defaults.
func Normalize(mode farkle.Mode, raw RawConfig) Settings {
	s := Settings{
		Mode:       mode,
		Rules:      farkle.DefaultRules(),
		DefaultBet: DefaultBet,
		Catalog:    pricing.DefaultCatalog(),
		Version:    raw.Version,
	}
	r := &s.Rules

	if b := raw.Bias; b != nil {
		setVal(&r.Bias.MinTurns, b.MinTurns)
		setVal(&r.Bias.MinEarned, b.MinEarned)
		setVal(&r.Bias.Target, b.Target)
		setVal(&r.Bias.Min, b.Min)
		setVal(&r.Bias.Max, b.Max)
		setVal(&r.Bias.Newcomer, b.Newcomer)
		setVal(&r.Bias.Neutral, b.Neutral)
	}
	if w := raw.Wager; w != nil {
		setVal(&s.DefaultBet, w.DefaultBet)
		setVal(&r.PayoutDivisor, w.PayoutDivisor)
		setVal(&r.JackpotDivisor, w.JackpotDivisor)
		setVal(&r.Replenish, w.Replenish)
	}
	if j := raw.Jackpot; j != nil {
		setVal(&r.JackpotThreshold, j.Threshold)
		setVal(&r.JackpotReset, j.Reset)
	}
	if b := raw.Bonus; b != nil {
		setVal(&r.FirstBonus, b.First)
		setVal(&r.DailyBonus, b.Daily)
		if d, err := time.ParseDuration(b.Interval); err == nil && d > 0 {
			r.BonusInterval = d
		}
	}
	if l := raw.Long; l != nil {
		setVal(&r.MaxLongTurns, l.MaxTurns)
		setVal(&r.GoalStep, l.Step)
		if len(l.Goals) > 0 {
			r.GoalLadder = append([]int(nil), l.Goals...)
		}
	}
	if st := raw.Streak; st != nil {
		setVal(&r.FarkleStreak, st.Length)
		setVal(&r.FarklePenalty, st.Penalty)
	}
	if len(raw.Tutorial) > 0 {
		r.Tutorial = make([]farkle.TutorialRoll, len(raw.Tutorial))
		for i, step := range raw.Tutorial {
			r.Tutorial[i] = farkle.TutorialRoll{Dice: append([]int(nil), step.Dice...), Extra: step.Extra}
		}
	}
	if len(raw.Boosts) > 0 {
		s.Catalog.Packs = make([]pricing.Pack, len(raw.Boosts))
		for i, p := range raw.Boosts {
			s.Catalog.Packs[i] = pricing.Pack{ID: p.ID, Name: p.Name, Gems: p.Gems, Tokens: p.Tokens}
		}
	}
	return s
}

func setVal[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
