package rules

import (
	"fmt"
	"strings"
	"time"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if b := cfg.Bias; b != nil {
		for name, v := range map[string]*float64{
			"bias.target":   b.Target,
			"bias.min":      b.Min,
			"bias.max":      b.Max,
			"bias.newcomer": b.Newcomer,
			"bias.neutral":  b.Neutral,
		} {
			if v != nil && (*v <= 0 || *v >= 6) {
				errs = append(errs, name+" must be in (0,6)")
			}
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			errs = append(errs, "bias.min must be <= bias.max")
		}
		if b.MinTurns != nil && *b.MinTurns < 0 {
			errs = append(errs, "bias.min_turns must be >= 0")
		}
		if b.MinEarned != nil && *b.MinEarned < 0 {
			errs = append(errs, "bias.min_earned must be >= 0")
		}
	}

	if w := cfg.Wager; w != nil {
		if w.DefaultBet != nil && *w.DefaultBet <= 0 {
			errs = append(errs, "wager.default_bet must be >= 1")
		}
		if w.PayoutDivisor != nil && *w.PayoutDivisor <= 0 {
			errs = append(errs, "wager.payout_divisor must be >= 1")
		}
		if w.JackpotDivisor != nil && *w.JackpotDivisor <= 0 {
			errs = append(errs, "wager.jackpot_divisor must be >= 1")
		}
		if w.Replenish != nil && *w.Replenish < 0 {
			errs = append(errs, "wager.replenish must be >= 0")
		}
	}

	if j := cfg.Jackpot; j != nil {
		if j.Threshold != nil && *j.Threshold <= 0 {
			errs = append(errs, "jackpot.threshold must be >= 1")
		}
		if j.Reset != nil && *j.Reset < 0 {
			errs = append(errs, "jackpot.reset must be >= 0")
		}
	}

	if b := cfg.Bonus; b != nil {
		if b.First != nil && *b.First < 0 {
			errs = append(errs, "bonus.first must be >= 0")
		}
		if b.Daily != nil && *b.Daily < 0 {
			errs = append(errs, "bonus.daily must be >= 0")
		}
		if b.Interval != "" {
			if d, err := time.ParseDuration(b.Interval); err != nil || d <= 0 {
				errs = append(errs, "bonus.interval must be a positive duration")
			}
		}
	}

	if l := cfg.Long; l != nil {
		if l.MaxTurns != nil && *l.MaxTurns <= 0 {
			errs = append(errs, "long.max_turns must be >= 1")
		}
		if l.Step != nil && *l.Step <= 0 {
			errs = append(errs, "long.step must be >= 1")
		}
		for i, g := range l.Goals {
			if g <= 0 || (i > 0 && g <= l.Goals[i-1]) {
				errs = append(errs, fmt.Sprintf("long.goals[%d] must be positive and increasing", i))
			}
		}
	}

	if s := cfg.Streak; s != nil {
		if s.Length != nil && *s.Length < 0 {
			errs = append(errs, "farkle_streak.length must be >= 0 (0 disables the penalty)")
		}
		if s.Penalty != nil && *s.Penalty > 0 {
			errs = append(errs, "farkle_streak.penalty must be <= 0")
		}
	}

	for i, step := range cfg.Tutorial {
		if len(step.Dice) == 0 || len(step.Dice) > 6 {
			errs = append(errs, fmt.Sprintf("tutorial[%d].dice must hold 1..6 faces", i))
		}
		for _, f := range step.Dice {
			if f < 1 || f > 6 {
				errs = append(errs, fmt.Sprintf("tutorial[%d].dice faces must be in [1,6]", i))
				break
			}
		}
	}

	for i, p := range cfg.Boosts {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("boost_packs[%d].id is required", i))
		}
		if p.Gems <= 0 || p.Tokens <= 0 {
			errs = append(errs, fmt.Sprintf("boost_packs[%d] needs positive gems and tokens", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
