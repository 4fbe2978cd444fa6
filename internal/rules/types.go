// types.go
package rules

import (
	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/pricing"
)

// Raw config loaded from YAML. Nil pointers mean "not set in this layer".
type RawConfig struct {
	Version  string         `yaml:"version"`
	Bias     *BiasConfig    `yaml:"bias,omitempty"`
	Wager    *WagerConfig   `yaml:"wager,omitempty"`
	Jackpot  *JackpotConfig `yaml:"jackpot,omitempty"`
	Bonus    *BonusConfig   `yaml:"bonus,omitempty"`
	Long     *LongConfig    `yaml:"long,omitempty"`
	Streak   *StreakConfig  `yaml:"farkle_streak,omitempty"`
	Tutorial []TutorialStep `yaml:"tutorial,omitempty"`
	Boosts   []PackConfig   `yaml:"boost_packs,omitempty"`
	Notes    string         `yaml:"notes,omitempty"`
}

type BiasConfig struct {
	MinTurns  *int64   `yaml:"min_turns"`
	MinEarned *int64   `yaml:"min_earned"`
	Target    *float64 `yaml:"target"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	Newcomer  *float64 `yaml:"newcomer"`
	Neutral   *float64 `yaml:"neutral"`
}

type WagerConfig struct {
	DefaultBet     *int64 `yaml:"default_bet"`
	PayoutDivisor  *int64 `yaml:"payout_divisor"`
	JackpotDivisor *int64 `yaml:"jackpot_divisor"`
	Replenish      *int64 `yaml:"replenish"`
}

type JackpotConfig struct {
	Threshold *int   `yaml:"threshold"`
	Reset     *int64 `yaml:"reset"`
}

type BonusConfig struct {
	First    *int64 `yaml:"first"`
	Daily    *int64 `yaml:"daily"`
	Interval string `yaml:"interval,omitempty"` // time.ParseDuration syntax, e.g. "24h"
}

type LongConfig struct {
	MaxTurns *int  `yaml:"max_turns"`
	Goals    []int `yaml:"goals,omitempty"`
	Step     *int  `yaml:"step"`
}

type StreakConfig struct {
	Length  *int `yaml:"length"`
	Penalty *int `yaml:"penalty"`
}

type TutorialStep struct {
	Dice  []int `yaml:"dice"`
	Extra bool  `yaml:"extra,omitempty"`
}

type PackConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Gems   int    `yaml:"gems"`
	Tokens int    `yaml:"tokens"`
}

// Settings are the normalized parameters for one game mode.
type Settings struct {
	Mode       farkle.Mode
	Rules      farkle.Rules
	DefaultBet int64
	Catalog    pricing.Catalog
	Version    string // effective config version for tracing
}
