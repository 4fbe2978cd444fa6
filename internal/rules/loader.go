package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/farkle-backend/internal/farkle"
)

// Paths helper for default/mode files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/farkle/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "rules", "default.yaml")
}

func (p Paths) ModePath(mode farkle.Mode) string {
	return filepath.Join(p.BaseDir, "rules", strings.ToLower(string(mode))+".yaml")
}

// All lists every file the loader may read.
func (p Paths) All() []string {
	return []string{
		p.DefaultPath(),
		p.ModePath(farkle.ModeNormal),
		p.ModePath(farkle.ModeLong),
		p.ModePath(farkle.ModeTutorial),
	}
}

// Loader reads YAML configs and merges default → mode.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[farkle.Mode]RawConfig
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[farkle.Mode]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → mode. The default file is required;
// mode files are optional.
func (l *Loader) LoadMerged(mode farkle.Mode) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[mode]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath(), true)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	modeCfg, err := readYAML(l.paths.ModePath(mode), false)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read %s: %w", mode, err)
	}
	merged := mergeRaw(defCfg, modeCfg)

	l.mu.Lock()
	l.cache[mode] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[farkle.Mode]RawConfig)
}

func readYAML(path string, required bool) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Slices in 'b' replace those of 'a' wholesale.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	if b.Bias != nil {
		c := BiasConfig{}
		if out.Bias != nil {
			c = *out.Bias
		}
		setPtr(&c.MinTurns, b.Bias.MinTurns)
		setPtr(&c.MinEarned, b.Bias.MinEarned)
		setPtr(&c.Target, b.Bias.Target)
		setPtr(&c.Min, b.Bias.Min)
		setPtr(&c.Max, b.Bias.Max)
		setPtr(&c.Newcomer, b.Bias.Newcomer)
		setPtr(&c.Neutral, b.Bias.Neutral)
		out.Bias = &c
	}
	if b.Wager != nil {
		c := WagerConfig{}
		if out.Wager != nil {
			c = *out.Wager
		}
		setPtr(&c.DefaultBet, b.Wager.DefaultBet)
		setPtr(&c.PayoutDivisor, b.Wager.PayoutDivisor)
		setPtr(&c.JackpotDivisor, b.Wager.JackpotDivisor)
		setPtr(&c.Replenish, b.Wager.Replenish)
		out.Wager = &c
	}
	if b.Jackpot != nil {
		c := JackpotConfig{}
		if out.Jackpot != nil {
			c = *out.Jackpot
		}
		setPtr(&c.Threshold, b.Jackpot.Threshold)
		setPtr(&c.Reset, b.Jackpot.Reset)
		out.Jackpot = &c
	}
	if b.Bonus != nil {
		c := BonusConfig{}
		if out.Bonus != nil {
			c = *out.Bonus
		}
		setPtr(&c.First, b.Bonus.First)
		setPtr(&c.Daily, b.Bonus.Daily)
		if b.Bonus.Interval != "" {
			c.Interval = b.Bonus.Interval
		}
		out.Bonus = &c
	}
	if b.Long != nil {
		c := LongConfig{}
		if out.Long != nil {
			c = *out.Long
		}
		setPtr(&c.MaxTurns, b.Long.MaxTurns)
		setPtr(&c.Step, b.Long.Step)
		if len(b.Long.Goals) > 0 {
			c.Goals = append([]int(nil), b.Long.Goals...)
		}
		out.Long = &c
	}
	if b.Streak != nil {
		c := StreakConfig{}
		if out.Streak != nil {
			c = *out.Streak
		}
		setPtr(&c.Length, b.Streak.Length)
		setPtr(&c.Penalty, b.Streak.Penalty)
		out.Streak = &c
	}
	if len(b.Tutorial) > 0 {
		out.Tutorial = append([]TutorialStep(nil), b.Tutorial...)
	}
	if len(b.Boosts) > 0 {
		out.Boosts = append([]PackConfig(nil), b.Boosts...)
	}
	return out
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
