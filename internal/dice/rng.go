package dice

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform draws in [0, 1). Face turns one draw into one
// die, so a source never needs to know about faces or bias.
type RandomSource interface {
	Float64() float64
}

// cryptoSource backs live games: a player cannot predict the next roll from
// the ones already seen.
type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits fill a float64 mantissa exactly
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) * 0x1p-53
}

// DefaultRNG returns the source used for real wagers.
func DefaultRNG() RandomSource { return cryptoSource{} }

// seededSource replays the same dice for the same seed. One Roller serves
// every session, so draws are serialized.
type seededSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRNG returns a reproducible source for simulations and tests. It is
// safe for concurrent use.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
