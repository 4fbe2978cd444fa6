// Package storage defines the persistence contracts for sessions, players and
// the game-wide aggregate.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xtding233/farkle-backend/internal/ledger"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the session changed since it was read.
	ErrConflict = errors.New("session version conflict")
)

// Defaults for newly provisioned records.
const (
	DefaultCredits int64 = 100000
	DefaultGems    int64 = 20
	DefaultJackpot int64 = 1000
)

// SessionRecord is one persisted game snapshot.
type SessionRecord struct {
	ID        string
	PlayerID  string
	Version   int64 // 0 means never saved
	Data      []byte
	UpdatedAt time.Time
}

// PlayerRecord is the player aggregate.
type PlayerRecord struct {
	ID          string
	Credits     int64
	Gems        int64
	BoostTokens int64
	AmountBet   int64
	AmountWon   int64
	GamesPlayed int64
	LastBonus   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GameRecord is the game-wide aggregate.
type GameRecord struct {
	Jackpot int64
}

// CommitRequest saves a session and flushes its ledger atomically. The save
// only succeeds when the stored version still equals ExpectedVersion.
type CommitRequest struct {
	Session         SessionRecord
	ExpectedVersion int64
	Ledger          *ledger.Ledger
	Now             time.Time
}

// Store is the persistence collaborator of the game service.
type Store interface {
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	GetPlayer(ctx context.Context, id string) (PlayerRecord, error)
	// EnsurePlayer returns the player, creating it with defaults when missing.
	EnsurePlayer(ctx context.Context, id string, now time.Time) (PlayerRecord, error)
	GetGame(ctx context.Context) (GameRecord, error)
	// Commit returns the new session version.
	Commit(ctx context.Context, req CommitRequest) (int64, error)
	Close() error
}

// PlayerColumns maps ledger fields to player columns.
var PlayerColumns = map[string]string{
	ledger.FieldCredits:     "credits",
	ledger.FieldGems:        "gems",
	ledger.FieldBoostTokens: "boost_tokens",
	ledger.FieldAmountBet:   "amount_bet",
	ledger.FieldAmountWon:   "amount_won",
	ledger.FieldGamesPlayed: "games_played",
	ledger.FieldLastBonus:   "last_bonus",
}

// GameColumns maps ledger fields to game columns.
var GameColumns = map[string]string{
	ledger.FieldJackpot: "jackpot",
}

// ApplyPlayer folds player ledger entries into p.
func ApplyPlayer(p *PlayerRecord, e ledger.Entries) error {
	for _, field := range e.Fields() {
		adj := e[field]
		if field == ledger.FieldLastBonus {
			if !adj.Overwrite {
				return fmt.Errorf("player field %q takes a value, not a delta", field)
			}
			p.LastBonus = adj.Value
			continue
		}
		if adj.Overwrite {
			return fmt.Errorf("player field %q takes a delta, not a value", field)
		}
		switch field {
		case ledger.FieldCredits:
			p.Credits += adj.Delta
		case ledger.FieldGems:
			p.Gems += adj.Delta
		case ledger.FieldBoostTokens:
			p.BoostTokens += adj.Delta
		case ledger.FieldAmountBet:
			p.AmountBet += adj.Delta
		case ledger.FieldAmountWon:
			p.AmountWon += adj.Delta
		case ledger.FieldGamesPlayed:
			p.GamesPlayed += adj.Delta
		default:
			return fmt.Errorf("unknown player field %q", field)
		}
	}
	return nil
}

// ApplyGame folds game ledger entries into g.
func ApplyGame(g *GameRecord, e ledger.Entries) error {
	for _, field := range e.Fields() {
		adj := e[field]
		if field != ledger.FieldJackpot || adj.Overwrite {
			return fmt.Errorf("unsupported game adjustment %q", field)
		}
		g.Jackpot += adj.Delta
	}
	return nil
}
