// Package memory provides an in-process storage implementation for tests and
// local runs.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xtding233/farkle-backend/internal/storage"
)

// Store keeps every record in maps guarded by one mutex, so a Commit is
// atomic with respect to every other call.
type Store struct {
	mu       sync.Mutex
	sessions map[string]storage.SessionRecord
	players  map[string]storage.PlayerRecord
	game     storage.GameRecord
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store with the default jackpot.
func New() *Store {
	return &Store{
		sessions: make(map[string]storage.SessionRecord),
		players:  make(map[string]storage.PlayerRecord),
		game:     storage.GameRecord{Jackpot: storage.DefaultJackpot},
	}
}

func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[strings.TrimSpace(id)]
	if !ok {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return rec, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (storage.PlayerRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlayerRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[strings.TrimSpace(id)]
	if !ok {
		return storage.PlayerRecord{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) EnsurePlayer(ctx context.Context, id string, now time.Time) (storage.PlayerRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlayerRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.PlayerRecord{}, fmt.Errorf("player id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		return p, nil
	}
	p := storage.PlayerRecord{
		ID:        id,
		Credits:   storage.DefaultCredits,
		Gems:      storage.DefaultGems,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	s.players[id] = p
	return p, nil
}

func (s *Store) GetGame(ctx context.Context) (storage.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.GameRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game, nil
}

func (s *Store) Commit(ctx context.Context, req storage.CommitRequest) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sess := req.Session
	if strings.TrimSpace(sess.ID) == "" || strings.TrimSpace(sess.PlayerID) == "" {
		return 0, fmt.Errorf("session id and player id are required")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.sessions[sess.ID]
	if (req.ExpectedVersion == 0 && exists) || (req.ExpectedVersion != 0 && (!exists || cur.Version != req.ExpectedVersion)) {
		return 0, storage.ErrConflict
	}

	// stage every change before touching the maps
	player, game := storage.PlayerRecord{}, s.game
	if req.Ledger != nil {
		if len(req.Ledger.Player) > 0 {
			p, ok := s.players[sess.PlayerID]
			if !ok {
				return 0, fmt.Errorf("apply player ledger: %w", storage.ErrNotFound)
			}
			if err := storage.ApplyPlayer(&p, req.Ledger.Player); err != nil {
				return 0, err
			}
			p.UpdatedAt = now.UTC()
			player = p
		}
		if err := storage.ApplyGame(&game, req.Ledger.Game); err != nil {
			return 0, err
		}
	}

	sess.Version = req.ExpectedVersion + 1
	sess.Data = append([]byte(nil), sess.Data...)
	sess.UpdatedAt = now.UTC()
	s.sessions[sess.ID] = sess
	if player.ID != "" {
		s.players[player.ID] = player
	}
	s.game = game
	return sess.Version, nil
}

func (s *Store) Close() error { return nil }
