// Package service runs one game lifecycle call end to end: load the session,
// refresh the economy mirrors, apply the operation, commit the snapshot with
// its ledger and publish the outcome.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/farkle-backend/internal/dice"
	apperrors "github.com/xtding233/farkle-backend/internal/errors"
	"github.com/xtding233/farkle-backend/internal/events"
	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/ledger"
	"github.com/xtding233/farkle-backend/internal/pricing"
	"github.com/xtding233/farkle-backend/internal/rules"
	"github.com/xtding233/farkle-backend/internal/storage"
)

// Service is safe for concurrent use; concurrent calls on one session are
// serialized by the store's version check.
type Service struct {
	store  storage.Store
	rules  rules.Resolver
	events events.Publisher
	roller farkle.Roller
	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option customizes a Service.
type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.events = p } }
func WithRoller(r farkle.Roller) Option        { return func(s *Service) { s.roller = r } }
func WithClock(now func() time.Time) Option    { return func(s *Service) { s.now = now } }
func WithIDs(newID func() string) Option       { return func(s *Service) { s.newID = newID } }
func WithLogger(l *log.Logger) Option          { return func(s *Service) { s.logger = l } }

// New builds a service over store and resolver.
func New(store storage.Store, resolver rules.Resolver, opts ...Option) *Service {
	s := &Service{
		store:  store,
		rules:  resolver,
		events: events.Nop{},
		roller: dice.NewRoller(dice.DefaultRNG()),
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.New(os.Stderr, "[FARKLE] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of a lifecycle call. State is always set once the
// session could be loaded, including on domain failures.
type Result struct {
	OK      bool
	Message string
	State   *farkle.GameState
	Ledger  *ledger.Ledger
}

type StartRequest struct {
	SessionID string
	PlayerID  string
	Bet       int64  // 0 selects the mode's default bet
	Mode      string // empty selects NORMAL
}

type RollRequest struct {
	SessionID string
	PlayerID  string
	Hold      []int
	Extra     bool
}

type StopRequest struct {
	SessionID string
	PlayerID  string
	Hold      []int
	Double    bool
}

type UnfarkleRequest struct {
	SessionID string
	PlayerID  string
}

type BuyBoostsRequest struct {
	SessionID string
	PlayerID  string
	Gems      int64
}

// Start begins a new game, or the next turn of a LONG game. An empty session
// id opens a new session.
func (s *Service) Start(ctx context.Context, req StartRequest) (Result, error) {
	mode, err := farkle.ParseMode(req.Mode)
	if err != nil {
		return Result{Message: err.Error()}, err
	}
	if req.SessionID == "" {
		req.SessionID = s.newID()
	}
	return s.run(ctx, "start", req.SessionID, req.PlayerID, func(g *farkle.GameState, now time.Time) (*ledger.Ledger, error) {
		if !g.GameOver {
			mode = g.GameMode
		}
		set, err := s.settings(mode)
		if err != nil {
			return nil, err
		}
		bet := req.Bet
		if bet == 0 {
			bet = set.DefaultBet
		}
		return g.StartTurn(bet, mode, set.Rules, now)
	})
}

// Roll banks the held dice and rolls again.
func (s *Service) Roll(ctx context.Context, req RollRequest) (Result, error) {
	return s.run(ctx, "roll", req.SessionID, req.PlayerID, func(g *farkle.GameState, _ time.Time) (*ledger.Ledger, error) {
		set, err := s.settings(g.GameMode)
		if err != nil {
			return nil, err
		}
		return g.Roll(req.Hold, req.Extra, set.Rules, s.roller)
	})
}

// Stop ends the current turn.
func (s *Service) Stop(ctx context.Context, req StopRequest) (Result, error) {
	return s.run(ctx, "stop", req.SessionID, req.PlayerID, func(g *farkle.GameState, _ time.Time) (*ledger.Ledger, error) {
		set, err := s.settings(g.GameMode)
		if err != nil {
			return nil, err
		}
		return g.EndTurn(req.Hold, req.Double, set.Rules)
	})
}

// Unfarkle undoes the current farkle.
func (s *Service) Unfarkle(ctx context.Context, req UnfarkleRequest) (Result, error) {
	return s.run(ctx, "unfarkle", req.SessionID, req.PlayerID, func(g *farkle.GameState, _ time.Time) (*ledger.Ledger, error) {
		set, err := s.settings(g.GameMode)
		if err != nil {
			return nil, err
		}
		return g.Unfarkle(set.Rules)
	})
}

// BuyBoosts exchanges gems for boost tokens.
func (s *Service) BuyBoosts(ctx context.Context, req BuyBoostsRequest) (Result, error) {
	return s.run(ctx, "boosts", req.SessionID, req.PlayerID, func(g *farkle.GameState, _ time.Time) (*ledger.Ledger, error) {
		set, err := s.settings(g.GameMode)
		if err != nil {
			return nil, err
		}
		return g.BuyBoosts(req.Gems, set.Catalog)
	})
}

// Session returns the stored session with fresh economy mirrors.
func (s *Service) Session(ctx context.Context, sessionID, playerID string) (*farkle.GameState, error) {
	g, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeUnknownSession, "unknown session",
			map[string]string{"session_id": sessionID})
	}
	if err := s.bind(ctx, g, playerID); err != nil {
		return nil, err
	}
	return g, nil
}

// Quote prices the cheapest gem purchase yielding at least tokens boosts.
func (s *Service) Quote(tokens int) (pricing.Plan, error) {
	if tokens <= 0 {
		return pricing.Plan{}, farkle.ErrInvalidAmount
	}
	set, err := s.settings(farkle.ModeNormal)
	if err != nil {
		return pricing.Plan{}, err
	}
	return pricing.MinGemsAtLeastTokens(set.Catalog, tokens), nil
}

func (s *Service) settings(mode farkle.Mode) (rules.Settings, error) {
	set, err := s.rules.Resolve(mode)
	if err != nil {
		return rules.Settings{}, fmt.Errorf("resolve rules: %w", err)
	}
	return set, nil
}

type operation func(g *farkle.GameState, now time.Time) (*ledger.Ledger, error)

func (s *Service) run(ctx context.Context, kind, sessionID, playerID string, op operation) (Result, error) {
	if sessionID == "" {
		err := apperrors.New(apperrors.CodeUnknownSession, "session id is required")
		return Result{Message: err.Message}, err
	}
	now := s.now()

	g, version, err := s.load(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if g == nil {
		// an unknown session starts over empty
		g = farkle.NewGame(sessionID, playerID)
	}
	if err := s.bind(ctx, g, playerID); err != nil {
		return Result{Message: err.Error(), State: g}, err
	}

	led, err := op(g, now)
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			s.logger.Printf("%s session=%s: %v", kind, sessionID, err)
		}
		return Result{Message: err.Error(), State: g}, err
	}

	g.Version = version + 1
	data, err := farkle.Encode(g)
	if err != nil {
		return Result{}, fmt.Errorf("encode session: %w", err)
	}
	next, err := s.store.Commit(ctx, storage.CommitRequest{
		Session:         storage.SessionRecord{ID: g.UniqID, PlayerID: g.PlayerID, Data: data},
		ExpectedVersion: version,
		Ledger:          led,
		Now:             now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Result{}, apperrors.Wrap(apperrors.CodeConflict, "session was modified concurrently, retry", err)
		}
		s.logger.Printf("%s session=%s: commit: %v", kind, sessionID, err)
		return Result{}, fmt.Errorf("commit session: %w", err)
	}
	g.Version = next

	s.logger.Printf("%s session=%s player=%s v=%d: %s", kind, g.UniqID, g.PlayerID, next, g.Message)
	if err := s.events.Publish(ctx, eventFor(kind, g, now)); err != nil {
		s.logger.Printf("%s session=%s: publish: %v", kind, sessionID, err)
	}
	return Result{OK: true, Message: g.Message, State: g, Ledger: led}, nil
}

// load returns a nil game when the session does not exist.
func (s *Service) load(ctx context.Context, sessionID string) (*farkle.GameState, int64, error) {
	rec, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load session: %w", err)
	}
	g, err := farkle.Decode(rec.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	g.Version = rec.Version
	g.Message = ""
	return g, rec.Version, nil
}

// bind checks ownership and refreshes the player and game mirrors.
func (s *Service) bind(ctx context.Context, g *farkle.GameState, playerID string) error {
	switch {
	case playerID == "" && g.PlayerID == "":
		return apperrors.New(apperrors.CodeWrongPlayer, "player id is required")
	case playerID == "":
		playerID = g.PlayerID
	case g.PlayerID != "" && g.PlayerID != playerID:
		return apperrors.WithMetadata(apperrors.CodeWrongPlayer, "session belongs to another player",
			map[string]string{"session_id": g.UniqID})
	}

	p, err := s.store.EnsurePlayer(ctx, playerID, s.now())
	if err != nil {
		return fmt.Errorf("load player: %w", err)
	}
	gr, err := s.store.GetGame(ctx)
	if err != nil {
		return fmt.Errorf("load game: %w", err)
	}
	g.SyncPlayer(farkle.PlayerView{
		ID:          p.ID,
		Credits:     p.Credits,
		Gems:        p.Gems,
		BoostTokens: p.BoostTokens,
		AmountBet:   p.AmountBet,
		AmountWon:   p.AmountWon,
		GamesPlayed: p.GamesPlayed,
		LastBonus:   p.LastBonus,
	})
	g.SyncGame(gr.Jackpot)
	return nil
}

func eventFor(kind string, g *farkle.GameState, now time.Time) events.Event {
	return events.Event{
		Type:      kind,
		SessionID: g.UniqID,
		PlayerID:  g.PlayerID,
		Mode:      string(g.GameMode),
		Message:   g.Message,
		Points:    g.Turn.Points,
		Won:       g.Won,
		WonGame:   g.WonGame,
		Jackpot:   g.Jackpot,
		GameOver:  g.GameOver,
		Version:   g.Version,
		At:        now,
	}
}
