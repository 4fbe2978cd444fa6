package service

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	apperrors "github.com/xtding233/farkle-backend/internal/errors"
	"github.com/xtding233/farkle-backend/internal/events"
	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/rules"
	"github.com/xtding233/farkle-backend/internal/storage"
	"github.com/xtding233/farkle-backend/internal/storage/memory"
)

var t0 = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type scriptRoller struct {
	t      *testing.T
	rolls  [][]int
	biases []float64
}

func (s *scriptRoller) Roll(n int, bias float64) []int {
	s.t.Helper()
	if len(s.rolls) == 0 {
		s.t.Fatalf("unexpected roll of %d dice", n)
	}
	out := s.rolls[0]
	s.rolls = s.rolls[1:]
	if len(out) != n {
		s.t.Fatalf("scripted roll %v has %d dice, want %d", out, len(out), n)
	}
	s.biases = append(s.biases, bias)
	return out
}

type recorder struct {
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

type conflictStore struct{ storage.Store }

func (conflictStore) Commit(context.Context, storage.CommitRequest) (int64, error) {
	return 0, storage.ErrConflict
}

func newTestService(t *testing.T, store storage.Store, rolls ...[]int) (*Service, *scriptRoller, *recorder) {
	t.Helper()
	roller := &scriptRoller{t: t, rolls: rolls}
	pub := &recorder{}
	svc := New(store, rules.Static{},
		WithRoller(roller),
		WithPublisher(pub),
		WithClock(func() time.Time { return t0 }),
		WithIDs(func() string { return "generated" }),
		WithLogger(log.New(io.Discard, "", 0)),
	)
	return svc, roller, pub
}

func TestFullNormalGame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc, roller, pub := newTestService(t, store, []int{1, 1, 1, 2, 3, 4})

	res, err := svc.Start(ctx, StartRequest{SessionID: "s1", PlayerID: "p1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !res.OK || res.Message != "new game" || res.State.TurnBet != 500 || res.State.Version != 1 {
		t.Fatalf("start result = %+v", res)
	}

	if _, err := svc.Roll(ctx, RollRequest{SessionID: "s1", PlayerID: "p1"}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if len(roller.biases) != 1 || roller.biases[0] != 3.0 {
		t.Fatalf("biases = %v, want newcomer bias", roller.biases)
	}

	res, err = svc.Stop(ctx, StopRequest{SessionID: "s1", PlayerID: "p1", Hold: []int{0, 1, 2}})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !res.State.GameOver || res.State.Won != 1000 || res.State.Version != 3 {
		t.Fatalf("stop state = %+v", res.State)
	}

	p, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.Credits != 100500 || p.AmountBet != 500 || p.AmountWon != 1000 || p.GamesPlayed != 1 || p.BoostTokens != 20 {
		t.Fatalf("player = %+v", p)
	}
	if p.LastBonus != t0.Format(time.RFC3339) {
		t.Fatalf("last bonus = %q", p.LastBonus)
	}
	gr, err := store.GetGame(ctx)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if gr.Jackpot != 1050 {
		t.Fatalf("jackpot = %d, want 1050", gr.Jackpot)
	}

	var types []string
	for _, e := range pub.events {
		types = append(types, e.Type)
	}
	if len(types) != 3 || types[0] != "start" || types[1] != "roll" || types[2] != "stop" {
		t.Fatalf("event types = %v", types)
	}
	if last := pub.events[2]; !last.GameOver || last.Won != 1000 || last.Version != 3 {
		t.Fatalf("stop event = %+v", last)
	}
}

func TestStartGeneratesSessionID(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t, memory.New())
	res, err := svc.Start(context.Background(), StartRequest{PlayerID: "p1", Bet: 100, Mode: "long"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.State.UniqID != "generated" || res.State.GameMode != farkle.ModeLong || res.State.TurnBet != 100 {
		t.Fatalf("state = %+v", res.State)
	}
}

func TestDomainFailureIsNotPersisted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc, _, pub := newTestService(t, store)

	if _, err := svc.Start(ctx, StartRequest{SessionID: "s1", PlayerID: "p1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	// stopping before the first roll banks nothing and ends the game
	if _, err := svc.Stop(ctx, StopRequest{SessionID: "s1", PlayerID: "p1"}); err != nil {
		t.Fatalf("stop: %v", err)
	}

	res, err := svc.Roll(ctx, RollRequest{SessionID: "s1", PlayerID: "p1"})
	if !errors.Is(err, farkle.ErrGameOver) {
		t.Fatalf("roll after game over err = %v, want %v", err, farkle.ErrGameOver)
	}
	if res.OK || res.Message != err.Error() || res.State == nil {
		t.Fatalf("result = %+v", res)
	}
	rec, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if rec.Version != 2 {
		t.Fatalf("version = %d, want 2", rec.Version)
	}
	if len(pub.events) != 2 {
		t.Fatalf("events = %d, want 2", len(pub.events))
	}
}

func TestWrongPlayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t, memory.New())
	if _, err := svc.Start(ctx, StartRequest{SessionID: "s1", PlayerID: "p1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := svc.Roll(ctx, RollRequest{SessionID: "s1", PlayerID: "p2"})
	if got := apperrors.CodeOf(err); got != apperrors.CodeWrongPlayer {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeWrongPlayer)
	}
	if _, err := svc.Session(ctx, "s1", "p2"); apperrors.CodeOf(err) != apperrors.CodeWrongPlayer {
		t.Fatalf("session err = %v", err)
	}
}

func TestMissingPlayerOnNewSession(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t, memory.New())
	_, err := svc.Start(context.Background(), StartRequest{SessionID: "s1"})
	if got := apperrors.CodeOf(err); got != apperrors.CodeWrongPlayer {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeWrongPlayer)
	}
}

func TestInvalidMode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc, _, _ := newTestService(t, store)
	_, err := svc.Start(ctx, StartRequest{SessionID: "s1", PlayerID: "p1", Mode: "blitz"})
	if got := apperrors.CodeOf(err); got != apperrors.CodeInvalidMode {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeInvalidMode)
	}
	if _, err := store.GetSession(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("session stored after invalid mode: %v", err)
	}
}

func TestUnfarkleSpendsBoost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc, _, _ := newTestService(t, store, []int{2, 3, 4, 6, 6, 2})

	if _, err := svc.Start(ctx, StartRequest{SessionID: "s1", PlayerID: "p1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := svc.Roll(ctx, RollRequest{SessionID: "s1", PlayerID: "p1"})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !res.State.Turn.Farkle {
		t.Fatalf("expected farkle, got %+v", res.State.Turn)
	}
	res, err = svc.Unfarkle(ctx, UnfarkleRequest{SessionID: "s1", PlayerID: "p1"})
	if err != nil {
		t.Fatalf("unfarkle: %v", err)
	}
	if res.Message != "farkle undone" || res.State.NumBoosts != 19 {
		t.Fatalf("result = %q boosts=%d", res.Message, res.State.NumBoosts)
	}
	p, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.BoostTokens != 19 {
		t.Fatalf("stored boosts = %d, want 19", p.BoostTokens)
	}
}

func TestBuyBoosts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	svc, _, _ := newTestService(t, store)

	res, err := svc.BuyBoosts(ctx, BuyBoostsRequest{SessionID: "s1", PlayerID: "p1", Gems: 17})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if res.Message != "bought 76 boosts" {
		t.Fatalf("message = %q", res.Message)
	}
	p, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.Gems != 3 || p.BoostTokens != 76 {
		t.Fatalf("player = %+v", p)
	}

	_, err = svc.BuyBoosts(ctx, BuyBoostsRequest{SessionID: "s1", PlayerID: "p1", Gems: 4})
	if !errors.Is(err, farkle.ErrNoGems) {
		t.Fatalf("err = %v, want %v", err, farkle.ErrNoGems)
	}
}

func TestCommitConflict(t *testing.T) {
	t.Parallel()
	svc, _, pub := newTestService(t, conflictStore{memory.New()})
	_, err := svc.Start(context.Background(), StartRequest{SessionID: "s1", PlayerID: "p1"})
	if got := apperrors.CodeOf(err); got != apperrors.CodeConflict {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeConflict)
	}
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("err = %v does not wrap the store conflict", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events for a failed commit", len(pub.events))
	}
}

func TestPublishFailureDoesNotFailCall(t *testing.T) {
	t.Parallel()
	svc, _, pub := newTestService(t, memory.New())
	pub.err = errors.New("broker down")
	res, err := svc.Start(context.Background(), StartRequest{SessionID: "s1", PlayerID: "p1"})
	if err != nil || !res.OK {
		t.Fatalf("start = %+v, %v", res, err)
	}
}

func TestSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t, memory.New())

	if _, err := svc.Session(ctx, "missing", "p1"); apperrors.CodeOf(err) != apperrors.CodeUnknownSession {
		t.Fatalf("missing session err = %v", err)
	}
	if _, err := svc.Start(ctx, StartRequest{SessionID: "s1", PlayerID: "p1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	g, err := svc.Session(ctx, "s1", "")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if g.PlayerID != "p1" || g.Balance != 99500 || g.Jackpot != 1050 || g.Version != 1 {
		t.Fatalf("session = %+v", g)
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t, memory.New())
	plan, err := svc.Quote(20)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if plan.TotalGems != 5 || plan.TotalTokens < 20 {
		t.Fatalf("plan = %+v", plan)
	}
	if _, err := svc.Quote(0); !errors.Is(err, farkle.ErrInvalidAmount) {
		t.Fatalf("quote(0) err = %v", err)
	}
}
