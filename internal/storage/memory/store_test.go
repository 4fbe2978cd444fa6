package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xtding233/farkle-backend/internal/ledger"
	"github.com/xtding233/farkle-backend/internal/storage"
)

func TestCommitAndConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	if _, err := s.EnsurePlayer(ctx, "p1", now); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	led := ledger.New()
	led.AddPlayer(ledger.FieldCredits, -500)
	led.AddGame(ledger.FieldJackpot, 50)
	req := storage.CommitRequest{
		Session: storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{}`)},
		Ledger:  led,
		Now:     now,
	}
	if v, err := s.Commit(ctx, req); err != nil || v != 1 {
		t.Fatalf("commit = %d, %v", v, err)
	}
	if _, err := s.Commit(ctx, req); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("second insert = %v, want conflict", err)
	}
	req.ExpectedVersion = 3
	if _, err := s.Commit(ctx, req); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("stale update = %v, want conflict", err)
	}

	p, _ := s.GetPlayer(ctx, "p1")
	g, _ := s.GetGame(ctx)
	if p.Credits != storage.DefaultCredits-500 || g.Jackpot != storage.DefaultJackpot+50 {
		t.Fatalf("credits %d jackpot %d", p.Credits, g.Jackpot)
	}
	sess, err := s.GetSession(ctx, "s1")
	if err != nil || sess.Version != 1 {
		t.Fatalf("session = %+v, %v", sess, err)
	}
}

func TestCommitIsAllOrNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	led := ledger.New()
	led.AddGame(ledger.FieldJackpot, 50)
	led.AddPlayer(ledger.FieldCredits, 10)
	_, err := s.Commit(ctx, storage.CommitRequest{
		Session: storage.SessionRecord{ID: "s1", PlayerID: "ghost", Data: []byte(`{}`)},
		Ledger:  led,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("commit = %v, want not found", err)
	}
	if _, err := s.GetSession(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("session saved despite failure")
	}
	if g, _ := s.GetGame(ctx); g.Jackpot != storage.DefaultJackpot {
		t.Fatalf("jackpot changed: %d", g.Jackpot)
	}
}

func TestGetSessionCopiesData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	if _, err := s.Commit(ctx, storage.CommitRequest{
		Session: storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{"x":1}`)},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	rec, _ := s.GetSession(ctx, "s1")
	rec.Data[0] = 'X'
	again, _ := s.GetSession(ctx, "s1")
	if string(again.Data) != `{"x":1}` {
		t.Fatalf("stored data mutated: %s", again.Data)
	}
}
