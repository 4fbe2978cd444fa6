package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xtding233/farkle-backend/internal/ledger"
	"github.com/xtding233/farkle-backend/internal/storage"
)

var now = time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "farkle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "farkle.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		g, err := store.GetGame(context.Background())
		if err != nil || g.Jackpot != storage.DefaultJackpot {
			t.Fatalf("game = %+v, %v", g, err)
		}
		_ = store.Close()
	}
}

func TestEnsurePlayerProvisionsDefaults(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.GetPlayer(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	p, err := store.EnsurePlayer(ctx, "p1", now)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if p.Credits != storage.DefaultCredits || p.Gems != storage.DefaultGems || !p.CreatedAt.Equal(now) {
		t.Fatalf("player = %+v", p)
	}
	// a second call must not reset balances
	led := ledger.New()
	led.AddPlayer(ledger.FieldCredits, -500)
	if _, err := store.Commit(ctx, storage.CommitRequest{
		Session: storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{}`)},
		Ledger:  led,
		Now:     now,
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	p, err = store.EnsurePlayer(ctx, "p1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if p.Credits != storage.DefaultCredits-500 {
		t.Fatalf("credits = %d", p.Credits)
	}
}

func TestCommitAppliesLedgerAndVersions(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.EnsurePlayer(ctx, "p1", now); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	led := ledger.New()
	led.AddPlayer(ledger.FieldCredits, -500)
	led.AddPlayer(ledger.FieldBoostTokens, 20)
	led.SetPlayer(ledger.FieldLastBonus, "2026-10-19T08:00:00Z")
	led.AddGame(ledger.FieldJackpot, 50)
	v, err := store.Commit(ctx, storage.CommitRequest{
		Session: storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{"a":1}`)},
		Ledger:  led,
		Now:     now,
	})
	if err != nil || v != 1 {
		t.Fatalf("commit = %d, %v", v, err)
	}

	sess, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.Version != 1 || string(sess.Data) != `{"a":1}` || sess.PlayerID != "p1" || !sess.UpdatedAt.Equal(now) {
		t.Fatalf("session = %+v", sess)
	}
	p, _ := store.GetPlayer(ctx, "p1")
	if p.Credits != 99500 || p.BoostTokens != 20 || p.LastBonus != "2026-10-19T08:00:00Z" {
		t.Fatalf("player = %+v", p)
	}
	g, _ := store.GetGame(ctx)
	if g.Jackpot != 1050 {
		t.Fatalf("jackpot = %d", g.Jackpot)
	}

	v, err = store.Commit(ctx, storage.CommitRequest{
		Session:         storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{"a":2}`)},
		ExpectedVersion: 1,
	})
	if err != nil || v != 2 {
		t.Fatalf("second commit = %d, %v", v, err)
	}
}

func TestCommitDetectsConflicts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.EnsurePlayer(ctx, "p1", now); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	first := storage.CommitRequest{Session: storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{}`)}}
	if _, err := store.Commit(ctx, first); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := store.Commit(ctx, first); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate insert = %v, want conflict", err)
	}

	led := ledger.New()
	led.AddPlayer(ledger.FieldCredits, 1000)
	stale := storage.CommitRequest{
		Session:         storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{}`)},
		ExpectedVersion: 5,
		Ledger:          led,
	}
	if _, err := store.Commit(ctx, stale); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("stale update = %v, want conflict", err)
	}
	p, _ := store.GetPlayer(ctx, "p1")
	if p.Credits != storage.DefaultCredits {
		t.Fatalf("conflicting commit leaked ledger: credits = %d", p.Credits)
	}
}

func TestCommitRollsBackOnBadLedger(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	led := ledger.New()
	led.AddGame(ledger.FieldJackpot, 10)
	led.AddPlayer(ledger.FieldCredits, 10)
	// p1 was never provisioned
	_, err := store.Commit(ctx, storage.CommitRequest{
		Session: storage.SessionRecord{ID: "s1", PlayerID: "p1", Data: []byte(`{}`)},
		Ledger:  led,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("commit = %v, want not found", err)
	}
	if _, err := store.GetSession(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("session persisted despite rollback: %v", err)
	}
	if g, _ := store.GetGame(ctx); g.Jackpot != storage.DefaultJackpot {
		t.Fatalf("jackpot = %d", g.Jackpot)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetSession(ctx, "s1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
