// Package sqlite provides a SQLite-backed farkle storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/xtding233/farkle-backend/internal/ledger"
	"github.com/xtding233/farkle-backend/internal/storage"
	"github.com/xtding233/farkle-backend/internal/storage/sqlite/migrations"
	"github.com/xtding233/farkle-backend/internal/storage/sqlitemigrate"
)

// Store persists sessions, players and the jackpot in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// GetSession returns one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SessionRecord{}, err
	}
	var rec storage.SessionRecord
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, player_id, version, data, updated_at FROM sessions WHERE id = ?`,
		strings.TrimSpace(id),
	).Scan(&rec.ID, &rec.PlayerID, &rec.Version, &rec.Data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

const playerColumns = `id, credits, gems, boost_tokens, amount_bet, amount_won, games_played, last_bonus, created_at, updated_at`

func scanPlayer(row *sql.Row) (storage.PlayerRecord, error) {
	var p storage.PlayerRecord
	var createdAt, updatedAt int64
	err := row.Scan(&p.ID, &p.Credits, &p.Gems, &p.BoostTokens, &p.AmountBet, &p.AmountWon,
		&p.GamesPlayed, &p.LastBonus, &createdAt, &updatedAt)
	if err != nil {
		return storage.PlayerRecord{}, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

// GetPlayer returns one player by id.
func (s *Store) GetPlayer(ctx context.Context, id string) (storage.PlayerRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.PlayerRecord{}, err
	}
	p, err := scanPlayer(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ?`, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PlayerRecord{}, storage.ErrNotFound
		}
		return storage.PlayerRecord{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// EnsurePlayer provisions the player with default balances when missing.
func (s *Store) EnsurePlayer(ctx context.Context, id string, now time.Time) (storage.PlayerRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.PlayerRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.PlayerRecord{}, fmt.Errorf("player id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO players (id, credits, gems, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, storage.DefaultCredits, storage.DefaultGems, toMillis(now), toMillis(now),
	)
	if err != nil {
		return storage.PlayerRecord{}, fmt.Errorf("ensure player: %w", err)
	}
	return s.GetPlayer(ctx, id)
}

// GetGame returns the game-wide aggregate.
func (s *Store) GetGame(ctx context.Context) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	var g storage.GameRecord
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT jackpot FROM game WHERE id = 1`).Scan(&g.Jackpot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.GameRecord{}, storage.ErrNotFound
		}
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// Commit saves the session and applies the ledger in one transaction.
func (s *Store) Commit(ctx context.Context, req storage.CommitRequest) (int64, error) {
	if err := s.ready(ctx); err != nil {
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
	next := req.ExpectedVersion + 1

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if req.ExpectedVersion == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sessions (id, player_id, version, data, updated_at) VALUES (?, ?, ?, ?, ?)`,
			sess.ID, sess.PlayerID, next, sess.Data, toMillis(now))
		if err != nil {
			if isUniqueViolation(err) {
				return 0, storage.ErrConflict
			}
			return 0, fmt.Errorf("insert session: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE sessions SET player_id = ?, version = ?, data = ?, updated_at = ? WHERE id = ? AND version = ?`,
			sess.PlayerID, next, sess.Data, toMillis(now), sess.ID, req.ExpectedVersion)
		if err != nil {
			return 0, fmt.Errorf("update session: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return 0, fmt.Errorf("update session: %w", err)
		} else if n == 0 {
			return 0, storage.ErrConflict
		}
	}

	if req.Ledger != nil {
		if err := applyPlayer(ctx, tx, sess.PlayerID, req.Ledger.Player, now); err != nil {
			return 0, err
		}
		if err := applyGame(ctx, tx, req.Ledger.Game); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

func applyPlayer(ctx context.Context, tx *sql.Tx, playerID string, e ledger.Entries, now time.Time) error {
	if len(e) == 0 {
		return nil
	}
	var sets []string
	var args []any
	for _, field := range e.Fields() {
		col, ok := storage.PlayerColumns[field]
		if !ok {
			return fmt.Errorf("unknown player field %q", field)
		}
		adj := e[field]
		if adj.Overwrite {
			sets = append(sets, col+" = ?")
			args = append(args, adj.Value)
		} else {
			sets = append(sets, col+" = "+col+" + ?")
			args = append(args, adj.Delta)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, toMillis(now), playerID)

	res, err := tx.ExecContext(ctx, `UPDATE players SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("apply player ledger: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("apply player ledger: %w", err)
	} else if n == 0 {
		return fmt.Errorf("apply player ledger: %w", storage.ErrNotFound)
	}
	return nil
}

func applyGame(ctx context.Context, tx *sql.Tx, e ledger.Entries) error {
	for _, field := range e.Fields() {
		col, ok := storage.GameColumns[field]
		adj := e[field]
		if !ok || adj.Overwrite {
			return fmt.Errorf("unsupported game adjustment %q", field)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE game SET `+col+` = `+col+` + ? WHERE id = 1`, adj.Delta); err != nil {
			return fmt.Errorf("apply game ledger: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
