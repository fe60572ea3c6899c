// Package sqlite is the local/dev store driver. A single write
// connection serializes all mutations, which gives quota consumption
// the same one-writer-at-a-time guarantee Postgres gets from row locks.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/store"
)

// Open opens (or creates) a SQLite database at path with WAL enabled.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the driver otherwise returns SQLITE_BUSY
	// under concurrent transactions.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs a SQLite-backed store and ensures the schema exists.
func New(path string, limits quota.Limits) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	s := &liteStore{db: db, limits: limits}
	if err := s.bootstrap(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

type liteStore struct {
	db     *sql.DB
	limits quota.Limits
}

func (s *liteStore) Quotas() store.Quotas               { return &quotas{db: s.db, limits: s.limits} }
func (s *liteStore) Histories() store.Histories         { return &histories{db: s.db} }
func (s *liteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *liteStore) Close() error                       { return s.db.Close() }

func (s *liteStore) bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS quotas (
            user_id         TEXT PRIMARY KEY,
            tier            TEXT NOT NULL DEFAULT 'free',
            period_count    INTEGER NOT NULL DEFAULT 0,
            period_reset_at TIMESTAMP,
            update_time     TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS history_records (
            record_id     TEXT PRIMARY KEY,
            user_id       TEXT NOT NULL,
            repo_url      TEXT NOT NULL,
            markdown      TEXT NOT NULL,
            tone          TEXT NOT NULL,
            removed_urls  TEXT,
            creation_time TIMESTAMP NOT NULL
        );

        CREATE INDEX IF NOT EXISTS idx_history_user_time
            ON history_records (user_id, creation_time DESC);
    `)
	return err
}

// --- Quotas ---

type quotas struct {
	db     *sql.DB
	limits quota.Limits
}

func (q *quotas) Consume(ctx context.Context, userID string, now time.Time) (*model.QuotaDecision, error) {
	tx, err := q.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO quotas (user_id, tier, period_count) VALUES (?, 'free', 0)
        ON CONFLICT(user_id) DO NOTHING
    `, userID); err != nil {
		return nil, err
	}

	rec := model.QuotaRecord{UserID: userID}
	var resetAt sql.NullTime
	row := tx.QueryRowContext(ctx, `
        SELECT tier, period_count, period_reset_at FROM quotas WHERE user_id=?
    `, userID)
	if err := row.Scan(&rec.Tier, &rec.PeriodCount, &resetAt); err != nil {
		return nil, err
	}
	if resetAt.Valid {
		rec.PeriodResetAt = resetAt.Time
	}

	dec, dirty := quota.Apply(&rec, now, q.limits)
	if dirty {
		if _, err := tx.ExecContext(ctx, `
            UPDATE quotas SET period_count=?, period_reset_at=?, update_time=? WHERE user_id=?
        `, rec.PeriodCount, rec.PeriodResetAt.UTC(), now.UTC(), userID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &dec, nil
}

func (q *quotas) Get(ctx context.Context, userID string) (*model.QuotaRecord, error) {
	rec := model.QuotaRecord{UserID: userID}
	var resetAt, updated sql.NullTime
	row := q.db.QueryRowContext(ctx, `
        SELECT tier, period_count, period_reset_at, update_time FROM quotas WHERE user_id=?
    `, userID)
	if err := row.Scan(&rec.Tier, &rec.PeriodCount, &resetAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if resetAt.Valid {
		rec.PeriodResetAt = resetAt.Time
	}
	if updated.Valid {
		rec.UpdateTime = updated.Time
	}
	return &rec, nil
}

func (q *quotas) SetTier(ctx context.Context, userID string, tier model.Tier) error {
	_, err := q.db.ExecContext(ctx, `
        INSERT INTO quotas (user_id, tier, period_count) VALUES (?, ?, 0)
        ON CONFLICT(user_id) DO UPDATE SET tier=excluded.tier
    `, userID, tier)
	return err
}

// --- Histories ---

type histories struct{ db *sql.DB }

func (h *histories) Create(ctx context.Context, rec *model.HistoryRecord) (*model.HistoryRecord, error) {
	id := rec.RecordID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	urlsJSON, _ := json.Marshal(rec.RemovedURLs)

	if _, err := h.db.ExecContext(ctx, `
        INSERT INTO history_records (record_id, user_id, repo_url, markdown, tone, removed_urls, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, id, rec.UserID, rec.RepoURL, rec.Markdown, rec.Tone, string(urlsJSON), now); err != nil {
		return nil, err
	}
	out := *rec
	out.RecordID = id
	out.CreationTime = now
	return &out, nil
}

func (h *histories) List(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, `
        SELECT record_id, repo_url, markdown, tone, removed_urls, creation_time
        FROM history_records WHERE user_id=?
        ORDER BY creation_time DESC LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.HistoryRecord
	for rows.Next() {
		rec := model.HistoryRecord{UserID: userID}
		var urls sql.NullString
		if err := rows.Scan(&rec.RecordID, &rec.RepoURL, &rec.Markdown, &rec.Tone, &urls, &rec.CreationTime); err != nil {
			return nil, err
		}
		if urls.Valid && urls.String != "null" {
			_ = json.Unmarshal([]byte(urls.String), &rec.RemovedURLs)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (h *histories) GetByID(ctx context.Context, userID, recordID string) (*model.HistoryRecord, error) {
	rec := model.HistoryRecord{UserID: userID, RecordID: recordID}
	var urls sql.NullString
	row := h.db.QueryRowContext(ctx, `
        SELECT repo_url, markdown, tone, removed_urls, creation_time
        FROM history_records WHERE user_id=? AND record_id=?
    `, userID, recordID)
	if err := row.Scan(&rec.RepoURL, &rec.Markdown, &rec.Tone, &urls, &rec.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if urls.Valid && urls.String != "null" {
		_ = json.Unmarshal([]byte(urls.String), &rec.RemovedURLs)
	}
	return &rec, nil
}

func (h *histories) Delete(ctx context.Context, userID, recordID string) error {
	res, err := h.db.ExecContext(ctx, `
        DELETE FROM history_records WHERE user_id=? AND record_id=?
    `, userID, recordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
