package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs a Postgres-backed store and ensures the schema exists.
func New(dsn string, limits quota.Limits) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	s := &pgStore{db: db, limits: limits}
	if err := s.bootstrap(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wires a store onto an existing connection (used by tests).
func NewWithDB(db *sql.DB, limits quota.Limits) store.Store {
	return &pgStore{db: db, limits: limits}
}

type pgStore struct {
	db     *sql.DB
	limits quota.Limits
}

func (s *pgStore) Quotas() store.Quotas       { return &quotas{db: s.db, limits: s.limits} }
func (s *pgStore) Histories() store.Histories { return &histories{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *pgStore) Close() error { return s.db.Close() }

func (s *pgStore) bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// --- Quotas ---

type quotas struct {
	db     *sql.DB
	limits quota.Limits
}

// Consume performs the check-and-consume inside one transaction with a
// row lock, so concurrent calls for the same user serialize in the
// database and the allowance is never over-consumed.
func (q *quotas) Consume(ctx context.Context, userID string, now time.Time) (*model.QuotaDecision, error) {
	tx, err := q.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Default free-tier record if absent.
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO quotas (user_id, tier, period_count)
        VALUES ($1, 'free', 0)
        ON CONFLICT (user_id) DO NOTHING
    `, userID); err != nil {
		return nil, err
	}

	rec := model.QuotaRecord{UserID: userID}
	var resetAt sql.NullTime
	row := tx.QueryRowContext(ctx, `
        SELECT tier, period_count, period_reset_at
        FROM quotas WHERE user_id=$1
        FOR UPDATE
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
            UPDATE quotas
            SET period_count=$1, period_reset_at=$2, update_time=now()
            WHERE user_id=$3
        `, rec.PeriodCount, rec.PeriodResetAt, userID); err != nil {
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
        SELECT tier, period_count, period_reset_at, update_time
        FROM quotas WHERE user_id=$1
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
        INSERT INTO quotas (user_id, tier, period_count)
        VALUES ($1, $2, 0)
        ON CONFLICT (user_id) DO UPDATE SET tier=excluded.tier, update_time=now()
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
	urlsJSON, _ := json.Marshal(rec.RemovedURLs)
	var created time.Time
	row := h.db.QueryRowContext(ctx, `
        INSERT INTO history_records (record_id, user_id, repo_url, markdown, tone, removed_urls)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, id, rec.UserID, rec.RepoURL, rec.Markdown, rec.Tone, nullIfEmpty(urlsJSON))
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *rec
	out.RecordID = id
	out.CreationTime = created
	return &out, nil
}

func (h *histories) List(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, `
        SELECT record_id, repo_url, markdown, tone, removed_urls, creation_time
        FROM history_records WHERE user_id=$1
        ORDER BY creation_time DESC LIMIT $2
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
		if urls.Valid {
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
        FROM history_records WHERE user_id=$1 AND record_id=$2
    `, userID, recordID)
	if err := row.Scan(&rec.RepoURL, &rec.Markdown, &rec.Tone, &urls, &rec.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if urls.Valid {
		_ = json.Unmarshal([]byte(urls.String), &rec.RemovedURLs)
	}
	return &rec, nil
}

func (h *histories) Delete(ctx context.Context, userID, recordID string) error {
	res, err := h.db.ExecContext(ctx, `
        DELETE FROM history_records WHERE user_id=$1 AND record_id=$2
    `, userID, recordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func nullIfEmpty(b []byte) interface{} {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return b
}
