package postgres

// ddl is idempotent; the service applies it at startup.
const ddl = `
CREATE TABLE IF NOT EXISTS quotas (
    user_id         TEXT PRIMARY KEY,
    tier            TEXT NOT NULL DEFAULT 'free',
    period_count    INTEGER NOT NULL DEFAULT 0,
    period_reset_at TIMESTAMPTZ,
    update_time     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS history_records (
    record_id     TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    repo_url      TEXT NOT NULL,
    markdown      TEXT NOT NULL,
    tone          TEXT NOT NULL,
    removed_urls  JSONB,
    creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_history_user_time
    ON history_records (user_id, creation_time DESC);
`
