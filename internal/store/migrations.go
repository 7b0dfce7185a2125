package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at      DATETIME NOT NULL,
    finished_at     DATETIME,
    window_minutes  INTEGER NOT NULL DEFAULT 0,
    raw_items       INTEGER NOT NULL DEFAULT 0,
    clusters        INTEGER NOT NULL DEFAULT 0,
    skipped_items   INTEGER NOT NULL DEFAULT 0,
    degraded_fetches INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS items (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       INTEGER NOT NULL REFERENCES runs(id),
    title        TEXT NOT NULL,
    url          TEXT NOT NULL,
    source       TEXT NOT NULL DEFAULT '',
    published_at DATETIME NOT NULL,
    summary      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
CREATE INDEX IF NOT EXISTS idx_items_published ON items(published_at);

CREATE TABLE IF NOT EXISTS clusters (
    id           TEXT NOT NULL,
    run_id       INTEGER NOT NULL REFERENCES runs(id),
    headline     TEXT NOT NULL,
    published_at DATETIME NOT NULL,
    urls         TEXT NOT NULL DEFAULT '[]',
    sources      TEXT NOT NULL DEFAULT '[]',
    titles       TEXT NOT NULL DEFAULT '[]',
    tickers      TEXT NOT NULL DEFAULT '[]',
    topics       TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (id, run_id)
);

CREATE INDEX IF NOT EXISTS idx_clusters_run ON clusters(run_id);

CREATE TABLE IF NOT EXISTS signals (
    cluster_id      TEXT NOT NULL,
    run_id          INTEGER NOT NULL REFERENCES runs(id),
    volume          INTEGER NOT NULL DEFAULT 0,
    engagement_rate REAL NOT NULL DEFAULT 0,
    velocity        REAL NOT NULL DEFAULT 0,
    sentiment_mean  REAL NOT NULL DEFAULT 0,
    sentiment_var   REAL NOT NULL DEFAULT 0,
    trends_interest REAL NOT NULL DEFAULT 0,
    trends_velocity REAL NOT NULL DEFAULT 0,
    trends_topics   TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (cluster_id, run_id)
);

CREATE TABLE IF NOT EXISTS decisions (
    cluster_id      TEXT NOT NULL,
    run_id          INTEGER NOT NULL REFERENCES runs(id),
    freshness       REAL NOT NULL DEFAULT 0,
    authority       REAL NOT NULL DEFAULT 0,
    social_velocity REAL NOT NULL DEFAULT 0,
    engagement      REAL NOT NULL DEFAULT 0,
    sentiment       REAL NOT NULL DEFAULT 0,
    brand_fit       REAL NOT NULL DEFAULT 0,
    novelty         REAL NOT NULL DEFAULT 0,
    risk_penalty    REAL NOT NULL DEFAULT 0,
    noise_penalty   REAL NOT NULL DEFAULT 0,
    total           REAL NOT NULL DEFAULT 0,
    decision        TEXT NOT NULL DEFAULT 'DROP',
    PRIMARY KEY (cluster_id, run_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_total ON decisions(total);
`
