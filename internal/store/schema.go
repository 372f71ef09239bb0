package store

// schemaSQL is shared by SQLite and Postgres, so it sticks to TEXT and
// INTEGER columns. Money is stored as decimal text and dates as YYYY-MM-DD.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS owners (
    name                 TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS funds (
    owner                TEXT PRIMARY KEY REFERENCES owners(name) ON DELETE CASCADE,
    spending             TEXT NOT NULL DEFAULT '0',
    savings              TEXT NOT NULL DEFAULT '0',
    last_update          TEXT NOT NULL,
    seeded               INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schedule (
    id                   TEXT PRIMARY KEY,
    owner                TEXT NOT NULL REFERENCES owners(name) ON DELETE CASCADE,
    value                TEXT NOT NULL,
    kind                 TEXT NOT NULL,
    destination          TEXT NOT NULL,
    pattern              TEXT NOT NULL,
    day                  INTEGER NOT NULL,
    revision             INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schedule_owner ON schedule(owner);
`
