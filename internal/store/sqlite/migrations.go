package sqlite

// migrations are applied in order; PRAGMA user_version records how many have
// run. Append new steps, never edit released ones.
//
// Containers are listed in rowid order, which is the registry iteration
// order. Upserts keep the rowid of an existing (account_id, path).
var migrations = []string{
	`CREATE TABLE accounts (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    provider     TEXT NOT NULL DEFAULT 'gmail',
    display_name TEXT,
    server       TEXT NOT NULL DEFAULT '',
    created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE containers (
    account_id  TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    path        TEXT NOT NULL,
    role        TEXT NOT NULL DEFAULT '',
    kind        TEXT NOT NULL DEFAULT 'folder',
    remote_id   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (account_id, path)
);
CREATE INDEX idx_containers_role ON containers(account_id, role);

CREATE TABLE sync_state (
    account_id  TEXT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
    containers  INTEGER NOT NULL DEFAULT 0,
    last_sync   DATETIME
);`,

	`CREATE TABLE settings (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL
);`,

	`CREATE TABLE tasks (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    account_id  TEXT NOT NULL,
    role        TEXT NOT NULL,
    path        TEXT NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);
CREATE INDEX idx_tasks_status ON tasks(status, created_at);`,
}
