package storage

// schema is the DDL executed once on Open. Idempotent due to IF NOT EXISTS.
// Money columns hold exact decimal strings; timestamps hold RFC3339 TEXT.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    email         TEXT    NOT NULL UNIQUE,
    name          TEXT    NOT NULL DEFAULT '',
    password_hash TEXT    NOT NULL,

    -- JSON array of role strings, e.g. ["ROLE_CLIENT"].
    roles         TEXT    NOT NULL DEFAULT '[]',

    -- Satisfaction vote, 1..5, NULL until submitted.
    vote          INTEGER,
    created_at    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT    NOT NULL,
    description  TEXT,
    price        TEXT    NOT NULL DEFAULT '0',
    is_available INTEGER NOT NULL DEFAULT 1,
    category     TEXT,
    image        TEXT,
    rating       REAL,
    prep_time    TEXT,
    popular      INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT    NOT NULL,
    updated_at   TEXT
);

CREATE TABLE IF NOT EXISTS product_components (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    name        TEXT    NOT NULL,
    price       TEXT    NOT NULL DEFAULT '0',
    is_optional INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    status     TEXT    NOT NULL DEFAULT 'pending',
    total      TEXT    NOT NULL DEFAULT '0',
    created_at TEXT    NOT NULL,
    updated_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_orders_status  ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);

-- Line items are owned by their order: deleting the order cascades here.
CREATE TABLE IF NOT EXISTS order_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id INTEGER NOT NULL REFERENCES products(id),
    quantity   INTEGER NOT NULL,
    unit_price TEXT    NOT NULL,
    subtotal   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

-- One invoice per order, immutable once written.
CREATE TABLE IF NOT EXISTS invoices (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   INTEGER NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
    number     TEXT    NOT NULL UNIQUE,
    amount     TEXT    NOT NULL,
    created_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    reference  TEXT    NOT NULL UNIQUE,
    method     TEXT,
    is_partial INTEGER NOT NULL DEFAULT 0,
    amount     TEXT    NOT NULL,
    created_at TEXT    NOT NULL
);

-- order_id is a weak reference on purpose: deleting an order must not
-- delete the notifications that mentioned it.
CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type       TEXT    NOT NULL,
    title      TEXT    NOT NULL,
    message    TEXT    NOT NULL,
    order_id   INTEGER,
    is_read    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);

CREATE TABLE IF NOT EXISTS dining_tables (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT    NOT NULL,
    capacity     INTEGER NOT NULL,
    is_available INTEGER NOT NULL DEFAULT 1,
    position_x   INTEGER NOT NULL DEFAULT 0,
    position_y   INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS table_sessions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    table_id   INTEGER NOT NULL REFERENCES dining_tables(id) ON DELETE CASCADE,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    start_time TEXT    NOT NULL,
    end_time   TEXT
);
`
