// ABOUTME: Table and index definitions for users, memories, interactions and achievements
// ABOUTME: One variant per dialect; statements are idempotent and run on every open
package storage

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_key TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL,
    first_interaction_at DATETIME,
    last_interaction_at DATETIME,
    total_sessions INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    connection_depth INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS memories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    observation TEXT NOT NULL,
    interpretation TEXT,
    category TEXT,
    relevance_score INTEGER NOT NULL DEFAULT 5,
    follow_up_question TEXT,
    people_mentioned TEXT,
    is_identity_statement BOOLEAN NOT NULL DEFAULT 0,
    is_breakthrough_moment BOOLEAN NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_user_created ON memories(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_memories_user_relevance ON memories(user_id, relevance_score);
CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(user_id, category);

CREATE TABLE IF NOT EXISTS interactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    user_input TEXT NOT NULL,
    agent_response TEXT NOT NULL,
    persona TEXT NOT NULL DEFAULT 'friend',
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS achievements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    achievement_key TEXT NOT NULL,
    unlocked_at DATETIME NOT NULL,
    celebrated BOOLEAN NOT NULL DEFAULT 0,
    UNIQUE (user_id, achievement_key)
);

CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    user_key TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL,
    first_interaction_at TIMESTAMPTZ,
    last_interaction_at TIMESTAMPTZ,
    total_sessions INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    connection_depth INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS memories (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    observation TEXT NOT NULL,
    interpretation TEXT,
    category TEXT,
    relevance_score INTEGER NOT NULL DEFAULT 5,
    follow_up_question TEXT,
    people_mentioned TEXT,
    is_identity_statement BOOLEAN NOT NULL DEFAULT FALSE,
    is_breakthrough_moment BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_user_created ON memories(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_memories_user_relevance ON memories(user_id, relevance_score);
CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(user_id, category);

CREATE TABLE IF NOT EXISTS interactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    user_input TEXT NOT NULL,
    agent_response TEXT NOT NULL,
    persona TEXT NOT NULL DEFAULT 'friend',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS achievements (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    achievement_key TEXT NOT NULL,
    unlocked_at TIMESTAMPTZ NOT NULL,
    celebrated BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (user_id, achievement_key)
);

CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)
`
