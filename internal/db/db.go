package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            uuid UUID NOT NULL UNIQUE,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '',
            is_visible BOOLEAN NOT NULL DEFAULT TRUE,
            is_open_for_messages BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chats (
            id BIGSERIAL PRIMARY KEY,
            uuid UUID NOT NULL UNIQUE,
            chat_type TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '',
            is_visible BOOLEAN NOT NULL DEFAULT TRUE,
            is_open_for_messages BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS user_chat_associations (
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
            PRIMARY KEY (user_id, chat_id)
        );`,
		`CREATE TABLE IF NOT EXISTS folders (
            id BIGSERIAL PRIMARY KEY,
            uuid UUID NOT NULL UNIQUE,
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            folder_type TEXT NOT NULL,
            name TEXT,
            position INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// guards against duplicate system folders for a user
		`CREATE UNIQUE INDEX IF NOT EXISTS folders_user_system_type_idx
            ON folders (user_id, folder_type) WHERE folder_type <> 'custom';`,
		`CREATE TABLE IF NOT EXISTS folder_chat_associations (
            folder_id BIGINT NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
            chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
            PRIMARY KEY (folder_id, chat_id)
        );`,
		`CREATE TABLE IF NOT EXISTS join_requests (
            id BIGSERIAL PRIMARY KEY,
            uuid UUID NOT NULL UNIQUE,
            request_type TEXT NOT NULL,
            sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            receiver_user_id BIGINT REFERENCES users(id) ON DELETE CASCADE,
            group_id BIGINT REFERENCES chats(id) ON DELETE CASCADE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (receiver_user_id IS NOT NULL OR group_id IS NOT NULL)
        );`,
		`CREATE TABLE IF NOT EXISTS invitations (
            id BIGSERIAL PRIMARY KEY,
            uuid UUID NOT NULL UNIQUE,
            invitation_type TEXT NOT NULL,
            lifetime TEXT NOT NULL,
            max_uses INT,
            user_id BIGINT REFERENCES users(id) ON DELETE CASCADE,
            group_id BIGINT REFERENCES chats(id) ON DELETE CASCADE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (user_id IS NOT NULL OR group_id IS NOT NULL)
        );`,
		`CREATE INDEX IF NOT EXISTS user_chat_associations_chat_idx ON user_chat_associations (chat_id);`,
		`CREATE INDEX IF NOT EXISTS folder_chat_associations_chat_idx ON folder_chat_associations (chat_id);`,
		`CREATE INDEX IF NOT EXISTS folders_user_idx ON folders (user_id);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
