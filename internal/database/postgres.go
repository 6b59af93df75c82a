package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Pending signups awaiting OTP verification (one per unverified email)
		`CREATE TABLE IF NOT EXISTS temp_users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			email VARCHAR(255) NOT NULL UNIQUE,
			account_type VARCHAR(20) NOT NULL,
			display_name VARCHAR(255) NOT NULL,
			city VARCHAR(255),
			password VARCHAR(255) NOT NULL,
			adult_policy BOOLEAN NOT NULL DEFAULT TRUE,
			current_otp VARCHAR(6),
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			otp_attempts INTEGER NOT NULL DEFAULT 0,
			last_otp_sent_at TIMESTAMP,
			first_otp_attempt_at TIMESTAMP
		)`,

		// Verified accounts. Login and reset OTP field sets are independent.
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			profile_name VARCHAR(255),
			username VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			city VARCHAR(255),
			role VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			pass_status VARCHAR(20) NOT NULL DEFAULT 'Default',
			reset_password_otp VARCHAR(6),
			reset_password_otp_sent_at TIMESTAMP,
			reset_password_otp_attempts INTEGER NOT NULL DEFAULT 0,
			reset_password_otp_first_attempt_at TIMESTAMP,
			login_otp VARCHAR(6),
			login_otp_sent_at TIMESTAMP,
			login_otp_attempts INTEGER NOT NULL DEFAULT 0,
			login_otp_first_attempt_at TIMESTAMP,
			deleted_at TIMESTAMP
		)`,

		// Chat requests. Uniqueness is enforced on the unordered pair so a
		// reversed-orientation duplicate can never be inserted.
		`CREATE TABLE IF NOT EXISTS chat_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			message TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_requests_pair
			ON chat_requests (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id))`,

		// Conversations keyed by the canonically ordered participant pair.
		// The unique constraint is the only defense against concurrent
		// first-message races.
		`CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			participant_1_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			participant_2_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			last_message TEXT,
			last_message_at TIMESTAMP,
			UNIQUE(participant_1_id, participant_2_id)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			attachment_url TEXT,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMP,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS user_galleries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			public_id TEXT NOT NULL,
			is_private BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Indexes for the hot paths
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_temp_users_email ON temp_users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_requests_sender ON chat_requests(sender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_requests_receiver ON chat_requests(receiver_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_participant_1 ON conversations(participant_1_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_participant_2 ON conversations(participant_2_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unread ON messages(receiver_id, is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_user_galleries_user ON user_galleries(user_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
