package exchangelog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Migration creates the exchange table.
const Migration = `CREATE TABLE IF NOT EXISTS chat_exchanges (
	id                UUID PRIMARY KEY,
	session_id        TEXT NOT NULL,
	user_id           TEXT,
	user_message      TEXT NOT NULL,
	assistant_message TEXT NOT NULL,
	intent            TEXT NOT NULL,
	knowledge_used    TEXT[] NOT NULL DEFAULT '{}',
	xp_awarded        INTEGER NOT NULL DEFAULT 0,
	confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
	response_time_ms  BIGINT NOT NULL DEFAULT 0,
	source            TEXT NOT NULL,
	model             TEXT,
	suggested_actions TEXT[] NOT NULL DEFAULT '{}',
	show_disclaimer   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// SessionIndexMigration speeds up per-session transcript lookups.
const SessionIndexMigration = `CREATE INDEX IF NOT EXISTS idx_chat_exchanges_session
	ON chat_exchanges (session_id, created_at)`

const insertExchange = `INSERT INTO chat_exchanges (
	id, session_id, user_id, user_message, assistant_message, intent, knowledge_used,
	xp_awarded, confidence, response_time_ms, source, model, suggested_actions,
	show_disclaimer, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// PostgresRepository writes exchanges to chat_exchanges.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Name() string { return "postgres" }

func (r *PostgresRepository) LogExchange(ctx context.Context, ex Exchange) error {
	_, err := r.db.ExecContext(ctx, insertExchange,
		ex.ID,
		ex.SessionID,
		nullString(ex.UserID),
		ex.UserMessage,
		ex.AssistantMessage,
		ex.Intent,
		pq.Array(nonNil(ex.KnowledgeUsed)),
		ex.XPAwarded,
		ex.Confidence,
		ex.ResponseTimeMs,
		ex.Source,
		nullString(ex.Model),
		pq.Array(nonNil(ex.SuggestedActions)),
		ex.ShowDisclaimer,
		ex.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat exchange: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
