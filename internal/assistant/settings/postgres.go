package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound means no settings row has been saved yet.
var ErrNotFound = errors.New("SETTINGS_NOT_FOUND")

// Migration creates the settings table.
const Migration = `CREATE TABLE IF NOT EXISTS assistant_settings (
	id                   SERIAL PRIMARY KEY,
	emergency_detection  BOOLEAN NOT NULL DEFAULT TRUE,
	legal_advice_refusal BOOLEAN NOT NULL DEFAULT TRUE,
	objection_handling   BOOLEAN NOT NULL DEFAULT TRUE,
	streaming            BOOLEAN NOT NULL DEFAULT TRUE,
	use_knowledge_base   BOOLEAN NOT NULL DEFAULT TRUE,
	max_response_length  INTEGER NOT NULL DEFAULT 1000,
	temperature          DOUBLE PRECISION NOT NULL DEFAULT 0.7,
	prompt_verbosity     TEXT NOT NULL DEFAULT 'standard',
	active_model         TEXT NOT NULL DEFAULT 'knowledge-base',
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const selectLatestSettings = `SELECT emergency_detection, legal_advice_refusal, objection_handling, streaming,
	use_knowledge_base, max_response_length, temperature, prompt_verbosity, active_model
FROM assistant_settings
ORDER BY updated_at DESC
LIMIT 1`

// PostgresSource reads the most recently saved settings row.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (p *PostgresSource) Load(ctx context.Context) (Settings, error) {
	var s Settings
	err := p.db.QueryRowContext(ctx, selectLatestSettings).Scan(
		&s.EmergencyDetection,
		&s.LegalAdviceRefusal,
		&s.ObjectionHandling,
		&s.Streaming,
		&s.UseKnowledgeBase,
		&s.MaxResponseLength,
		&s.Temperature,
		&s.PromptVerbosity,
		&s.ActiveModel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load assistant settings: %w", err)
	}
	return s, nil
}
