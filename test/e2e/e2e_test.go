//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bailey-assistant/internal/assistant"
	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/exchangelog"
	"bailey-assistant/internal/assistant/settings"
	"bailey-assistant/internal/common/camunda"
	"bailey-assistant/internal/common/config"
	"bailey-assistant/internal/common/database"
	"bailey-assistant/internal/common/logger"
)

// Requires the docker-compose stack: Postgres, Redis, Elasticsearch and a
// Zeebe gateway on their default localhost ports.

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = envOr("E2E_POSTGRES_HOST", "localhost")
	if cfg.Database.Postgres.Database == "" {
		cfg.Database.Postgres.Database = "bailey"
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = "postgres"
	}
	cfg.Database.Redis.Address = envOr("E2E_REDIS_ADDRESS", "localhost:6379")
	cfg.Database.Elasticsearch.URL = envOr("E2E_ELASTICSEARCH_URL", "http://localhost:9200")
	cfg.Database.Elasticsearch.Addresses = nil
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := loadConfig(t)
	log := logger.NewTestLogger(t)

	// ==========================
	// 1. Connectivity
	// ==========================
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "postgres client")
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "postgres ping")

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "redis ping")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(ctx), "elasticsearch ping")

	zeebe, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         envOr("E2E_ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
		MaxAttempts:            3,
	}, log)
	require.NoError(t, err, "zeebe topology")
	defer zeebe.Close()

	readiness := database.NewReadiness()
	readiness.Add("postgres", pg)
	readiness.Add("redis", rdb)
	readiness.Add("elasticsearch", es)
	readiness.Add("zeebe", zeebe)
	require.NoError(t, readiness.Check(ctx))

	// ==========================
	// 2. Migrations
	// ==========================
	require.NoError(t, pg.Migrate(ctx, settings.Migration, exchangelog.Migration, exchangelog.SessionIndexMigration))

	// ==========================
	// 3. Settings through Redis
	// ==========================
	store := settings.NewCachedStore(rdb.Client, settings.NewPostgresSource(pg.DB), settings.Defaults(), time.Minute, log)
	require.NoError(t, store.Invalidate(ctx))
	insertSettings(t, pg.DB, 250)

	got := store.Get(ctx)
	assert.Equal(t, 250, got.MaxResponseLength)
	cached, err := rdb.Client.Get(ctx, settings.CacheKey).Result()
	require.NoError(t, err)
	assert.Contains(t, cached, `"maxResponseLength":250`)
	require.NoError(t, store.Invalidate(ctx))

	// ==========================
	// 4. Engine with every sink
	// ==========================
	index := fmt.Sprintf("chat-exchanges-e2e-%d", time.Now().Unix())
	multi := exchangelog.NewMultiRepository(
		exchangelog.NewPostgresRepository(pg.DB),
		exchangelog.NewElasticsearchRepository(es.Client, index),
	)
	async := exchangelog.NewAsyncLogger(multi, 10*time.Second, log)

	engine, err := assistant.New(assistant.Deps{Settings: store, Exchanges: async, Logger: log})
	require.NoError(t, err)

	sessionID := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	resp := engine.GenerateResponse(ctx, "What is a Tenant Doctor arrangement?", nil, chat.Options{SessionID: sessionID})
	assert.Equal(t, "tenant_doctor", resp.Intent)
	require.NoError(t, async.Close(ctx))

	var intent string
	err = pg.DB.QueryRowContext(ctx, `SELECT intent FROM chat_exchanges WHERE session_id = $1`, sessionID).Scan(&intent)
	require.NoError(t, err)
	assert.Equal(t, "tenant_doctor", intent)

	assertIndexed(t, es.Client, index, sessionID)
}

func insertSettings(t *testing.T, db *sql.DB, maxLength int) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO assistant_settings (max_response_length) VALUES ($1)`, maxLength)
	require.NoError(t, err)
}

func assertIndexed(t *testing.T, es *elasticsearch.Client, index, sessionID string) {
	t.Helper()
	_, err := es.Indices.Refresh(es.Indices.Refresh.WithIndex(index))
	require.NoError(t, err)

	query := fmt.Sprintf(`{"query":{"term":{"sessionId.keyword":%q}}}`, sessionID)
	res, err := es.Search(es.Search.WithIndex(index), es.Search.WithBody(strings.NewReader(query)))
	require.NoError(t, err)
	defer res.Body.Close()
	require.False(t, res.IsError(), res.String())

	var body struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		} `json:"hits"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 1, body.Hits.Total.Value)
}
