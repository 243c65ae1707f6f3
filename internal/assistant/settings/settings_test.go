package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bailey-assistant/internal/common/config"
	"bailey-assistant/internal/common/logger"
)

type stubSource struct {
	settings Settings
	err      error
	calls    int
}

func (s *stubSource) Load(context.Context) (Settings, error) {
	s.calls++
	return s.settings, s.err
}

// ========================================
// Settings
// ========================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want func(t *testing.T, s Settings)
	}{
		{"zero length takes default", Settings{}, func(t *testing.T, s Settings) {
			assert.Equal(t, 1000, s.MaxResponseLength)
			assert.Equal(t, "standard", s.PromptVerbosity)
			assert.Equal(t, "knowledge-base", s.ActiveModel)
		}},
		{"short length clamped", Settings{MaxResponseLength: 10}, func(t *testing.T, s Settings) {
			assert.Equal(t, MinResponseLength, s.MaxResponseLength)
		}},
		{"long length clamped", Settings{MaxResponseLength: 99999}, func(t *testing.T, s Settings) {
			assert.Equal(t, MaxResponseLength, s.MaxResponseLength)
		}},
		{"temperature clamped", Settings{Temperature: 3.5}, func(t *testing.T, s Settings) {
			assert.Equal(t, MaxTemperature, s.Temperature)
		}},
		{"negative temperature", Settings{Temperature: -1}, func(t *testing.T, s Settings) {
			assert.Equal(t, 0.0, s.Temperature)
		}},
		{"valid verbosity kept", Settings{PromptVerbosity: "detailed", ActiveModel: "gpt-4o"}, func(t *testing.T, s Settings) {
			assert.Equal(t, "detailed", s.PromptVerbosity)
			assert.Equal(t, "gpt-4o", s.ActiveModel)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, tt.in.Normalize())
		})
	}
}

func TestFromConfig(t *testing.T) {
	s := FromConfig(config.SettingsDefaults{
		EmergencyDetection: true,
		ObjectionHandling:  true,
		MaxResponseLength:  600,
		Temperature:        0.3,
		PromptVerbosity:    "concise",
		ActiveModel:        "claude-haiku",
	})

	assert.True(t, s.EmergencyDetection)
	assert.False(t, s.LegalAdviceRefusal)
	assert.Equal(t, 600, s.MaxResponseLength)
	assert.Equal(t, "concise", s.PromptVerbosity)

	flags := s.SafetyFlags()
	assert.True(t, flags.EmergencyDetection)
	assert.False(t, flags.LegalAdviceRefusal)
	assert.True(t, flags.ObjectionHandling)
}

func TestStaticStore(t *testing.T) {
	store := NewStaticStore(Settings{Temperature: 9})
	assert.Equal(t, MaxTemperature, store.Get(context.Background()).Temperature)
	assert.NoError(t, store.Invalidate(context.Background()))
}

// ========================================
// CachedStore
// ========================================

func newMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedStore_MissLoadsAndCaches(t *testing.T) {
	rdb := newMiniredis(t)
	want := Defaults()
	want.ActiveModel = "gpt-4o-mini"
	src := &stubSource{settings: want}

	store := NewCachedStore(rdb, src, Defaults(), time.Minute, logger.NewTestLogger(t))

	got := store.Get(context.Background())
	assert.Equal(t, "gpt-4o-mini", got.ActiveModel)
	assert.Equal(t, 1, src.calls)

	// second read is served from the cache
	got = store.Get(context.Background())
	assert.Equal(t, "gpt-4o-mini", got.ActiveModel)
	assert.Equal(t, 1, src.calls)

	ttl := rdb.TTL(context.Background(), CacheKey).Val()
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCachedStore_Invalidate(t *testing.T) {
	rdb := newMiniredis(t)
	src := &stubSource{settings: Defaults()}
	store := NewCachedStore(rdb, src, Defaults(), time.Minute, logger.NewTestLogger(t))

	store.Get(context.Background())
	require.NoError(t, store.Invalidate(context.Background()))

	src.settings.Streaming = false
	got := store.Get(context.Background())
	assert.False(t, got.Streaming)
	assert.Equal(t, 2, src.calls)
}

func TestCachedStore_SourceErrorReturnsDefaults(t *testing.T) {
	defaults := Defaults()
	defaults.PromptVerbosity = "concise"

	store := NewCachedStore(newMiniredis(t), &stubSource{err: errors.New("db down")}, defaults, time.Minute, logger.NewTestLogger(t))
	assert.Equal(t, "concise", store.Get(context.Background()).PromptVerbosity)
}

func TestCachedStore_NotFoundUsesDefaults(t *testing.T) {
	rdb := newMiniredis(t)
	store := NewCachedStore(rdb, &stubSource{err: ErrNotFound}, Defaults(), time.Minute, logger.NewTestLogger(t))

	got := store.Get(context.Background())
	assert.Equal(t, Defaults(), got)
	assert.Equal(t, int64(1), rdb.Exists(context.Background(), CacheKey).Val())
}

func TestCachedStore_CorruptCacheReloads(t *testing.T) {
	rdb := newMiniredis(t)
	require.NoError(t, rdb.Set(context.Background(), CacheKey, "{not json", 0).Err())

	src := &stubSource{settings: Defaults()}
	store := NewCachedStore(rdb, src, Defaults(), time.Minute, logger.NewTestLogger(t))
	store.Get(context.Background())
	assert.Equal(t, 1, src.calls)
}

func TestCachedStore_RedisDown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(CacheKey).SetErr(errors.New("connection refused"))

	want := Defaults()
	want.Temperature = 0.2
	payload, err := json.Marshal(want)
	require.NoError(t, err)
	mock.ExpectSet(CacheKey, payload, time.Minute).SetErr(errors.New("connection refused"))

	src := &stubSource{settings: want}
	store := NewCachedStore(rdb, src, Defaults(), time.Minute, logger.NewTestLogger(t))

	got := store.Get(context.Background())
	assert.Equal(t, 0.2, got.Temperature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_InvalidateError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel(CacheKey).SetErr(errors.New("connection refused"))

	store := NewCachedStore(rdb, nil, Defaults(), time.Minute, logger.NewTestLogger(t))
	assert.Error(t, store.Invalidate(context.Background()))
}

// ========================================
// PostgresSource
// ========================================

func TestPostgresSource_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"emergency_detection", "legal_advice_refusal", "objection_handling", "streaming",
		"use_knowledge_base", "max_response_length", "temperature", "prompt_verbosity", "active_model",
	}).AddRow(true, false, true, false, true, 800, 0.4, "detailed", "claude-haiku")
	mock.ExpectQuery("SELECT emergency_detection").WillReturnRows(rows)

	s, err := NewPostgresSource(db).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, s.LegalAdviceRefusal)
	assert.Equal(t, 800, s.MaxResponseLength)
	assert.Equal(t, "claude-haiku", s.ActiveModel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT emergency_detection").WillReturnRows(sqlmock.NewRows([]string{"emergency_detection"}))

	_, err = NewPostgresSource(db).Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
