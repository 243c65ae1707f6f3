package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bailey-assistant/internal/assistant"
	"bailey-assistant/internal/assistant/chat"
	"bailey-assistant/internal/assistant/settings"
	"bailey-assistant/internal/common/config"
	apperrors "bailey-assistant/internal/common/errors"
	"bailey-assistant/internal/common/logger"
)

type stubStore struct {
	invalidated int
	err         error
}

func (s *stubStore) Get(context.Context) settings.Settings { return settings.Defaults() }

func (s *stubStore) Invalidate(context.Context) error {
	s.invalidated++
	return s.err
}

type stubReadiness struct{ err error }

func (s stubReadiness) Check(context.Context) error { return s.err }

func newTestServer(t *testing.T, cfg config.HTTPConfig, store settings.Store, ready ReadinessChecker) *Server {
	t.Helper()
	engine, err := assistant.New(assistant.Deps{Logger: logger.NewTestLogger(t), Settings: store})
	require.NoError(t, err)
	return NewServer(cfg, engine, store, ready, logger.NewTestLogger(t))
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ========================================
// POST /api/chat
// ========================================

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{}, nil, nil)

	rec := post(srv.Handler(), "/api/chat", `{"message":"What is a Tenant Doctor arrangement?","sessionId":"web-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp chat.GeneratedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tenant_doctor", resp.Intent)
	assert.Equal(t, "web-1", resp.SessionID)
	assert.True(t, resp.ShowDisclaimer)
}

func TestHandleChat_BadRequests(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{MaxBodyBytes: 256}, nil, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty message", `{"message":"   "}`, http.StatusBadRequest},
		{"missing message", `{}`, http.StatusBadRequest},
		{"malformed json", `{"message":`, http.StatusBadRequest},
		{"body too large", `{"message":"` + strings.Repeat("a", 1024) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(srv.Handler(), "/api/chat", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(apperrors.ErrCodeChatInputInvalid), body.Error.Code)
		})
	}
}

func TestHandleChat_MessageTooLong(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{MaxBodyBytes: 1 << 20}, nil, nil)
	rec := post(srv.Handler(), "/api/chat", `{"message":"`+strings.Repeat("b", MaxMessageRunes+1)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{}, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ========================================
// POST /api/chat/stream
// ========================================

func TestHandleChatStream(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{}, nil, nil)
	rec := post(srv.Handler(), "/api/chat/stream", `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events []string
	var lastData string
	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
		if strings.HasPrefix(line, "data: ") {
			lastData = strings.TrimPrefix(line, "data: ")
		}
	}

	require.GreaterOrEqual(t, len(events), 3)
	assert.Equal(t, "start", events[0])
	assert.Equal(t, "complete", events[len(events)-1])
	for _, e := range events[1 : len(events)-1] {
		assert.Equal(t, "delta", e)
	}

	var complete chat.Chunk
	require.NoError(t, json.Unmarshal([]byte(lastData), &complete))
	require.NotNil(t, complete.Metadata)
	require.NotNil(t, complete.Metadata.Response)
	assert.Equal(t, "greeting", complete.Metadata.Response.Intent)
}

func TestHandleChatStream_EmptyMessage(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{}, nil, nil)
	rec := post(srv.Handler(), "/api/chat/stream", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ========================================
// Admin, health and CORS
// ========================================

func TestHandleInvalidateSettings(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(t, config.HTTPConfig{}, store, nil)

	rec := post(srv.Handler(), "/api/admin/settings/invalidate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, store.invalidated)

	store.err = apperrors.NewSettingsLoadFailedError(errors.New("redis down"))
	rec = post(srv.Handler(), "/api/admin/settings/invalidate", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrCodeSettingsLoadFailed), body.Error.Code)
}

func TestHealthAndReady(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ready      ReadinessChecker
		wantStatus int
	}{
		{"health", "/health", nil, http.StatusOK},
		{"ready without checks", "/ready", nil, http.StatusOK},
		{"ready", "/ready", stubReadiness{}, http.StatusOK},
		{"not ready", "/ready", stubReadiness{err: errors.New("postgres: connection refused")}, http.StatusServiceUnavailable},
		{"metrics", "/metrics", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, config.HTTPConfig{}, nil, tt.ready)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, config.HTTPConfig{AllowedOrigins: []string{"https://www.example.com.au"}}, nil, nil)

	allowed := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	allowed.Header.Set("Origin", "https://www.example.com.au")
	allowed.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, allowed)
	assert.Equal(t, "https://www.example.com.au", rec.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	denied.Header.Set("Origin", "https://evil.example.net")
	denied.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, denied)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
