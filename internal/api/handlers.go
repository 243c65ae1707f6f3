package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bailey-assistant/internal/assistant/chat"
	apperrors "bailey-assistant/internal/common/errors"
)

// MaxMessageRunes bounds a single chat message.
const MaxMessageRunes = 4000

type chatRequest struct {
	Message   string      `json:"message"`
	History   []chat.Turn `json:"history,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	UserEmail string      `json:"userEmail,omitempty"`
}

func (r chatRequest) options() chat.Options {
	return chat.Options{SessionID: r.SessionID, UserID: r.UserID, UserEmail: r.UserEmail}
}

type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, errorBody{Error: apiError{Code: code, Message: message, Details: details}})
}

// decodeChat reads and checks a chat request. It writes the error response
// itself and returns false when the request is unusable.
func (s *Server) decodeChat(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(apperrors.ErrCodeChatInputInvalid),
				"Request body too large", fmt.Sprintf("limit is %d bytes", s.config.MaxBodyBytes))
			return req, false
		}
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeChatInputInvalid), "Malformed JSON body", err.Error())
		return req, false
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeChatInputInvalid), "message is required", "")
		return req, false
	}
	if len([]rune(req.Message)) > MaxMessageRunes {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeChatInputInvalid), "message is too long",
			fmt.Sprintf("limit is %d characters", MaxMessageRunes))
		return req, false
	}
	return req, true
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChat(w, r)
	if !ok {
		return
	}

	resp := s.engine.GenerateResponse(r.Context(), req.Message, req.History, req.options())
	writeJSON(w, http.StatusOK, resp)
}

// handleChatStream writes one server-sent event per chunk, named by the
// chunk type.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChat(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming is not supported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for chunk := range s.engine.Stream(r.Context(), req.Message, req.History, req.options()) {
		data, err := json.Marshal(chunk)
		if err != nil {
			s.logger.Error("failed to encode chunk", map[string]interface{}{"error": err.Error()})
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", chunk.Type, data); err != nil {
			s.logger.Warn("client went away mid-stream", map[string]interface{}{"error": err.Error()})
			return
		}
		flusher.Flush()
	}
}

func (s *Server) handleInvalidateSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.settings.Invalidate(r.Context()); err != nil {
		stdErr := apperrors.Normalize(err)
		writeError(w, http.StatusServiceUnavailable, string(stdErr.Code), "Settings cache could not be cleared", stdErr.Details)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		if err := s.readiness.Check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}
