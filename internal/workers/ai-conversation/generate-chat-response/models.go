package generatechatresponse

import "bailey-assistant/internal/assistant/chat"

type Input struct {
	Message   string      `json:"message"`
	History   []chat.Turn `json:"history,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	UserEmail string      `json:"userEmail,omitempty"`
}

type Output struct {
	Response    chat.GeneratedResponse `json:"response"`
	IsEmergency bool                   `json:"isEmergency"`
	Intent      string                 `json:"intent"`
}

const inputSchema = `{
  "type": "object",
  "required": ["message"],
  "properties": {
    "message":   {"type": "string", "minLength": 1, "maxLength": 4000},
    "sessionId": {"type": "string"},
    "userId":    {"type": "string"},
    "userEmail": {"type": "string"},
    "history": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["role", "content"],
        "properties": {
          "role":    {"type": "string", "enum": ["user", "assistant"]},
          "content": {"type": "string"}
        }
      }
    }
  }
}`
