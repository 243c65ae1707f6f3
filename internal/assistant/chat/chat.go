// Package chat holds the value types shared by the assistant pipeline.
package chat

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message in the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options identify who is asking. All fields are optional.
type Options struct {
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

// Source tags where the final text came from.
type Source string

const (
	SourceAI            Source = "ai"
	SourceKnowledgeBase Source = "knowledge_base"
	SourceFallback      Source = "fallback"
)

// GeneratedResponse is the reply to one message.
type GeneratedResponse struct {
	Content              string   `json:"content"`
	Source               Source   `json:"source"`
	Intent               string   `json:"intent"`
	Confidence           float64  `json:"confidence"`
	KnowledgeUsed        []string `json:"knowledgeUsed"`
	XPAwarded            int      `json:"xpAwarded"`
	SuggestedActions     []string `json:"suggestedActions"`
	ShowDisclaimer       bool     `json:"showDisclaimer"`
	IsEmergency          bool     `json:"isEmergency,omitempty"`
	IsLegalAdviceRefusal bool     `json:"isLegalAdviceRefusal,omitempty"`
	ObjectionType        string   `json:"objectionType,omitempty"`
	Model                string   `json:"model,omitempty"`
	SessionID            string   `json:"sessionId,omitempty"`
	ResponseTimeMs       int64    `json:"responseTimeMs"`
}

// ChunkType is the stage of a streamed response.
type ChunkType string

const (
	ChunkStart    ChunkType = "start"
	ChunkDelta    ChunkType = "delta"
	ChunkComplete ChunkType = "complete"
	ChunkError    ChunkType = "error"
)

// ChunkMetadata is attached to start and complete chunks.
type ChunkMetadata struct {
	Intent     string             `json:"intent,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	Response   *GeneratedResponse `json:"response,omitempty"`
}

// Chunk is one element of a streamed response.
type Chunk struct {
	Type     ChunkType      `json:"type"`
	Content  string         `json:"content,omitempty"`
	Metadata *ChunkMetadata `json:"metadata,omitempty"`
}
