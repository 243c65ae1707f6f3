package classifychatmessage

type Input struct {
	Message string `json:"message"`
}

type IntentAnalysis struct {
	PrimaryIntent string  `json:"primaryIntent"`
	Confidence    float64 `json:"confidence"`
}

type SafetyOverride struct {
	Kind                 string `json:"kind"`
	IsEmergency          bool   `json:"isEmergency"`
	IsLegalAdviceRefusal bool   `json:"isLegalAdviceRefusal"`
	ObjectionType        string `json:"objectionType,omitempty"`
}

type Match struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

type Output struct {
	IntentAnalysis IntentAnalysis  `json:"intentAnalysis"`
	SafetyOverride *SafetyOverride `json:"safetyOverride,omitempty"`
	Matches        []Match         `json:"matches"`
	DataSources    []string        `json:"dataSources"`
}

const (
	SourceKnowledgeBase = "knowledge_base"
	SourceModel         = "model"
	SourceEscalation    = "escalation"
)

const inputSchema = `{
  "type": "object",
  "required": ["message"],
  "properties": {
    "message": {"type": "string", "minLength": 1, "maxLength": 4000}
  }
}`
