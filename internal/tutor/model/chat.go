package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ModelID identifies one configured LLM provider route.
type ModelID string

const (
	Gemini   ModelID = "gemini"
	Mistral  ModelID = "mistral"
	Deepseek ModelID = "deepseek"
	Gemma    ModelID = "gemma"
	Nemotron ModelID = "nemotron"
)

// KnownModels lists every supported route in registry order.
var KnownModels = []ModelID{Gemini, Mistral, Deepseek, Gemma, Nemotron}

func (m ModelID) String() string {
	return string(m)
}

// ParseModelID accepts the wire value case-insensitively.
func ParseModelID(v string) (ModelID, bool) {
	id := ModelID(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range KnownModels {
		if id == known {
			return id, true
		}
	}
	return "", false
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one entry of the ordered, append-only turn history.
type ConversationMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToSchema converts the message to the eino representation used by the adapters.
func (m ConversationMessage) ToSchema() *schema.Message {
	switch m.Role {
	case RoleSystem:
		return schema.SystemMessage(m.Content)
	case RoleAssistant:
		return schema.AssistantMessage(m.Content, nil)
	default:
		return schema.UserMessage(m.Content)
	}
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message             string                `json:"message"`
	Language            string                `json:"language"`
	Model               string                `json:"model"`
	Scenario            string                `json:"scenario"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`

	// Optional extensions. Dynamic scenarios are not in the server catalog, so
	// the client may send their title and objectives along with the turn.
	Structured      bool             `json:"structured,omitempty"`
	ScenarioTitle   string           `json:"scenarioTitle,omitempty"`
	Objectives      []Objective      `json:"objectives,omitempty"`
	Personalization *Personalization `json:"personalization,omitempty"`
}

// MissingFields returns the names of required fields that are empty.
func (r ChatRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Message) == "" {
		missing = append(missing, "message")
	}
	if strings.TrimSpace(r.Language) == "" {
		missing = append(missing, "language")
	}
	if strings.TrimSpace(r.Model) == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(r.Scenario) == "" {
		missing = append(missing, "scenario")
	}
	return missing
}

// LearnedItem is a word or phrase the model reports the student has used correctly.
type LearnedItem struct {
	English     string  `json:"english"`
	Translation string  `json:"translation"`
	Confidence  float64 `json:"confidence"`
	// Type is set for phrases: idiom, phrasal_verb, expression or pattern.
	Type string `json:"type,omitempty"`
}

// StructuredReply is the JSON object requested by the structured prompt variant.
type StructuredReply struct {
	EnglishResponse  string        `json:"englishResponse"`
	LocalTranslation string        `json:"localTranslation"`
	LearnedWords     []LearnedItem `json:"learnedWords"`
	LearnedPhrases   []LearnedItem `json:"learnedPhrases"`
}

// ChatResponse is the body returned for a successful turn.
type ChatResponse struct {
	Reply          string        `json:"reply"`
	LearnedWords   []LearnedItem `json:"learnedWords"`
	LearnedPhrases []LearnedItem `json:"learnedPhrases"`
	Structured     bool          `json:"structured"`
	UsedFallback   bool          `json:"usedFallback"`
	FallbackModel  *string       `json:"fallbackModel"`
}
