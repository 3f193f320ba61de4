package model

import "time"

type Objective struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// CloneObjectives returns a copy that can be mutated without touching the source.
func CloneObjectives(in []Objective) []Objective {
	if in == nil {
		return nil
	}
	out := make([]Objective, len(in))
	copy(out, in)
	return out
}

// ScenarioMetadata records how a generated scenario was derived.
type ScenarioMetadata struct {
	GeneratedFrom   string    `json:"generatedFrom,omitempty"`
	Template        string    `json:"template,omitempty"`
	Category        string    `json:"category,omitempty"`
	BasedOnScenario string    `json:"basedOnScenario,omitempty"`
	StrugglesCount  int       `json:"strugglesCount,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Scenario is either a static catalog entry or a generated variant whose id
// carries a dynamic-, agentic-, practice- or adaptive- prefix.
type Scenario struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IconName    string            `json:"iconName"`
	Status      string            `json:"status"`
	Type        string            `json:"type,omitempty"`
	Difficulty  Level             `json:"difficulty,omitempty"`
	Context     string            `json:"context,omitempty"`
	Character   string            `json:"character,omitempty"`
	Objectives  []Objective       `json:"objectives"`
	Metadata    *ScenarioMetadata `json:"metadata,omitempty"`
}
