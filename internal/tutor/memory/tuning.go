package memory

import "github.com/ai-english-tutor/server/internal/tutor/model"

// Tuning holds the heuristic constants used by the store. None of them are
// calibrated; they are exposed so deployments can adjust them.
type Tuning struct {
	// AdmissionThreshold is the minimum reported confidence for a new learned item.
	AdmissionThreshold float64 `envconfig:"MEMORY_ADMISSION_THRESHOLD" default:"0.7"`
	// KeepWeight is the share of the old confidence kept on a repeat sighting.
	KeepWeight float64 `envconfig:"MEMORY_KEEP_WEIGHT" default:"0.7"`

	EasyRate float64 `envconfig:"MEMORY_EASY_RATE" default:"0.8"`
	HardRate float64 `envconfig:"MEMORY_HARD_RATE" default:"0.4"`

	BeginnerMessageLength     int `envconfig:"MEMORY_BEGINNER_MESSAGE_LENGTH" default:"30"`
	BeginnerVocabulary        int `envconfig:"MEMORY_BEGINNER_VOCABULARY" default:"20"`
	IntermediateMessageLength int `envconfig:"MEMORY_INTERMEDIATE_MESSAGE_LENGTH" default:"60"`
	IntermediateVocabulary    int `envconfig:"MEMORY_INTERMEDIATE_VOCABULARY" default:"50"`

	HistoryLimit int `envconfig:"MEMORY_HISTORY_LIMIT" default:"50"`
}

func DefaultTuning() Tuning {
	return Tuning{
		AdmissionThreshold:        0.7,
		KeepWeight:                0.7,
		EasyRate:                  0.8,
		HardRate:                  0.4,
		BeginnerMessageLength:     30,
		BeginnerVocabulary:        20,
		IntermediateMessageLength: 60,
		IntermediateVocabulary:    50,
		HistoryLimit:              50,
	}
}

// MergeConfidence blends a new sighting into the stored confidence.
func (t Tuning) MergeConfidence(old, reported float64) float64 {
	return old*t.KeepWeight + reported*(1-t.KeepWeight)
}

// Level estimates proficiency: short messages or a small vocabulary mean
// beginner, and both thresholds must be cleared to move up a level.
func (t Tuning) Level(p model.InsightPatterns) model.Level {
	switch {
	case p.AverageMessageLength < t.BeginnerMessageLength || p.VocabularyDiversity < t.BeginnerVocabulary:
		return model.Beginner
	case p.AverageMessageLength < t.IntermediateMessageLength || p.VocabularyDiversity < t.IntermediateVocabulary:
		return model.Intermediate
	default:
		return model.Advanced
	}
}

// ConfidenceLevel labels a confidence value for display.
func ConfidenceLevel(c float64) string {
	switch {
	case c >= 0.9:
		return "expert"
	case c >= 0.8:
		return "proficient"
	case c >= 0.7:
		return "learning"
	default:
		return "beginner"
	}
}
