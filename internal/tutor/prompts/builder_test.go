package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/observers"
)

var phoneObjectives = []model.Objective{
	{ID: "phone-1", Text: "Ask how is your friend doing"},
	{ID: "phone-2", Text: "Ask how is everyone at his home"},
	{ID: "phone-3", Text: "Ask how is his work pressure"},
	{ID: "phone-4", Text: "Ask about his holiday plans for the weekend"},
}

func TestBuildBasePrompt(t *testing.T) {
	b := NewBuilder(observers.NewPromptCallbacks())

	out, err := b.Build(context.Background(), Input{
		ScenarioTitle: "Over a phone call",
		Objectives:    phoneObjectives,
		Language:      "hindi",
	})
	require.NoError(t, err)

	assert.Contains(t, out, `"Over a phone call"`)
	assert.Contains(t, out, "first language is hindi")
	assert.Contains(t, out, "[1] Ask how is your friend doing")
	assert.Contains(t, out, "[4] Ask about his holiday plans for the weekend")
	assert.Contains(t, out, `You should say: "corrected sentence"`)
	assert.Contains(t, out, `You could say: "corrected sentence"`)
	assert.Contains(t, out, "literal hindi translation")
	assert.NotContains(t, out, "RESPONSE FORMAT")
	assert.NotContains(t, out, "USER PERSONALIZATION")
}

func TestBuildStructuredPrompt(t *testing.T) {
	out, err := NewBuilder().Build(context.Background(), Input{
		ScenarioTitle: "At a restaurant",
		Objectives:    phoneObjectives,
		Language:      "tamil",
		Structured:    true,
	})
	require.NoError(t, err)

	assert.Contains(t, out, "RESPONSE FORMAT")
	assert.Contains(t, out, `"englishResponse"`)
	assert.Contains(t, out, `"learnedPhrases"`)
	assert.Contains(t, out, "literal tamil translation of englishResponse")
}

func TestBuildPersonalizedPrompt(t *testing.T) {
	out, err := NewBuilder().Build(context.Background(), Input{
		ScenarioTitle: "Job Interview Practice - Office",
		Objectives:    phoneObjectives,
		Language:      "marathi",
		Personalization: &model.Personalization{
			NativeLanguage:      "marathi",
			Level:               model.Intermediate,
			VocabularyDiversity: 42,
			TopTopics:           []string{"work", "food", "travel", "family"},
			StruggleCount:       2,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "USER PERSONALIZATION")
	assert.Contains(t, out, "Estimated level: intermediate")
	assert.Contains(t, out, "familiarity with 42 vocabulary words")
	assert.Contains(t, out, "Often talks about: work, food, travel")
	assert.NotContains(t, out, "family")
	assert.Contains(t, out, "struggled with 2 scenarios")
	assert.Contains(t, out, "ADAPTATION INSTRUCTIONS")
}

func TestBuildPersonalizedPromptOmitsEmptySignals(t *testing.T) {
	out, err := NewBuilder().Build(context.Background(), Input{
		ScenarioTitle:   "Coffee",
		Objectives:      phoneObjectives,
		Language:        "bengali",
		Personalization: &model.Personalization{VocabularyDiversity: 5},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Native language: bengali")
	assert.Contains(t, out, "Estimated level: beginner")
	assert.NotContains(t, out, "vocabulary words")
	assert.NotContains(t, out, "Often talks about")
	assert.NotContains(t, out, "extra support")
}

func TestBuildRejectsEmptyTitle(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(), Input{Language: "hindi"})
	require.Error(t, err)
}
