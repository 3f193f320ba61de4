package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// Insights derives the read model used for scenario generation and
// prompt personalization.
func (s *Store) Insights(ctx context.Context) (*model.Insights, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	return buildInsights(m, history, s.now()), nil
}

func buildInsights(m *model.UserMemory, history []model.ConversationEntry, now time.Time) *model.Insights {
	recent := history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	return &model.Insights{
		Profile: m.UserProfile,
		Preferences: model.InsightPreferences{
			FavoriteScenarios: topScenarios(m.ScenarioPreferences.FavoriteScenarios, 3),
			StrugglingAreas:   m.ScenarioPreferences.StrugglingScenarios,
			CommonTopics:      topTopics(m.ConversationPatterns.CommonTopics, 5),
			RecentActivity:    append([]model.ConversationEntry{}, recent...),
		},
		Patterns: model.InsightPatterns{
			AverageMessageLength: averageMessageLength(history),
			VocabularyDiversity:  len(m.ConversationPatterns.VocabularyUsed),
			ActivityLevel:        activityLevel(history, now),
		},
		Recommendations: recommendations(m),
	}
}

// ties are broken by id so the order does not depend on map iteration
func topScenarios(stats map[string]*model.ScenarioStats, limit int) []model.ScenarioSummary {
	out := make([]model.ScenarioSummary, 0, len(stats))
	for id, st := range stats {
		out = append(out, model.ScenarioSummary{ID: id, ScenarioStats: *st})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartCount != out[j].StartCount {
			return out[i].StartCount > out[j].StartCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topTopics(counts map[string]int, limit int) []model.TopicCount {
	out := make([]model.TopicCount, 0, len(counts))
	for topic, n := range counts {
		out = append(out, model.TopicCount{Topic: topic, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func averageMessageLength(history []model.ConversationEntry) int {
	if len(history) == 0 {
		return 0
	}
	total := 0
	for _, e := range history {
		total += e.MessageLength
	}
	return int(math.Round(float64(total) / float64(len(history))))
}

func activityLevel(history []model.ConversationEntry, now time.Time) model.ActivityLevel {
	since := now.Add(-week)
	n := 0
	for _, e := range history {
		if e.Timestamp.After(since) {
			n++
		}
	}
	return model.ActivityLevel{
		MessagesThisWeek: n,
		AveragePerDay:    math.Round(float64(n)/7*10) / 10,
	}
}

func recommendations(m *model.UserMemory) []model.Recommendation {
	out := []model.Recommendation{}

	ids := make([]string, 0, len(m.ScenarioPreferences.StrugglingScenarios))
	for id := range m.ScenarioPreferences.StrugglingScenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec := m.ScenarioPreferences.StrugglingScenarios[id]
		if rec.Struggles > 2 {
			out = append(out, model.Recommendation{
				Type:       "scenario_practice",
				Priority:   "high",
				Message:    fmt.Sprintf("Practice more with %q - you've had difficulty with this scenario", rec.Title),
				ScenarioID: id,
			})
		}
	}

	for _, tc := range topTopics(m.ConversationPatterns.CommonTopics, 3) {
		out = append(out, model.Recommendation{
			Type:     "scenario_suggestion",
			Priority: "medium",
			Message:  fmt.Sprintf("Try scenarios related to %s - you often discuss this topic", tc.Topic),
			Topic:    tc.Topic,
		})
	}

	if favs := m.ScenarioPreferences.FavoriteScenarios; len(favs) > 0 {
		var sum float64
		for _, st := range favs {
			sum += st.AverageObjectivesCompleted
		}
		if sum/float64(len(favs)) > 0.8 {
			out = append(out, model.Recommendation{
				Type:     "difficulty_increase",
				Priority: "low",
				Message:  "Consider trying more challenging scenarios - you're doing great!",
			})
		}
	}
	return out
}

// DetermineLevel estimates the user level from the insight patterns.
func (s *Store) DetermineLevel(in *model.Insights) model.Level {
	if in == nil {
		return model.Beginner
	}
	return s.tuning.Level(in.Patterns)
}

// Personalization condenses insights into the block appended to the tutor
// system prompt.
func (s *Store) Personalization(ctx context.Context) (*model.Personalization, error) {
	in, err := s.Insights(ctx)
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, 3)
	for i, tc := range in.Preferences.CommonTopics {
		if i >= 3 {
			break
		}
		topics = append(topics, tc.Topic)
	}
	return &model.Personalization{
		NativeLanguage:      in.Profile.NativeLanguage,
		Level:               s.DetermineLevel(in),
		VocabularyDiversity: in.Patterns.VocabularyDiversity,
		TopTopics:           topics,
		StruggleCount:       len(in.Preferences.StrugglingAreas),
	}, nil
}
