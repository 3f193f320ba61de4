package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// Filter selects a subset of learned items.
type Filter string

const (
	FilterAll            Filter = "all"
	FilterRecent         Filter = "recent"
	FilterHighConfidence Filter = "high-confidence"
)

const week = 7 * 24 * time.Hour

// ProcessLearnedWords merges AI-reported words into the mastered vocabulary
// and returns how many entries were added or updated.
func (s *Store) ProcessLearnedWords(ctx context.Context, items []model.LearnedItem, scenarioID string) (int, error) {
	var changed int
	err := s.update(ctx, func(m *model.UserMemory) error {
		changed = s.tuning.mergeLearned(m.LearnedWords.MasteredVocabulary, items, scenarioID, s.now(), false)
		return nil
	})
	return changed, err
}

func (s *Store) ProcessLearnedPhrases(ctx context.Context, items []model.LearnedItem, scenarioID string) (int, error) {
	var changed int
	err := s.update(ctx, func(m *model.UserMemory) error {
		changed = s.tuning.mergeLearned(m.LearnedPhrases.MasteredPhrases, items, scenarioID, s.now(), true)
		return nil
	})
	return changed, err
}

// mergeLearned admits unseen items only at AdmissionThreshold or above. A
// known item blends the reported confidence in regardless of its value.
func (t Tuning) mergeLearned(entries map[string]*model.LearnedEntry, items []model.LearnedItem, scenarioID string, now time.Time, phrases bool) int {
	changed := 0
	for _, it := range items {
		english := strings.TrimSpace(it.English)
		if english == "" {
			continue
		}
		key := strings.ToLower(english)

		if e, ok := entries[key]; ok {
			e.Confidence = t.MergeConfidence(e.Confidence, it.Confidence)
			e.UsageCount++
			e.LastSeen = now
			if scenarioID != "" && !slices.Contains(e.Contexts, scenarioID) {
				e.Contexts = append(e.Contexts, scenarioID)
			}
			if e.Translation == "" {
				e.Translation = it.Translation
			}
			changed++
			continue
		}

		if it.Confidence < t.AdmissionThreshold {
			continue
		}
		e := &model.LearnedEntry{
			English:     english,
			Translation: it.Translation,
			Confidence:  it.Confidence,
			LearnedDate: now,
			LastSeen:    now,
			UsageCount:  1,
			Contexts:    []string{},
		}
		if scenarioID != "" {
			e.Contexts = append(e.Contexts, scenarioID)
		}
		if phrases {
			e.Type = it.Type
		}
		entries[key] = e
		changed++
	}
	return changed
}

// LearnedWords lists mastered words, newest first, narrowed by filter and a
// case-insensitive search over the English text and translation.
func (s *Store) LearnedWords(ctx context.Context, filter Filter, search string) ([]model.LearnedEntry, error) {
	m, err := s.Memory(ctx)
	if err != nil {
		return nil, err
	}
	return selectEntries(m.LearnedWords.MasteredVocabulary, filter, search, s.now()), nil
}

func (s *Store) LearnedPhrases(ctx context.Context, filter Filter, search string) ([]model.LearnedEntry, error) {
	m, err := s.Memory(ctx)
	if err != nil {
		return nil, err
	}
	return selectEntries(m.LearnedPhrases.MasteredPhrases, filter, search, s.now()), nil
}

func selectEntries(entries map[string]*model.LearnedEntry, filter Filter, search string, now time.Time) []model.LearnedEntry {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]model.LearnedEntry, 0, len(entries))
	for _, e := range entries {
		if search != "" &&
			!strings.Contains(strings.ToLower(e.English), search) &&
			!strings.Contains(strings.ToLower(e.Translation), search) {
			continue
		}
		switch filter {
		case FilterRecent:
			if !e.LearnedDate.After(now.Add(-week)) {
				continue
			}
		case FilterHighConfidence:
			if e.Confidence < 0.9 {
				continue
			}
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LearnedDate.Equal(out[j].LearnedDate) {
			return out[i].LearnedDate.After(out[j].LearnedDate)
		}
		return out[i].English < out[j].English
	})
	return out
}

// LearningStats summarizes words and phrases together.
type LearningStats struct {
	TotalWords        int     `json:"totalWords"`
	TotalPhrases      int     `json:"totalPhrases"`
	AverageConfidence float64 `json:"averageConfidence"`
	LearnedThisWeek   int     `json:"learnedThisWeek"`
}

func (s *Store) Stats(ctx context.Context) (LearningStats, error) {
	m, err := s.Memory(ctx)
	if err != nil {
		return LearningStats{}, err
	}
	now := s.now()
	st := LearningStats{
		TotalWords:   len(m.LearnedWords.MasteredVocabulary),
		TotalPhrases: len(m.LearnedPhrases.MasteredPhrases),
	}
	var sum float64
	for _, group := range []map[string]*model.LearnedEntry{m.LearnedWords.MasteredVocabulary, m.LearnedPhrases.MasteredPhrases} {
		for _, e := range group {
			sum += e.Confidence
			if e.LearnedDate.After(now.Add(-week)) {
				st.LearnedThisWeek++
			}
		}
	}
	if total := st.TotalWords + st.TotalPhrases; total > 0 {
		st.AverageConfidence = sum / float64(total)
	}
	return st, nil
}
