package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/storage"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// Store is the read-modify-write personalization store over a KV backend.
// Updates are serialized within one process; separate processes sharing a
// backend can still lose updates.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	tuning Tuning
	now    func() time.Time
}

type Option func(*Store)

func WithTuning(t Tuning) Option {
	return func(s *Store) { s.tuning = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{kv: kv, tuning: DefaultTuning(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Tuning() Tuning {
	return s.tuning
}

func newMemory(now time.Time) *model.UserMemory {
	m := &model.UserMemory{
		UserProfile: model.UserProfile{
			NativeLanguage:      "hindi",
			PreferredDifficulty: string(model.Beginner),
			LearningGoals:       []string{},
			Interests:           []string{},
			CommonMistakes:      []string{},
			ImprovementAreas:    []string{},
		},
		ConversationPatterns: model.ConversationPatterns{
			VocabularyUsed: []string{},
			ResponseStyle:  "formal",
		},
		AdaptationSettings: model.AdaptationSettings{
			PersonalizedRecommendations: true,
			DynamicScenarios:            true,
			DifficultyAdjustment:        true,
		},
		LastUpdated: now,
	}
	normalize(m)
	return m
}

func normalize(m *model.UserMemory) {
	if m.ScenarioPreferences.FavoriteScenarios == nil {
		m.ScenarioPreferences.FavoriteScenarios = map[string]*model.ScenarioStats{}
	}
	if m.ScenarioPreferences.StrugglingScenarios == nil {
		m.ScenarioPreferences.StrugglingScenarios = map[string]*model.StruggleRecord{}
	}
	if m.ScenarioPreferences.RequestedTopics == nil {
		m.ScenarioPreferences.RequestedTopics = []string{}
	}
	if m.ConversationPatterns.CommonTopics == nil {
		m.ConversationPatterns.CommonTopics = map[string]int{}
	}
	if m.ConversationPatterns.VocabularyUsed == nil {
		m.ConversationPatterns.VocabularyUsed = []string{}
	}
	if m.LearnedWords.MasteredVocabulary == nil {
		m.LearnedWords.MasteredVocabulary = map[string]*model.LearnedEntry{}
	}
	if m.LearnedPhrases.MasteredPhrases == nil {
		m.LearnedPhrases.MasteredPhrases = map[string]*model.LearnedEntry{}
	}
}

// load reads the memory blob, creating and saving the default one on first
// use. A corrupt blob is replaced by the default.
func (s *Store) load(ctx context.Context) (*model.UserMemory, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyUserMemory)
	if err != nil {
		return nil, fmt.Errorf("load user memory: %w", err)
	}
	if ok {
		var m model.UserMemory
		err := json.Unmarshal([]byte(raw), &m)
		if err == nil {
			normalize(&m)
			return &m, nil
		}
		logx.Warn().Err(err).Msg("user memory is corrupt, starting over")
	}

	m := newMemory(s.now())
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) save(ctx context.Context, m *model.UserMemory) error {
	m.LastUpdated = s.now()
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal user memory: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyUserMemory, string(b)); err != nil {
		return fmt.Errorf("save user memory: %w", err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, fn func(m *model.UserMemory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.save(ctx, m)
}

func (s *Store) loadHistory(ctx context.Context) ([]model.ConversationEntry, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyConversationHistory)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}
	if !ok {
		return []model.ConversationEntry{}, nil
	}
	var history []model.ConversationEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		logx.Warn().Err(err).Msg("conversation history is corrupt, ignoring it")
		return []model.ConversationEntry{}, nil
	}
	return history, nil
}

func (s *Store) saveHistory(ctx context.Context, history []model.ConversationEntry) error {
	b, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal conversation history: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyConversationHistory, string(b)); err != nil {
		return fmt.Errorf("save conversation history: %w", err)
	}
	return nil
}

// Memory returns the current memory, initializing it on first use.
func (s *Store) Memory(ctx context.Context) (*model.UserMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ConversationHistory returns the logged exchanges, oldest first.
func (s *Store) ConversationHistory(ctx context.Context) ([]model.ConversationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory(ctx)
}

func (s *Store) UpdateProfile(ctx context.Context, fn func(p *model.UserProfile)) error {
	return s.update(ctx, func(m *model.UserMemory) error {
		fn(&m.UserProfile)
		return nil
	})
}

func (s *Store) RecordScenarioStart(ctx context.Context, scenarioID, title string) error {
	return s.update(ctx, func(m *model.UserMemory) error {
		stats, ok := m.ScenarioPreferences.FavoriteScenarios[scenarioID]
		if !ok {
			stats = &model.ScenarioStats{Title: title, Difficulty: "medium"}
			m.ScenarioPreferences.FavoriteScenarios[scenarioID] = stats
		}
		now := s.now()
		stats.StartCount++
		stats.LastAccessed = &now
		return nil
	})
}

// RecordScenarioCompletion folds one completion ratio into the rolling
// average. A rate above EasyRate marks the scenario easy; below HardRate it
// is marked hard and counted as a struggle. Unknown scenarios are ignored.
func (s *Store) RecordScenarioCompletion(ctx context.Context, scenarioID string, completed, total int) error {
	if total <= 0 {
		return errx.Validation("total objectives must be positive")
	}
	return s.update(ctx, func(m *model.UserMemory) error {
		stats, ok := m.ScenarioPreferences.FavoriteScenarios[scenarioID]
		if !ok {
			return nil
		}
		stats.CompletionCount++
		rate := float64(completed) / float64(total)
		n := float64(stats.CompletionCount)
		stats.AverageObjectivesCompleted = (stats.AverageObjectivesCompleted*(n-1) + rate) / n

		switch {
		case rate > s.tuning.EasyRate:
			stats.Difficulty = "easy"
		case rate < s.tuning.HardRate:
			stats.Difficulty = "hard"
			prev := 0
			if rec, ok := m.ScenarioPreferences.StrugglingScenarios[scenarioID]; ok {
				prev = rec.Struggles
			}
			m.ScenarioPreferences.StrugglingScenarios[scenarioID] = &model.StruggleRecord{
				Title:        stats.Title,
				Struggles:    prev + 1,
				LastStruggle: s.now(),
			}
		}
		return nil
	})
}

// RecordConversation analyzes the user message and appends the exchange to
// the conversation log, which keeps the most recent HistoryLimit entries.
func (s *Store) RecordConversation(ctx context.Context, userMessage, aiResponse, scenarioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	AnalyzeUserMessage(userMessage, m)

	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}
	history = append(history, model.ConversationEntry{
		Timestamp:     s.now(),
		ScenarioID:    scenarioID,
		UserMessage:   userMessage,
		AIResponse:    aiResponse,
		MessageLength: utf8.RuneCountInString(userMessage),
		WordCount:     len(strings.Split(userMessage, " ")),
	})
	if limit := s.tuning.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	if err := s.saveHistory(ctx, history); err != nil {
		return err
	}
	return s.save(ctx, m)
}
