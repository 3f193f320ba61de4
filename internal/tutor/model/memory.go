package model

import "time"

// Level is the heuristic proficiency estimate.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

type UserProfile struct {
	NativeLanguage      string   `json:"nativeLanguage"`
	PreferredDifficulty string   `json:"preferredDifficulty"`
	LearningGoals       []string `json:"learningGoals"`
	Interests           []string `json:"interests"`
	CommonMistakes      []string `json:"commonMistakes"`
	ImprovementAreas    []string `json:"improvementAreas"`
}

type ScenarioStats struct {
	Title                      string     `json:"title"`
	StartCount                 int        `json:"startCount"`
	CompletionCount            int        `json:"completionCount"`
	AverageObjectivesCompleted float64    `json:"averageObjectivesCompleted"`
	LastAccessed               *time.Time `json:"lastAccessed"`
	Difficulty                 string     `json:"difficulty"`
}

type StruggleRecord struct {
	Title        string    `json:"title"`
	Struggles    int       `json:"struggles"`
	LastStruggle time.Time `json:"lastStruggle"`
}

type ScenarioPreferences struct {
	FavoriteScenarios   map[string]*ScenarioStats  `json:"favoriteScenarios"`
	StrugglingScenarios map[string]*StruggleRecord `json:"strugglingScenarios"`
	RequestedTopics     []string                   `json:"requestedTopics"`
}

type ConversationPatterns struct {
	CommonTopics   map[string]int `json:"commonTopics"`
	VocabularyUsed []string       `json:"vocabularyUsed"`
	ResponseStyle  string         `json:"responseStyle"`
}

type AdaptationSettings struct {
	PersonalizedRecommendations bool `json:"personalizedRecommendations"`
	DynamicScenarios            bool `json:"dynamicScenarios"`
	DifficultyAdjustment        bool `json:"difficultyAdjustment"`
}

// LearnedEntry is a mastered word or phrase keyed by its lower-cased English form.
type LearnedEntry struct {
	English     string    `json:"english"`
	Translation string    `json:"translation"`
	Confidence  float64   `json:"confidence"`
	LearnedDate time.Time `json:"learnedDate"`
	LastSeen    time.Time `json:"lastSeen"`
	UsageCount  int       `json:"usageCount"`
	Contexts    []string  `json:"contexts"`
	Type        string    `json:"type,omitempty"`
}

type LearnedWords struct {
	MasteredVocabulary map[string]*LearnedEntry `json:"masteredVocabulary"`
}

type LearnedPhrases struct {
	MasteredPhrases map[string]*LearnedEntry `json:"masteredPhrases"`
}

// UserMemory is the single persisted personalization blob.
type UserMemory struct {
	UserProfile          UserProfile          `json:"userProfile"`
	ScenarioPreferences  ScenarioPreferences  `json:"scenarioPreferences"`
	ConversationPatterns ConversationPatterns `json:"conversationPatterns"`
	AdaptationSettings   AdaptationSettings   `json:"adaptationSettings"`
	LearnedWords         LearnedWords         `json:"learnedWords"`
	LearnedPhrases       LearnedPhrases       `json:"learnedPhrases"`
	LastUpdated          time.Time            `json:"lastUpdated"`
}

// ConversationEntry is one logged exchange; only the most recent 50 are kept.
type ConversationEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	ScenarioID    string    `json:"scenarioId"`
	UserMessage   string    `json:"userMessage"`
	AIResponse    string    `json:"aiResponse"`
	MessageLength int       `json:"messageLength"`
	WordCount     int       `json:"wordCount"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type ScenarioSummary struct {
	ID string `json:"id"`
	ScenarioStats
}

type ActivityLevel struct {
	MessagesThisWeek int     `json:"messagesThisWeek"`
	AveragePerDay    float64 `json:"averagePerDay"`
}

type Recommendation struct {
	Type       string `json:"type"`
	Priority   string `json:"priority"`
	Message    string `json:"message"`
	ScenarioID string `json:"scenarioId,omitempty"`
	Topic      string `json:"topic,omitempty"`
}

type InsightPreferences struct {
	FavoriteScenarios []ScenarioSummary          `json:"favoriteScenarios"`
	StrugglingAreas   map[string]*StruggleRecord `json:"strugglingAreas"`
	CommonTopics      []TopicCount               `json:"commonTopics"`
	RecentActivity    []ConversationEntry        `json:"recentActivity"`
}

type InsightPatterns struct {
	AverageMessageLength int           `json:"averageMessageLength"`
	VocabularyDiversity  int           `json:"vocabularyDiversity"`
	ActivityLevel        ActivityLevel `json:"activityLevel"`
}

// Insights is the read model derived from UserMemory and the conversation log.
type Insights struct {
	Profile         UserProfile        `json:"profile"`
	Preferences     InsightPreferences `json:"preferences"`
	Patterns        InsightPatterns    `json:"patterns"`
	Recommendations []Recommendation   `json:"recommendations"`
}

// Personalization is the compact summary appended to a personalized prompt.
type Personalization struct {
	NativeLanguage      string   `json:"nativeLanguage"`
	Level               Level    `json:"level"`
	VocabularyDiversity int      `json:"vocabularyDiversity"`
	TopTopics           []string `json:"topTopics"`
	StruggleCount       int      `json:"struggleCount"`
}
