package memory

import (
	"regexp"
	"strings"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

var wordRe = regexp.MustCompile(`\b\w+\b`)

var topicKeywords = []struct {
	Topic    string
	Keywords []string
}{
	{"family", []string{"family", "parents", "children", "siblings", "mother", "father"}},
	{"work", []string{"job", "work", "office", "career", "meeting", "project"}},
	{"food", []string{"food", "restaurant", "eat", "drink", "meal", "hungry"}},
	{"travel", []string{"travel", "trip", "vacation", "flight", "hotel", "visit"}},
	{"hobbies", []string{"hobby", "music", "sports", "reading", "movie", "game"}},
}

// AnalyzeUserMessage adds words longer than three characters to the
// vocabulary set and counts keyword mentions per topic. Keywords match as
// substrings, so "homework" counts toward work.
func AnalyzeUserMessage(message string, m *model.UserMemory) {
	normalize(m)
	lower := strings.ToLower(message)

	known := make(map[string]bool, len(m.ConversationPatterns.VocabularyUsed))
	for _, w := range m.ConversationPatterns.VocabularyUsed {
		known[w] = true
	}
	for _, w := range wordRe.FindAllString(lower, -1) {
		if len(w) > 3 && !known[w] {
			known[w] = true
			m.ConversationPatterns.VocabularyUsed = append(m.ConversationPatterns.VocabularyUsed, w)
		}
	}

	for _, tk := range topicKeywords {
		mentions := 0
		for _, kw := range tk.Keywords {
			if strings.Contains(lower, kw) {
				mentions++
			}
		}
		if mentions > 0 {
			m.ConversationPatterns.CommonTopics[tk.Topic] += mentions
		}
	}
}
