package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// ErrNotStructured means the reply is not a usable structured JSON object and
// should be treated as plain text.
var ErrNotStructured = errors.New("reply is not structured")

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

var phraseTypes = map[string]bool{
	"idiom":        true,
	"phrasal_verb": true,
	"expression":   true,
	"pattern":      true,
}

// ParseStructuredReply decodes the JSON reply requested by the structured
// prompt. englishResponse and localTranslation are required; learned items
// without English text or with a confidence outside [0,1] are dropped.
func ParseStructuredReply(content string) (*model.StructuredReply, error) {
	raw := strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, ErrNotStructured
	}

	var reply model.StructuredReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStructured, err)
	}

	reply.EnglishResponse = strings.TrimSpace(reply.EnglishResponse)
	reply.LocalTranslation = strings.TrimSpace(reply.LocalTranslation)
	if reply.EnglishResponse == "" || reply.LocalTranslation == "" {
		return nil, fmt.Errorf("%w: missing englishResponse or localTranslation", ErrNotStructured)
	}

	reply.LearnedWords = filterItems(reply.LearnedWords, false)
	reply.LearnedPhrases = filterItems(reply.LearnedPhrases, true)
	return &reply, nil
}

func filterItems(items []model.LearnedItem, phrases bool) []model.LearnedItem {
	out := make([]model.LearnedItem, 0, len(items))
	for _, it := range items {
		it.English = strings.TrimSpace(it.English)
		it.Translation = strings.TrimSpace(it.Translation)
		if it.English == "" || it.Confidence < 0 || it.Confidence > 1 {
			continue
		}
		if phrases {
			if !phraseTypes[it.Type] {
				it.Type = "expression"
			}
		} else {
			it.Type = ""
		}
		out = append(out, it)
	}
	return out
}
