package parsers

import (
	"regexp"
	"strings"
)

// Lead-in phrases that introduce a suggested correction, matched case-insensitively.
var correctionLeadIns = []string{
	"you should say",
	"you could say",
	"the correct way",
	"try saying",
	"we usually say",
	"it's better to say",
	"it’s better to say",
	"more natural to say",
	"you can say",
	"correct sentence is",
}

var (
	leadInRe       = buildLeadInRe()
	translationRe  = regexp.MustCompile(`(?s)\((.*?)\)`)
	doubleQuotedRe = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	singleQuotedRe = regexp.MustCompile(`(?:^|[\s:])'(.+?)'(?:[\s.,!?;:]|$)`)
	sentenceEndRe  = regexp.MustCompile(`(?i)[.!?]|\s(?:because|as|since)\s`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

func buildLeadInRe() *regexp.Regexp {
	quoted := make([]string, len(correctionLeadIns))
	for i, l := range correctionLeadIns {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// Correction is a suggested rewrite found in a tutor reply.
type Correction struct {
	// Main is the English text before the lead-in phrase.
	Main string
	// Suggestion is the corrected sentence the student should repeat.
	Suggestion string
	LeadIn     string
}

// ExtractCorrection finds the earliest lead-in phrase in the English part of
// reply. The suggestion is the first quoted span after it; without quotes it
// runs to the end of the sentence or an explanation word, else the next ten words.
func ExtractCorrection(reply string) (Correction, bool) {
	english, _ := SplitTranslation(reply)

	loc := leadInRe.FindStringIndex(english)
	if loc == nil {
		return Correction{}, false
	}
	rest := english[loc[1]:]

	suggestion := quotedSpan(rest)
	if suggestion == "" {
		if end := sentenceEndRe.FindStringIndex(rest); end != nil {
			suggestion = rest[:end[0]]
		} else {
			words := strings.Fields(rest)
			if len(words) > 10 {
				words = words[:10]
			}
			suggestion = strings.Join(words, " ")
		}
	}

	suggestion = cleanSuggestion(suggestion)
	if suggestion == "" {
		return Correction{}, false
	}

	return Correction{
		Main:       strings.TrimSpace(english[:loc[0]]),
		Suggestion: suggestion,
		LeadIn:     strings.ToLower(english[loc[0]:loc[1]]),
	}, true
}

func quotedSpan(s string) string {
	if m := doubleQuotedRe.FindStringSubmatch(s); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if m := singleQuotedRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func cleanSuggestion(s string) string {
	s = strings.Trim(s, ":\"'“” \t\n")
	return spaceRe.ReplaceAllString(s, " ")
}

// SplitTranslation separates the English text from the parenthesized
// translations. Multiple parentheticals are joined with a space.
func SplitTranslation(reply string) (english, translation string) {
	var parts []string
	for _, m := range translationRe.FindAllStringSubmatch(reply, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			parts = append(parts, t)
		}
	}
	english = strings.TrimSpace(spaceRe.ReplaceAllString(translationRe.ReplaceAllString(reply, ""), " "))
	return english, strings.Join(parts, " ")
}
