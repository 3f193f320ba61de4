package parsers

import (
	"regexp"
	"strings"
)

var leadInColonRe = regexp.MustCompile(leadInRe.String() + `\s*:?\s*`)

// SpeechText returns the English-only text to hand to a speech synthesizer:
// objective markers, translation parentheticals and correction lead-ins removed.
func SpeechText(reply string) string {
	english, _ := SplitTranslation(StripObjectiveMarkers(reply))
	english = leadInColonRe.ReplaceAllString(english, "")
	english = strings.NewReplacer(`"`, "", "“", "", "”", "").Replace(english)
	return strings.TrimSpace(spaceRe.ReplaceAllString(english, " "))
}
