package session

import (
	"fmt"
	"strings"
)

// ApologyMessage replaces the assistant reply when a turn fails.
const ApologyMessage = "Sorry, I had trouble responding. Please try again or select a different AI model."

var welcomeTranslations = map[string]string{
	"hindi":     "आपका स्वागत है",
	"marathi":   "आपले स्वागत आहे",
	"gujarati":  "આપનું સ્વાગત છે",
	"bengali":   "আপনাকে স্বাগতম",
	"tamil":     "வரவேற்கிறோம்",
	"telugu":    "మీకు స్వాగతం",
	"kannada":   "ಸ್ವಾಗತ",
	"malayalam": "സ്വാഗതം",
}

var praiseTranslations = map[string]string{
	"hindi":     "बिल्कुल सही!",
	"marathi":   "अगदी बरोबर!",
	"gujarati":  "એકદમ સાચું!",
	"bengali":   "একদম ঠিক!",
	"tamil":     "மிகச் சரி!",
	"telugu":    "సరిగ్గా ఉంది!",
	"kannada":   "ಸರಿಯಾಗಿದೆ!",
	"malayalam": "തികച്ചും ശരി!",
}

func translate(table map[string]string, language, fallback string) string {
	if t, ok := table[strings.ToLower(strings.TrimSpace(language))]; ok {
		return t
	}
	return fallback
}

// WelcomeMessage is the first assistant message of a scenario.
func WelcomeMessage(title, language string) string {
	return fmt.Sprintf("Welcome to the \"%s\" scenario! How can I help you practice your English today? (%s)",
		title, translate(welcomeTranslations, language, "Welcome"))
}

// PraiseMessage answers a correctly repeated correction in practice mode.
func PraiseMessage(language string) string {
	return fmt.Sprintf("Perfect! That's exactly right. Let's continue our conversation. (%s)",
		translate(praiseTranslations, language, "Perfect!"))
}
