package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeechText(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "markers translation and lead-in",
			reply: `[1] Great! You should say: "I went home." Try it! (बहुत अच्छा!)`,
			want:  "Great! I went home. Try it!",
		},
		{
			name:  "plain",
			reply: "How was your day? (आपका दिन कैसा था?)",
			want:  "How was your day?",
		},
		{
			name:  "multiline translation",
			reply: "See you soon!\n(जल्द ही\nमिलते हैं!)",
			want:  "See you soon!",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SpeechText(tc.reply))
		})
	}
}
