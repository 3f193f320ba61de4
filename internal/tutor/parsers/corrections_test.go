package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCorrectionPerLeadIn(t *testing.T) {
	cases := []struct {
		name   string
		reply  string
		want   string
		main   string
		leadIn string
	}{
		{
			name:   "you should say",
			reply:  `I understand. You should say: "I went to the market yesterday." Could you try saying that? (मैं समझता हूँ।)`,
			want:   "I went to the market yesterday.",
			main:   "I understand.",
			leadIn: "you should say",
		},
		{
			name:   "you could say",
			reply:  `Almost! You could say "How is everyone at home?" Try it.`,
			want:   "How is everyone at home?",
			main:   "Almost!",
			leadIn: "you could say",
		},
		{
			name:   "the correct way",
			reply:  `Nice try. The correct way is: "I am fine."`,
			want:   "I am fine.",
			main:   "Nice try.",
			leadIn: "the correct way",
		},
		{
			name:   "try saying",
			reply:  `Try saying "Can I get the bill, please?"`,
			want:   "Can I get the bill, please?",
			leadIn: "try saying",
		},
		{
			name:   "we usually say",
			reply:  `We usually say "on the weekend" in American English.`,
			want:   "on the weekend",
			leadIn: "we usually say",
		},
		{
			name:   "it's better to say",
			reply:  `Good! It's better to say "I'd like a table for two."`,
			want:   "I'd like a table for two.",
			main:   "Good!",
			leadIn: "it's better to say",
		},
		{
			name:   "more natural to say with single quotes",
			reply:  `It's more natural to say 'see you soon' here.`,
			want:   "see you soon",
			main:   "It's",
			leadIn: "more natural to say",
		},
		{
			name:   "single quotes around a contraction",
			reply:  `Try saying 'I don't know' instead.`,
			want:   "I don't know",
			leadIn: "try saying",
		},
		{
			name:   "single quotes ending the reply",
			reply:  `Good effort! You could say 'we're almost there'`,
			want:   "we're almost there",
			main:   "Good effort!",
			leadIn: "you could say",
		},
		{
			name:   "you can say without quotes",
			reply:  `You can say: I want a coffee. It is polite.`,
			want:   "I want a coffee",
			leadIn: "you can say",
		},
		{
			name:   "correct sentence is",
			reply:  `The correct sentence is "She goes to school every day."`,
			want:   "She goes to school every day.",
			main:   "The",
			leadIn: "correct sentence is",
		},
		{
			name:   "explanation word ends suggestion",
			reply:  `You should say I am feeling better because you rested`,
			want:   "I am feeling better",
			leadIn: "you should say",
		},
		{
			name:   "falls back to ten words",
			reply:  `You could say thank you very much for the lovely gift my dear friend today indeed`,
			want:   "thank you very much for the lovely gift my dear",
			leadIn: "you could say",
		},
		{
			name:   "translation parenthetical ignored",
			reply:  `You should say "I am fine." (आपको कहना चाहिए "मैं ठीक हूँ")`,
			want:   "I am fine.",
			leadIn: "you should say",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := ExtractCorrection(tc.reply)
			require.True(t, ok)
			assert.Equal(t, tc.want, c.Suggestion)
			assert.Equal(t, tc.main, c.Main)
			assert.Equal(t, tc.leadIn, c.LeadIn)
		})
	}
}

func TestExtractCorrectionEarliestLeadInWins(t *testing.T) {
	c, ok := ExtractCorrection(`Try saying "first one". You should say "second one".`)
	require.True(t, ok)
	assert.Equal(t, "first one", c.Suggestion)
}

func TestExtractCorrectionNone(t *testing.T) {
	_, ok := ExtractCorrection("Great job! How was your weekend? (बहुत बढ़िया!)")
	assert.False(t, ok)

	_, ok = ExtractCorrection(`You should say: ""`)
	assert.False(t, ok)
}

func TestSplitTranslation(t *testing.T) {
	en, tr := SplitTranslation("I'm well! (मैं ठीक हूँ!) And you? (और आप?)")
	assert.Equal(t, "I'm well! And you?", en)
	assert.Equal(t, "मैं ठीक हूँ! और आप?", tr)

	en, tr = SplitTranslation("No translation here.")
	assert.Equal(t, "No translation here.", en)
	assert.Empty(t, tr)
}
