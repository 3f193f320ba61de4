package scenarios

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewPCG(1, 2)), func() time.Time { return fixedNow })
}

func TestCatalog(t *testing.T) {
	all := All()
	require.Len(t, all, 6)
	for _, s := range all {
		assert.Len(t, s.Objectives, 4, s.ID)
	}

	all[0].Objectives[0].Completed = true
	again, ok := Get(all[0].ID)
	require.True(t, ok)
	assert.False(t, again.Objectives[0].Completed)

	_, ok = Get("no-such-scenario")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	title, objs := Resolve("over-a-phone-call", "", nil)
	assert.Equal(t, "Over a phone call", title)
	assert.Equal(t, "phone-1", objs[0].ID)

	title, objs = Resolve("job-interview-practice", "", nil)
	assert.Equal(t, "job interview practice", title)
	assert.Equal(t, "phone-1", objs[0].ID)

	custom := []model.Objective{{ID: "c-1", Text: "Order a latte"}}
	title, objs = Resolve("dynamic-coffee-1", "Coffee Run", custom)
	assert.Equal(t, "Coffee Run", title)
	assert.Equal(t, custom, objs)
	objs[0].Completed = true
	assert.False(t, custom[0].Completed)
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, "Project Planning", FormatContext("project-planning"))
	assert.Equal(t, "Office", FormatContext("office"))
}

func TestTopicsInMessage(t *testing.T) {
	assert.Equal(t, []string{"work", "health"}, TopicsInMessage("My doctor says my JOB is too stressful"))
	assert.Empty(t, TopicsInMessage("hello there"))
}

func TestInterests(t *testing.T) {
	in := &model.Insights{Preferences: model.InsightPreferences{
		CommonTopics: []model.TopicCount{{Topic: "food", Count: 3}},
		RecentActivity: []model.ConversationEntry{
			{UserMessage: "I cooked a meal"},
			{UserMessage: "Planning a trip for work"},
		},
	}}
	assert.Equal(t, []string{"food", "work", "travel"}, Interests(in))
}

func TestDefaultScenarios(t *testing.T) {
	assert.Nil(t, DefaultScenarios(0))
	assert.Len(t, DefaultScenarios(1), 1)
	all := DefaultScenarios(5)
	require.Len(t, all, 2)
	assert.Equal(t, "default-greeting", all[0].ID)
	assert.Equal(t, "default-shopping", all[1].ID)
}

func TestGenerateWithoutInsights(t *testing.T) {
	g := newTestGenerator()
	out := g.Generate(nil, model.Beginner, 3)
	require.Len(t, out, 2)
	assert.Equal(t, "default", out[0].Status)
	assert.Nil(t, g.Generate(nil, model.Beginner, 0))
}

func TestGenerate(t *testing.T) {
	in := &model.Insights{Preferences: model.InsightPreferences{
		CommonTopics: []model.TopicCount{{Topic: "work", Count: 4}, {Topic: "food", Count: 2}},
		StrugglingAreas: map[string]*model.StruggleRecord{
			"at-a-restaurant": {Title: "At a restaurant", Struggles: 2},
			"coffee-shop":     {Title: "Coffee shop", Struggles: 1},
		},
	}}

	out := newTestGenerator().Generate(in, model.Beginner, 3)
	require.Len(t, out, 3)

	// food maps to the daily category, which has nothing for beginners.
	interest := out[0]
	assert.Equal(t, "agentic", interest.Status)
	assert.True(t, strings.HasPrefix(interest.ID, "agentic-job-interview-"), interest.ID)
	assert.True(t, strings.HasSuffix(interest.ID, "-1741946400000"), interest.ID)
	assert.Equal(t, "briefcase", interest.IconName)
	assert.Equal(t, model.Beginner, interest.Difficulty)
	require.Len(t, interest.Objectives, 4)
	assert.Equal(t, "job-interview-greeting-1", interest.Objectives[0].ID)
	assert.Equal(t, "job-interview-problem_solving-4", interest.Objectives[3].ID)
	for _, o := range interest.Objectives {
		assert.NotContains(t, o.Text, "{")
	}
	assert.Equal(t, "work", interest.Metadata.GeneratedFrom)

	practice := out[1]
	assert.Equal(t, "practice-at-a-restaurant-1741946400000", practice.ID)
	assert.Equal(t, "Practice: At a restaurant", practice.Title)
	assert.Equal(t, "Review key concepts from At a restaurant", practice.Objectives[0].Text)
	assert.Equal(t, 2, practice.Metadata.StrugglesCount)

	adaptive := out[2]
	assert.Equal(t, "adaptive-1741946400000", adaptive.ID)
	assert.Equal(t, "adaptive", adaptive.Status)
	assert.True(t, strings.HasSuffix(adaptive.Title, " - Adaptive"))
	assert.NotEqual(t, "daily", adaptive.Metadata.Category)
}

func TestGenerateIsReproducible(t *testing.T) {
	in := &model.Insights{Preferences: model.InsightPreferences{
		CommonTopics: []model.TopicCount{{Topic: "hobbies", Count: 1}},
	}}
	a := newTestGenerator().Generate(in, model.Intermediate, 4)
	b := newTestGenerator().Generate(in, model.Intermediate, 4)
	assert.Equal(t, a, b)
	assert.Len(t, a, 4)
}
