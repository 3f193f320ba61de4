package scenarios

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// Generator builds personalized scenarios from memory insights. Randomness
// and the clock are injected so generation is reproducible in tests.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(rnd *rand.Rand, now func() time.Time) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rnd, now: now}
}

// Generate returns up to count scenarios. Interest-based scenarios come
// first, then practice scenarios for areas with more than one struggle, then
// adaptive scenarios fill the rest. Nil insights yield the default set.
func (g *Generator) Generate(insights *model.Insights, level model.Level, count int) []model.Scenario {
	if count <= 0 {
		return nil
	}
	if insights == nil {
		return DefaultScenarios(count)
	}

	out := make([]model.Scenario, 0, count)
	for _, interest := range Interests(insights) {
		if len(out) >= count {
			break
		}
		if s, ok := g.fromInterest(interest, level); ok {
			out = append(out, s)
		}
	}

	ids := make([]string, 0, len(insights.Preferences.StrugglingAreas))
	for id := range insights.Preferences.StrugglingAreas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec := insights.Preferences.StrugglingAreas[id]
		if len(out) >= count {
			break
		}
		if rec != nil && rec.Struggles > 1 {
			out = append(out, g.practice(rec, level))
		}
	}

	for len(out) < count {
		s, ok := g.adaptive(level)
		if !ok {
			break
		}
		out = append(out, s)
	}
	return out
}

// Interests merges the counted topics with topics mentioned in recent
// messages, keeping first-seen order.
func Interests(insights *model.Insights) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, tc := range insights.Preferences.CommonTopics {
		add(tc.Topic)
	}
	for _, entry := range insights.Preferences.RecentActivity {
		for _, t := range TopicsInMessage(entry.UserMessage) {
			add(t)
		}
	}
	return out
}

// TopicsInMessage returns every interest topic with a keyword contained in message.
func TopicsInMessage(message string) []string {
	lower := strings.ToLower(message)
	var out []string
	for _, tk := range interestKeywords {
		for _, kw := range tk.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, tk.Topic)
				break
			}
		}
	}
	return out
}

func categoryFor(interest string) string {
	if c, ok := interestCategories[interest]; ok {
		return c
	}
	return categorySocial
}

func suitable(ts []template, level model.Level) []template {
	var out []template
	for _, t := range ts {
		if t.suits(level) {
			out = append(out, t)
		}
	}
	return out
}

func (g *Generator) pick(n int) int {
	return g.rnd.IntN(n)
}

func (g *Generator) fromInterest(interest string, level model.Level) (model.Scenario, bool) {
	candidates := suitable(templates[categoryFor(interest)], level)
	if len(candidates) == 0 {
		return model.Scenario{}, false
	}
	t := candidates[g.pick(len(candidates))]
	ctx := t.Contexts[g.pick(len(t.Contexts))]
	character := g.character(ctx)
	now := g.now()

	return model.Scenario{
		ID:    fmt.Sprintf("agentic-%s-%s-%d", t.Key, ctx, now.UnixMilli()),
		Title: fmt.Sprintf("%s - %s", t.Title, FormatContext(ctx)),
		Description: fmt.Sprintf("%s in a %s setting. Personalized for your interests in %s.",
			t.Description, FormatContext(ctx), interest),
		IconName:   iconFor(t.Key),
		Status:     "agentic",
		Type:       "interest-based",
		Difficulty: level,
		Context:    ctx,
		Character:  character,
		Objectives: g.objectives(t.Key, character, interest),
		Metadata: &model.ScenarioMetadata{
			GeneratedFrom: interest,
			Template:      t.Key,
			Timestamp:     now,
		},
	}, true
}

func (g *Generator) character(ctx string) string {
	pool, ok := characters[ctx]
	if !ok {
		pool = defaultCharacters
	}
	return pool[g.pick(len(pool))]
}

func (g *Generator) objectives(key, character, topic string) []model.Objective {
	out := make([]model.Objective, 0, 4)
	for i, p := range objectivePatterns {
		if i >= 4 {
			break
		}
		text := p.Templates[g.pick(len(p.Templates))]
		text = strings.Replace(text, "{character}", character, 1)
		text = strings.Replace(text, "{topic}", topic, 1)
		out = append(out, model.Objective{
			ID:   fmt.Sprintf("%s-%s-%d", key, p.Name, i+1),
			Text: text,
		})
	}
	return out
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func (g *Generator) practice(rec *model.StruggleRecord, level model.Level) model.Scenario {
	now := g.now()
	slug := whitespaceRe.ReplaceAllString(strings.ToLower(rec.Title), "-")
	return model.Scenario{
		ID:    fmt.Sprintf("practice-%s-%d", slug, now.UnixMilli()),
		Title: "Practice: " + rec.Title,
		Description: fmt.Sprintf("Focused practice session for %s. This scenario has been customized "+
			"to help you improve in areas where you've faced challenges.", rec.Title),
		IconName:   "target",
		Status:     "practice",
		Type:       "remedial",
		Difficulty: level,
		Objectives: objectives(
			"practice-1", "Review key concepts from "+rec.Title,
			"practice-2", "Practice common phrases and expressions",
			"practice-3", "Apply learned vocabulary in context",
			"practice-4", "Build confidence through repetition",
		),
		Metadata: &model.ScenarioMetadata{
			BasedOnScenario: rec.Title,
			StrugglesCount:  rec.Struggles,
			Timestamp:       now,
		},
	}
}

// adaptive picks a random category among those with a template for level.
func (g *Generator) adaptive(level model.Level) (model.Scenario, bool) {
	var usable []string
	for _, c := range categories {
		if len(suitable(templates[c], level)) > 0 {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return model.Scenario{}, false
	}
	category := usable[g.pick(len(usable))]
	candidates := suitable(templates[category], level)
	t := candidates[g.pick(len(candidates))]
	now := g.now()

	return model.Scenario{
		ID:          fmt.Sprintf("adaptive-%d", now.UnixMilli()),
		Title:       t.Title + " - Adaptive",
		Description: t.Description + " This scenario adapts to your current learning level and preferences.",
		IconName:    iconFor(t.Key),
		Status:      "adaptive",
		Type:        "level-based",
		Difficulty:  level,
		Objectives: objectives(
			"adaptive-1", "Engage in level-appropriate conversation",
			"adaptive-2", "Use vocabulary suitable for your level",
			"adaptive-3", "Practice grammar patterns",
			"adaptive-4", "Build fluency and confidence",
		),
		Metadata: &model.ScenarioMetadata{
			Category:  category,
			Template:  t.Key,
			Timestamp: now,
		},
	}, true
}

// FormatContext turns "project-planning" into "Project Planning".
func FormatContext(ctx string) string {
	parts := strings.Split(ctx, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// DefaultScenarios is offered when there is no memory yet.
func DefaultScenarios(count int) []model.Scenario {
	defaults := []model.Scenario{
		{
			ID:          "default-greeting",
			Title:       "Basic Greetings & Introductions",
			Description: "Learn essential greeting phrases and how to introduce yourself confidently.",
			IconName:    "wave",
			Status:      "default",
			Objectives: objectives(
				"greet-1", "Use appropriate greetings for different times of day",
				"greet-2", "Introduce yourself with basic information",
				"greet-3", "Ask and answer simple questions about yourself",
				"greet-4", "Practice polite conversation starters",
			),
		},
		{
			ID:          "default-shopping",
			Title:       "Shopping & Making Purchases",
			Description: "Practice common shopping scenarios and transaction vocabulary.",
			IconName:    "bag",
			Status:      "default",
			Objectives: objectives(
				"shop-1", "Ask about prices and product information",
				"shop-2", "Express preferences and make comparisons",
				"shop-3", "Handle payment and receive change",
				"shop-4", "Thank the shopkeeper and say goodbye",
			),
		},
	}
	if count <= 0 {
		return nil
	}
	if count < len(defaults) {
		return defaults[:count]
	}
	return defaults
}
