package memory

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

var spaceRunRe = regexp.MustCompile(`\s+`)

// CreateDynamicScenario builds a dynamic- scenario for a topic. family, work
// and food have hand-written objectives; any other topic gets a generic set.
func (s *Store) CreateDynamicScenario(topic, scenarioType string) model.Scenario {
	now := s.now()
	id := fmt.Sprintf("dynamic-%s-%d", spaceRunRe.ReplaceAllString(strings.ToLower(topic), "-"), now.UnixMilli())

	mk := func(title, description, icon string, objs ...string) model.Scenario {
		sc := model.Scenario{
			ID:          id,
			Title:       title,
			Description: description,
			IconName:    icon,
			Status:      "personalized",
			Type:        scenarioType,
			Metadata:    &model.ScenarioMetadata{GeneratedFrom: topic, Timestamp: now},
		}
		for i := 0; i+1 < len(objs); i += 2 {
			sc.Objectives = append(sc.Objectives, model.Objective{ID: objs[i], Text: objs[i+1]})
		}
		return sc
	}

	switch topic {
	case "family":
		return mk("Family Gathering Discussion",
			"Practice talking about family events, relationships, and traditions in a warm, personal setting.",
			"users",
			"fam-1", "Introduce family members and their relationships",
			"fam-2", "Describe a recent family event or celebration",
			"fam-3", "Share family traditions or customs",
			"fam-4", "Express feelings about family relationships")
	case "work":
		return mk("Professional Networking Event",
			"Navigate workplace conversations, discuss career goals, and build professional relationships.",
			"briefcase",
			"work-1", "Introduce yourself professionally",
			"work-2", "Discuss your current role and responsibilities",
			"work-3", "Share career aspirations and goals",
			"work-4", "Exchange professional contact information")
	case "food":
		return mk("Cooking Class Experience",
			"Learn to discuss recipes, cooking techniques, and food preferences in an interactive cooking class.",
			"utensils",
			"cook-1", "Ask about ingredients and cooking methods",
			"cook-2", "Share your favorite dishes and cooking experiences",
			"cook-3", "Request cooking tips and advice",
			"cook-4", "Compliment the instructor and other participants")
	}

	title := topic
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	return mk(fmt.Sprintf("Personalized %s Scenario", title),
		fmt.Sprintf("A customized scenario based on your interests in %s. Practice relevant vocabulary and situations.", topic),
		"star",
		id+"-1", "Engage in conversation about "+topic,
		id+"-2", "Express your opinions on "+topic,
		id+"-3", "Ask questions related to "+topic,
		id+"-4", "Share personal experiences with "+topic)
}

// DynamicScenarios builds interest-based scenarios from the top topics and
// practice-based ones from at most two struggling scenarios.
func (s *Store) DynamicScenarios(ctx context.Context, count int) ([]model.Scenario, error) {
	in, err := s.Insights(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Scenario
	for i, tc := range in.Preferences.CommonTopics {
		if i >= count {
			break
		}
		out = append(out, s.CreateDynamicScenario(tc.Topic, "interest-based"))
	}

	practiced := 0
	for _, id := range sortedKeys(in.Preferences.StrugglingAreas) {
		if practiced >= 2 || len(out) >= count {
			break
		}
		out = append(out, s.CreateDynamicScenario(in.Preferences.StrugglingAreas[id].Title, "practice-based"))
		practiced++
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
