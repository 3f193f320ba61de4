package scenarios

import (
	"strings"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

func objectives(pairs ...string) []model.Objective {
	out := make([]model.Objective, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Objective{ID: pairs[i], Text: pairs[i+1]})
	}
	return out
}

var catalog = []model.Scenario{
	{
		ID:          "over-a-phone-call",
		Title:       "Over a phone call",
		Description: "Practice making a phone call to a friend in English",
		IconName:    "phone",
		Status:      "free",
		Objectives: objectives(
			"phone-1", "Ask how is your friend doing",
			"phone-2", "Ask how is everyone at his home",
			"phone-3", "Ask how is his work pressure",
			"phone-4", "Ask about his holiday plans for the weekend",
		),
	},
	{
		ID:          "restaurant",
		Title:       "At a restaurant",
		Description: "Learn how to order food and have conversations at restaurants",
		IconName:    "restaurant",
		Status:      "free",
		Objectives: objectives(
			"rest-1", "Greet the server and ask for a table",
			"rest-2", "Ask about the menu recommendations",
			"rest-3", "Order your food with specific preferences",
			"rest-4", "Request the bill and thank the server",
		),
	},
	{
		ID:          "nike-store",
		Title:       "At a Nike store",
		Description: "Practice shopping for shoes and clothes in English",
		IconName:    "shopping",
		Status:      "free",
		Objectives: objectives(
			"nike-1", "Ask for help finding specific items",
			"nike-2", "Inquire about sizes and colors",
			"nike-3", "Ask about discounts or ongoing sales",
			"nike-4", "Make a purchase and handle payment",
		),
	},
	{
		ID:          "coffee-shop",
		Title:       "At a coffee shop",
		Description: "Learn how to order coffee and chat in a coffee shop",
		IconName:    "coffee",
		Status:      "free",
		Objectives: objectives(
			"coffee-1", "Order your preferred coffee drink",
			"coffee-2", "Request customizations to your order",
			"coffee-3", "Ask about food options available",
			"coffee-4", "Handle payment and tipping",
		),
	},
	{
		ID:          "first-day-class",
		Title:       "First day of class",
		Description: "Practice introducing yourself and meeting classmates",
		IconName:    "class",
		Status:      "free",
		Objectives: objectives(
			"class-1", "Introduce yourself to the class",
			"class-2", "Share your interests and background",
			"class-3", "Ask questions about the course",
			"class-4", "Exchange contact info with classmates",
		),
	},
	{
		ID:          "birthday-celebration",
		Title:       "Birthday celebration",
		Description: "Learn how to celebrate a birthday with friends at a restaurant",
		IconName:    "birthday",
		Status:      "free",
		Objectives: objectives(
			"bday-1", "Wish someone happy birthday",
			"bday-2", "Give and receive birthday gifts",
			"bday-3", "Make plans for celebration",
			"bday-4", "Express gratitude for celebration",
		),
	},
}

// DefaultScenarioID is used when nothing else identifies a scenario.
const DefaultScenarioID = "over-a-phone-call"

// All returns a copy of the static catalog.
func All() []model.Scenario {
	out := make([]model.Scenario, len(catalog))
	for i, s := range catalog {
		s.Objectives = model.CloneObjectives(s.Objectives)
		out[i] = s
	}
	return out
}

// Get looks up a static scenario by id.
func Get(id string) (model.Scenario, bool) {
	for _, s := range catalog {
		if s.ID == id {
			s.Objectives = model.CloneObjectives(s.Objectives)
			return s, true
		}
	}
	return model.Scenario{}, false
}

// Resolve returns the title and objectives to prompt with. Explicit values
// from the caller win, then the catalog entry; an unknown id is humanized
// ("job-interview" -> "job interview") and gets the phone call objectives.
func Resolve(id, title string, objs []model.Objective) (string, []model.Objective) {
	s, known := Get(id)
	if strings.TrimSpace(title) == "" {
		if known {
			title = s.Title
		} else {
			title = strings.ReplaceAll(id, "-", " ")
		}
	}
	if len(objs) == 0 {
		if !known {
			s, _ = Get(DefaultScenarioID)
		}
		objs = s.Objectives
	}
	return title, model.CloneObjectives(objs)
}
