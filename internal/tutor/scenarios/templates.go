package scenarios

import "github.com/ai-english-tutor/server/internal/tutor/model"

type template struct {
	Key          string
	Title        string
	Description  string
	Contexts     []string
	Difficulties []model.Level
}

func (t template) suits(level model.Level) bool {
	for _, l := range t.Difficulties {
		if l == level {
			return true
		}
	}
	return false
}

const (
	categoryProfessional  = "professional"
	categorySocial        = "social"
	categoryDaily         = "daily"
	categoryEntertainment = "entertainment"
)

var categories = []string{categoryProfessional, categorySocial, categoryDaily, categoryEntertainment}

var (
	beginnerUp     = []model.Level{model.Beginner, model.Intermediate, model.Advanced}
	beginnerMid    = []model.Level{model.Beginner, model.Intermediate}
	intermediateUp = []model.Level{model.Intermediate, model.Advanced}
)

var templates = map[string][]template{
	categoryProfessional: {
		{
			Key:          "job-interview",
			Title:        "Job Interview Practice",
			Description:  "Practice professional interview skills and workplace vocabulary",
			Contexts:     []string{"office", "remote", "startup", "corporate"},
			Difficulties: beginnerUp,
		},
		{
			Key:          "team-meeting",
			Title:        "Team Meeting Participation",
			Description:  "Learn to contribute effectively in team meetings and discussions",
			Contexts:     []string{"project-planning", "status-update", "brainstorming", "problem-solving"},
			Difficulties: intermediateUp,
		},
	},
	categorySocial: {
		{
			Key:          "friendship",
			Title:        "Making New Friends",
			Description:  "Practice social interactions and building relationships",
			Contexts:     []string{"hobby-club", "neighborhood", "community-event", "online-meetup"},
			Difficulties: beginnerMid,
		},
		{
			Key:          "cultural-exchange",
			Title:        "Cultural Exchange Discussion",
			Description:  "Share your culture and learn about others",
			Contexts:     []string{"festivals", "traditions", "cuisine", "customs"},
			Difficulties: intermediateUp,
		},
	},
	categoryDaily: {
		{
			Key:          "healthcare",
			Title:        "Doctor Visit",
			Description:  "Practice medical vocabulary and describing symptoms",
			Contexts:     []string{"general-checkup", "emergency", "specialist", "pharmacy"},
			Difficulties: intermediateUp,
		},
		{
			Key:          "banking",
			Title:        "Banking Services",
			Description:  "Handle banking transactions and financial discussions",
			Contexts:     []string{"account-opening", "loan-application", "investment", "complaint"},
			Difficulties: intermediateUp,
		},
	},
	categoryEntertainment: {
		{
			Key:          "movie-discussion",
			Title:        "Movie Review Discussion",
			Description:  "Share opinions about movies and entertainment",
			Contexts:     []string{"cinema", "streaming", "genres", "recommendations"},
			Difficulties: beginnerMid,
		},
		{
			Key:          "sports-conversation",
			Title:        "Sports Discussion",
			Description:  "Talk about sports, games, and physical activities",
			Contexts:     []string{"team-sports", "individual-sports", "Olympics", "local-games"},
			Difficulties: beginnerMid,
		},
	},
}

// objective patterns in the order they are used; closing is never reached
// since a scenario gets four objectives.
var objectivePatterns = []struct {
	Name      string
	Templates []string
}{
	{"greeting", []string{
		"Greet {character} appropriately for the situation",
		"Start a conversation with {character}",
		"Introduce yourself to {character}",
	}},
	{"information", []string{
		"Ask {character} about their {topic}",
		"Share information about {topic}",
		"Request details about {topic}",
	}},
	{"opinion", []string{
		"Express your opinion about {topic}",
		"Ask {character} for their views on {topic}",
		"Discuss the pros and cons of {topic}",
	}},
	{"problem_solving", []string{
		"Help {character} solve a problem with {topic}",
		"Ask for assistance with {topic}",
		"Suggest solutions for {topic}",
	}},
	{"closing", []string{
		"Thank {character} for their time",
		"Exchange contact information",
		"Make plans for future interaction",
	}},
}

var characters = map[string][]string{
	"office":     {"your new colleague", "the team leader", "a client"},
	"remote":     {"your online teammate", "the project manager", "a virtual assistant"},
	"hobby-club": {"a fellow enthusiast", "the club organizer", "a new member"},
	"healthcare": {"the doctor", "the nurse", "the receptionist"},
	"cinema":     {"a movie enthusiast", "the ticket counter person", "a friend"},
}

var defaultCharacters = []string{"a friendly person", "someone helpful", "a conversation partner"}

var icons = map[string]string{
	"job-interview":       "briefcase",
	"team-meeting":        "users",
	"friendship":          "heart",
	"cultural-exchange":   "globe",
	"healthcare":          "medical",
	"banking":             "bank",
	"movie-discussion":    "film",
	"sports-conversation": "sports",
}

var interestCategories = map[string]string{
	"work":      categoryProfessional,
	"family":    categorySocial,
	"food":      categoryDaily,
	"travel":    categoryDaily,
	"hobbies":   categoryEntertainment,
	"health":    categoryDaily,
	"education": categoryProfessional,
}

// interestKeywords is a wider net than the memory topic counter: it adds
// health and education and a few extra keywords per topic.
var interestKeywords = []struct {
	Topic    string
	Keywords []string
}{
	{"work", []string{"job", "work", "office", "career", "meeting", "project", "business"}},
	{"family", []string{"family", "parents", "children", "siblings", "mother", "father", "relatives"}},
	{"food", []string{"food", "restaurant", "eat", "drink", "meal", "hungry", "cooking"}},
	{"travel", []string{"travel", "trip", "vacation", "flight", "hotel", "visit", "country"}},
	{"hobbies", []string{"hobby", "music", "sports", "reading", "movie", "game", "entertainment"}},
	{"health", []string{"health", "doctor", "hospital", "medicine", "exercise", "fitness"}},
	{"education", []string{"study", "school", "university", "learn", "course", "teacher"}},
}

func iconFor(key string) string {
	if icon, ok := icons[key]; ok {
		return icon
	}
	return "chat"
}
