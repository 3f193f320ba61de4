package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

//go:embed template/tutor_system.txt
var tutorSystemPrompt string

//go:embed template/structured_format.txt
var structuredFormatPrompt string

//go:embed template/personalization.txt
var personalizationPrompt string

// Input is everything the system prompt depends on.
type Input struct {
	ScenarioTitle   string
	Objectives      []model.Objective
	Language        string
	Structured      bool
	Personalization *model.Personalization
}

type numberedObjective struct {
	Number int
	Text   string
}

// Builder renders the tutor system prompt through the eino prompt component so
// prompt callbacks fire for every render.
type Builder struct {
	handlers []einocb.Handler
}

func NewBuilder(handlers ...einocb.Handler) *Builder {
	return &Builder{handlers: handlers}
}

// Build renders the system-role text for one turn.
func (b *Builder) Build(ctx context.Context, in Input) (string, error) {
	if strings.TrimSpace(in.ScenarioTitle) == "" {
		return "", fmt.Errorf("system prompt render: empty scenario title")
	}

	var sb strings.Builder
	sb.WriteString(tutorSystemPrompt)
	if in.Structured {
		sb.WriteString(structuredFormatPrompt)
	}
	if in.Personalization != nil {
		sb.WriteString(personalizationPrompt)
	}

	if len(b.handlers) > 0 {
		ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
			Name:      "tutor_system",
			Type:      "GoTemplate",
			Component: components.ComponentOfPrompt,
		}, b.handlers...)
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(sb.String()),
	)
	msgs, err := tpl.Format(ctx, variables(in))
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return strings.TrimSpace(msgs[0].Content), nil
}

func variables(in Input) map[string]any {
	objectives := make([]numberedObjective, 0, len(in.Objectives))
	for i, o := range in.Objectives {
		objectives = append(objectives, numberedObjective{Number: i + 1, Text: o.Text})
	}

	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = "hindi"
	}

	vars := map[string]any{
		"ScenarioTitle": in.ScenarioTitle,
		"Language":      language,
		"Objectives":    objectives,
	}

	if p := in.Personalization; p != nil {
		topics := p.TopTopics
		if len(topics) > 3 {
			topics = topics[:3]
		}
		native := p.NativeLanguage
		if native == "" {
			native = language
		}
		level := p.Level
		if level == "" {
			level = model.Beginner
		}
		vars["NativeLanguage"] = native
		vars["Level"] = string(level)
		vars["VocabularyDiversity"] = p.VocabularyDiversity
		vars["TopTopics"] = strings.Join(topics, ", ")
		vars["StruggleCount"] = p.StruggleCount
	}
	return vars
}
