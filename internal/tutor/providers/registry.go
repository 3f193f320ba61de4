package providers

import (
	"context"
	"fmt"

	einocb "github.com/cloudwego/eino/callbacks"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// Registry selects a Provider by model identifier.
type Registry struct {
	providers map[model.ModelID]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[model.ModelID]Provider, len(ps))}
	for _, p := range ps {
		r.providers[p.ID()] = p
	}
	return r
}

// Get resolves a wire model value. Unknown values are a validation error.
func (r *Registry) Get(id string) (Provider, error) {
	mid, ok := model.ParseModelID(id)
	if !ok {
		return nil, errx.Validation(fmt.Sprintf("Invalid model specified: %q", id))
	}
	p, ok := r.providers[mid]
	if !ok {
		return nil, errx.Validation(fmt.Sprintf("Invalid model specified: %q is not registered", id))
	}
	return p, nil
}

// ModelStatus is reported by GET /api/models.
type ModelStatus struct {
	ID         model.ModelID `json:"id"`
	Configured bool          `json:"configured"`
}

// Status lists registered providers in the canonical order.
func (r *Registry) Status() []ModelStatus {
	out := make([]ModelStatus, 0, len(r.providers))
	for _, id := range model.KnownModels {
		if p, ok := r.providers[id]; ok {
			out = append(out, ModelStatus{ID: id, Configured: p.Configured()})
		}
	}
	return out
}

// NewFromConfig builds every route. Missing keys are logged and the provider
// is still registered so the failure surfaces on first use.
func NewFromConfig(ctx context.Context, pc model.ProviderConfig, gen model.GenerationConfig, handlers ...einocb.Handler) (*Registry, error) {
	gem, err := NewGemini(ctx, GeminiConfig{
		APIKey:      pc.GeminiAPIKey,
		BaseURL:     pc.GeminiBaseURL,
		Model:       pc.GeminiModel,
		Temperature: gen.Temperature,
		MaxTokens:   gen.MaxTokens,
		Timeout:     pc.Timeout,
	}, handlers...)
	if err != nil {
		return nil, err
	}

	openRouter := func(id model.ModelID, label, name string) *OpenAIProvider {
		return NewOpenAI(OpenAIConfig{
			ID:          id,
			Label:       label,
			APIKey:      pc.OpenRouterAPIKey,
			BaseURL:     pc.OpenRouterBaseURL,
			Model:       name,
			Referrer:    pc.OpenRouterReferrer,
			Title:       pc.OpenRouterTitle,
			Temperature: gen.Temperature,
			MaxTokens:   gen.MaxTokens,
			Timeout:     pc.Timeout,
		}, handlers...)
	}

	reg := NewRegistry(
		gem,
		NewOpenAI(OpenAIConfig{
			ID:          model.Mistral,
			Label:       "Mistral",
			APIKey:      pc.MistralAPIKey,
			BaseURL:     pc.MistralBaseURL,
			Model:       pc.MistralModel,
			Temperature: gen.Temperature,
			MaxTokens:   gen.MaxTokens,
			Timeout:     pc.Timeout,
		}, handlers...),
		openRouter(model.Deepseek, "OpenRouter", pc.DeepseekModel),
		openRouter(model.Gemma, "OpenRouter", pc.GemmaModel),
		openRouter(model.Nemotron, "OpenRouter", pc.NemotronModel),
	)

	if pc.GeminiAPIKey == "" {
		logx.Warn().Msg("GEMINI_API_KEY is not set; gemini and the fallback route will fail")
	}
	if pc.MistralAPIKey == "" {
		logx.Warn().Msg("MISTRAL_API_KEY is not set; mistral requests will fail")
	}
	if pc.OpenRouterAPIKey == "" {
		logx.Warn().Msg("OPENROUTER_API_KEY is not set; deepseek, gemma and nemotron requests will fail")
	}

	return reg, nil
}
