package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// GeminiConfig holds the configuration for the Gemini chat model.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// ChatModelProvider adapts an eino chat model. The Gemini route uses it with
// the eino-ext gemini component; tests plug in a stub model.
type ChatModelProvider struct {
	id        model.ModelID
	label     string
	modelName string
	chat      einomodel.BaseChatModel
	timeout   time.Duration
	handlers  []einocb.Handler
}

// NewChatModelProvider wraps an existing chat model. A nil chat model yields a
// provider that reports a missing key on every call.
func NewChatModelProvider(id model.ModelID, label, modelName string, chat einomodel.BaseChatModel, timeout time.Duration, handlers ...einocb.Handler) *ChatModelProvider {
	return &ChatModelProvider{
		id:        id,
		label:     label,
		modelName: modelName,
		chat:      chat,
		timeout:   timeout,
		handlers:  handlers,
	}
}

// NewGemini creates the Gemini route from the genai client.
func NewGemini(ctx context.Context, cfg GeminiConfig, handlers ...einocb.Handler) (*ChatModelProvider, error) {
	if cfg.APIKey == "" {
		return NewChatModelProvider(model.Gemini, "Gemini", cfg.Model, nil, cfg.Timeout, handlers...), nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	chat, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
	}

	return NewChatModelProvider(model.Gemini, "Gemini", cfg.Model, chat, cfg.Timeout, handlers...), nil
}

func (p *ChatModelProvider) ID() model.ModelID { return p.id }

func (p *ChatModelProvider) Configured() bool { return p.chat != nil }

func (p *ChatModelProvider) Send(ctx context.Context, req Request) (Reply, error) {
	if p.chat == nil {
		return Reply{}, errx.Config(p.label + " API key not configured")
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	if len(p.handlers) > 0 {
		ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
			Name:      p.label,
			Type:      p.modelName,
			Component: components.ComponentOfChatModel,
		}, p.handlers...)
	}

	out, err := p.chat.Generate(ctx, req.Messages)
	if err != nil {
		return Reply{}, classify(p.label, err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return Reply{}, errx.Upstream(ErrInvalidResponse, p.label+" API error")
	}

	reply := Reply{Content: out.Content, Model: p.modelName}
	if out.ResponseMeta != nil {
		reply.Usage = out.ResponseMeta.Usage
	}
	return reply, nil
}

var _ Provider = (*ChatModelProvider)(nil)
