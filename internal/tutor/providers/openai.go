package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// OpenAIConfig describes one OpenAI-compatible route (Mistral or an OpenRouter model).
type OpenAIConfig struct {
	ID          model.ModelID
	Label       string
	APIKey      string
	BaseURL     string
	Model       string
	Referrer    string
	Title       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type OpenAIProvider struct {
	cfg      OpenAIConfig
	client   *openai.Client
	handlers []einocb.Handler
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

func NewOpenAI(cfg OpenAIConfig, handlers ...einocb.Handler) *OpenAIProvider {
	p := &OpenAIProvider{cfg: cfg, handlers: handlers}
	if cfg.APIKey == "" {
		return p
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	// OpenRouter attribution headers
	if cfg.Referrer != "" || cfg.Title != "" {
		h := http.Header{}
		if cfg.Referrer != "" {
			h.Set("HTTP-Referer", cfg.Referrer)
		}
		if cfg.Title != "" {
			h.Set("X-Title", cfg.Title)
		}
		config.HTTPClient = &http.Client{Transport: headerTransport{rt: http.DefaultTransport, headers: h}}
	}
	p.client = openai.NewClientWithConfig(config)
	return p
}

func (p *OpenAIProvider) ID() model.ModelID { return p.cfg.ID }

func (p *OpenAIProvider) Configured() bool { return p.client != nil }

func (p *OpenAIProvider) Send(ctx context.Context, req Request) (Reply, error) {
	if p.client == nil {
		return Reply{}, errx.Config(p.cfg.Label + " API key not configured")
	}

	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	ctx = p.onStart(ctx, req.Messages)

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m == nil {
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    msgs,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		err = classify(p.cfg.Label, err)
		p.onError(ctx, err)
		return Reply{}, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err := errx.Upstream(ErrInvalidResponse, p.cfg.Label+" API error")
		p.onError(ctx, err)
		return Reply{}, err
	}

	reply := Reply{
		Content: resp.Choices[0].Message.Content,
		Model:   p.cfg.Model,
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	p.onEnd(ctx, reply)
	return reply, nil
}

// go-openai does not emit eino callbacks, so the lifecycle is reported by hand
// to keep one set of observers for every route.
func (p *OpenAIProvider) onStart(ctx context.Context, msgs []*schema.Message) context.Context {
	if len(p.handlers) == 0 {
		return ctx
	}
	ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      p.cfg.Label,
		Type:      p.cfg.Model,
		Component: components.ComponentOfChatModel,
	}, p.handlers...)
	return einocb.OnStart(ctx, &einomodel.CallbackInput{
		Messages: msgs,
		Config: &einomodel.Config{
			Model:       p.cfg.Model,
			MaxTokens:   p.cfg.MaxTokens,
			Temperature: p.cfg.Temperature,
		},
	})
}

func (p *OpenAIProvider) onEnd(ctx context.Context, reply Reply) {
	if len(p.handlers) == 0 {
		return
	}
	out := &einomodel.CallbackOutput{Message: schema.AssistantMessage(reply.Content, nil)}
	if reply.Usage != nil {
		out.TokenUsage = &einomodel.TokenUsage{
			PromptTokens:     reply.Usage.PromptTokens,
			CompletionTokens: reply.Usage.CompletionTokens,
			TotalTokens:      reply.Usage.TotalTokens,
		}
	}
	einocb.OnEnd(ctx, out)
}

func (p *OpenAIProvider) onError(ctx context.Context, err error) {
	if len(p.handlers) == 0 {
		return
	}
	einocb.OnError(ctx, err)
}

var _ Provider = (*OpenAIProvider)(nil)
