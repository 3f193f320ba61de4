package session

import (
	"context"
	"strings"
	"sync"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// Responder produces the assistant reply for one turn.
type Responder interface {
	Respond(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}

// DefaultPriority is the order in which direct models are tried after the
// selected one is rate limited.
var DefaultPriority = []model.ModelID{model.Gemini, model.Mistral, model.Deepseek, model.Nemotron}

type onceChatter interface {
	ChatOnce(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}

// DirectResponder calls the providers in process, one model per call.
type DirectResponder struct {
	gw onceChatter
}

func NewDirectResponder(gw onceChatter) *DirectResponder {
	return &DirectResponder{gw: gw}
}

func (d *DirectResponder) Respond(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	return d.gw.ChatOnce(ctx, req)
}

// Chain tries direct models in priority order, skipping the ones that hit a
// rate limit during this session, and hands the turn to the server gateway
// when none is left.
type Chain struct {
	direct   Responder
	server   Responder
	priority []model.ModelID

	mu      sync.Mutex
	limited map[model.ModelID]bool
}

// NewChain builds a chain. Either responder may be nil; a nil direct
// responder sends every turn to the server.
func NewChain(direct, server Responder, priority ...model.ModelID) *Chain {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	return &Chain{
		direct:   direct,
		server:   server,
		priority: priority,
		limited:  make(map[model.ModelID]bool),
	}
}

func (c *Chain) Respond(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	if c.direct == nil {
		return c.viaServer(ctx, req)
	}

	requested := model.ModelID(strings.ToLower(strings.TrimSpace(req.Model)))
	for id := c.next(requested); id != ""; id = c.next(requested) {
		attempt := req
		attempt.Model = id.String()

		resp, err := c.direct.Respond(ctx, attempt)
		if err == nil {
			if id != requested && !resp.UsedFallback {
				used := id.String()
				resp.UsedFallback = true
				resp.FallbackModel = &used
			}
			return resp, nil
		}
		if !IsRateLimited(err) {
			return nil, err
		}
		c.mark(id)
		logx.Warn().Err(err).Str("model", id.String()).Msg("model rate limited, trying the next one")
	}
	return c.viaServer(ctx, req)
}

func (c *Chain) viaServer(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	if c.server == nil {
		return nil, errx.RateLimited(nil, "all models are rate limited")
	}
	return c.server.Respond(ctx, req)
}

// next returns the requested model while it is usable, otherwise the first
// usable model in priority order, or "" when every model is marked.
func (c *Chain) next(requested model.ModelID) model.ModelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if requested != "" && !c.limited[requested] {
		return requested
	}
	for _, id := range c.priority {
		if !c.limited[id] {
			return id
		}
	}
	return ""
}

func (c *Chain) mark(id model.ModelID) {
	c.mu.Lock()
	c.limited[id] = true
	c.mu.Unlock()
}

// Limited lists the models marked during this session in priority order.
func (c *Chain) Limited() []model.ModelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.ModelID
	for _, id := range c.priority {
		if c.limited[id] {
			out = append(out, id)
		}
	}
	return out
}

// Reset clears the rate-limit marks.
func (c *Chain) Reset() {
	c.mu.Lock()
	c.limited = make(map[model.ModelID]bool)
	c.mu.Unlock()
}

// IsRateLimited reports whether err is a provider or gateway rate limit.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errx.KindOf(err) == errx.KindRateLimit {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}
