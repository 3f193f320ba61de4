package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/conversations"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/parsers"
	"github.com/ai-english-tutor/server/internal/tutor/prompts"
	"github.com/ai-english-tutor/server/internal/tutor/providers"
	"github.com/ai-english-tutor/server/internal/tutor/scenarios"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// BothFailedMessage prefixes the error returned when the fallback also fails.
const BothFailedMessage = "Both primary and fallback models failed"

// Gateway serves one chat turn: validate, render the system prompt, call the
// selected provider and fall back once on a provider-side failure.
type Gateway struct {
	registry *providers.Registry
	prompts  *prompts.Builder
	messages *conversations.MessagesManager
	fallback string
	now      func() time.Time
}

func New(registry *providers.Registry, builder *prompts.Builder, messages *conversations.MessagesManager, cfg model.GatewayConfig) *Gateway {
	fallback := cfg.FallbackModel
	if fallback == "" {
		fallback = string(model.Gemini)
	}
	return &Gateway{
		registry: registry,
		prompts:  builder,
		messages: messages,
		fallback: fallback,
		now:      time.Now,
	}
}

func (g *Gateway) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	return g.serve(ctx, req, true)
}

// ChatOnce serves a turn on the requested model only, without the fallback
// retry. Client-side chains that pick their own next model use it.
func (g *Gateway) ChatOnce(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	return g.serve(ctx, req, false)
}

func (g *Gateway) serve(ctx context.Context, req model.ChatRequest, withFallback bool) (*model.ChatResponse, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, errx.Validation("missing required fields: " + strings.Join(missing, ", "))
	}

	primary, err := g.registry.Get(req.Model)
	if err != nil {
		return nil, err
	}

	title, objectives := scenarios.Resolve(req.Scenario, req.ScenarioTitle, req.Objectives)
	systemPrompt, err := g.prompts.Build(ctx, prompts.Input{
		ScenarioTitle:   title,
		Objectives:      objectives,
		Language:        req.Language,
		Structured:      req.Structured,
		Personalization: req.Personalization,
	})
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, "failed to build system prompt")
	}

	call := providers.Request{Messages: g.messages.BuildMessages(systemPrompt, req.ConversationHistory, req.Message)}

	start := g.now()
	reply, err := primary.Send(ctx, call)
	resp := &model.ChatResponse{}
	if err != nil && !withFallback {
		return nil, err
	}
	if err != nil {
		var used model.ModelID
		reply, used, err = g.fallBack(ctx, primary.ID(), call, err)
		if err != nil {
			return nil, err
		}
		id := used.String()
		resp.UsedFallback = true
		resp.FallbackModel = &id
	}

	logTurn(req, reply, resp.UsedFallback, g.now().Sub(start))
	fill(resp, reply.Content, req.Structured)
	return resp, nil
}

// fallBack makes the single retry against the fallback provider. Validation
// and configuration failures are returned as they are.
func (g *Gateway) fallBack(ctx context.Context, primaryID model.ModelID, call providers.Request, primaryErr error) (providers.Reply, model.ModelID, error) {
	switch errx.KindOf(primaryErr) {
	case errx.KindValidation, errx.KindConfig:
		return providers.Reply{}, "", primaryErr
	}

	logx.Warn().Err(primaryErr).
		Str("model", primaryID.String()).
		Str("fallback", g.fallback).
		Msg("primary model failed, trying fallback")

	fb, err := g.registry.Get(g.fallback)
	if err != nil {
		logx.Error().Err(err).Str("fallback", g.fallback).Msg("fallback model is not registered")
		return providers.Reply{}, "", errx.Wrap(primaryErr, BothFailedMessage)
	}
	reply, err := fb.Send(ctx, call)
	if err != nil {
		logx.Error().Err(err).Str("fallback", g.fallback).Msg("fallback model failed")
		return providers.Reply{}, "", errx.Wrap(primaryErr, BothFailedMessage)
	}
	return reply, fb.ID(), nil
}

// fill copies the provider text into resp, decoding it first when the
// structured format was requested. Undecodable structured replies are passed
// through as plain text.
func fill(resp *model.ChatResponse, content string, structured bool) {
	resp.Reply = strings.TrimSpace(content)
	resp.LearnedWords = []model.LearnedItem{}
	resp.LearnedPhrases = []model.LearnedItem{}
	if !structured {
		return
	}

	sr, err := parsers.ParseStructuredReply(content)
	if err != nil {
		logx.Debug().Err(err).Msg("structured reply not decodable, returning raw text")
		return
	}
	resp.Reply = fmt.Sprintf("%s (%s)", sr.EnglishResponse, sr.LocalTranslation)
	resp.LearnedWords = sr.LearnedWords
	resp.LearnedPhrases = sr.LearnedPhrases
	resp.Structured = true
}

func logTurn(req model.ChatRequest, reply providers.Reply, usedFallback bool, latency time.Duration) {
	_, _, cost := model.ComputeCost(reply.Usage, model.ResolvePricing(reply.Model))
	ev := logx.Info().
		Str("model", req.Model).
		Str("provider_model", reply.Model).
		Str("scenario", req.Scenario).
		Bool("used_fallback", usedFallback).
		Dur("latency", latency).
		Float64("cost_usd", cost)
	if reply.Usage != nil {
		ev = ev.Int("tokens", reply.Usage.TotalTokens)
	}
	ev.Msg("chat turn served")
}
