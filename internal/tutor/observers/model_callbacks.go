package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	tutormodel "github.com/ai-english-tutor/server/internal/tutor/model"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// newModelHandler logs provider calls. RunInfo.Name is the provider label and
// RunInfo.Type the upstream model name.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := logx.Debug().Str("provider", info.Name).Str("model", info.Type)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Str("user", lastUserContent(input.Messages))
			}
			ev.Msg("model call start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			ev := logx.Debug().Str("provider", info.Name).Str("model", info.Type)
			if output != nil {
				if output.Message != nil {
					ev = ev.Int("reply_chars", len(strings.TrimSpace(output.Message.Content)))
				}
				if u := output.TokenUsage; u != nil {
					_, _, total := tutormodel.ComputeCost(&schema.TokenUsage{
						PromptTokens:     u.PromptTokens,
						CompletionTokens: u.CompletionTokens,
						TotalTokens:      u.TotalTokens,
					}, tutormodel.ResolvePricing(info.Type))
					ev = ev.Int("prompt_tokens", u.PromptTokens).
						Int("completion_tokens", u.CompletionTokens).
						Float64("cost_usd", total)
				}
			}
			ev.Msg("model call end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("provider", info.Name).Str("model", info.Type).Msg("model call failed")
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
