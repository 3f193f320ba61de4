package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/server/respond"
)

// GatewayClient sends turns to a running tutor server.
type GatewayClient struct {
	client *resty.Client
}

func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &GatewayClient{client: c}
}

func (g *GatewayClient) Respond(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	var out model.ChatResponse
	var apiErr respond.ErrorResponse

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/chat")
	if err != nil {
		return nil, errx.Network(err, "network error contacting tutor server")
	}
	if resp.IsError() {
		return nil, responseError(resp.StatusCode(), apiErr)
	}
	return &out, nil
}

// responseError keeps the server's status so rate limits stay recognizable.
func responseError(status int, body respond.ErrorResponse) error {
	detail := body.Details
	if detail == "" {
		detail = body.Error
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	msg := fmt.Sprintf("tutor server returned %d: %s", status, detail)

	switch status {
	case http.StatusTooManyRequests:
		return errx.RateLimited(nil, msg)
	case http.StatusBadRequest:
		return errx.Validation(msg)
	case http.StatusUnauthorized:
		return errx.Config(msg)
	}
	if status >= http.StatusInternalServerError {
		return errx.Upstream(nil, msg)
	}
	return errx.New(nil, status, msg)
}
