package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	errx "github.com/ai-english-tutor/server/internal/core/error"
)

// classify turns a raw provider failure into a typed error. The label is the
// human readable provider name used in messages, e.g. "Mistral".
func classify(label string, err error) error {
	if err == nil {
		return nil
	}

	var app *errx.Error
	if errors.As(err, &app) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errx.Network(err, label+" API network timeout")
	}

	if status := statusCode(err); status != 0 {
		if status == http.StatusTooManyRequests {
			return errx.RateLimited(err, label+" API rate limit exceeded")
		}
		return errx.Upstream(err, fmt.Sprintf("%s API error (status %d)", label, status))
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errx.Network(err, label+" API network error")
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return errx.RateLimited(err, label+" API rate limit exceeded")
	}

	return errx.Upstream(err, label+" API error")
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}
