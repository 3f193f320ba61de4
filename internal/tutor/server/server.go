package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/providers"
	"github.com/ai-english-tutor/server/internal/tutor/ratelimit"
	"github.com/ai-english-tutor/server/internal/tutor/scenarios"
	"github.com/ai-english-tutor/server/internal/tutor/server/respond"
)

const maxBodyBytes = 1 << 20

type ChatService interface {
	Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}

type ModelLister interface {
	Status() []providers.ModelStatus
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Chat            ChatService
	Models          ModelLister
	Limiter         ratelimit.Limiter
	RateLimitWindow time.Duration
	AllowedOrigins  []string
	Logger          zerolog.Logger
}

type handler struct {
	deps Deps
	chat http.Handler
}

// NewRouter wires the middleware chain and the /api routes.
func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}
	h.chat = ratelimit.Middleware(deps.Limiter, deps.RateLimitWindow)(http.HandlerFunc(h.handleChat))

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(accessLog(deps.Logger)...)
	r.Use(Recovery)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(deps.AllowedOrigins))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteMethodNotAllowed(w, r.Method+" is not supported on "+r.URL.Path)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusNotFound, "Not found", r.URL.Path+" does not exist")
	})

	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/chat", h.routeChat)
		r.Get("/scenarios", h.handleScenarios)
		r.Get("/models", h.handleModels)
	})
	return r
}

// routeChat checks the method before the rate limiter so stray GETs do not
// use up a client's window.
func (h *handler) routeChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.WriteMethodNotAllowed(w, "Only POST requests are supported")
		return
	}
	h.chat.ServeHTTP(w, r)
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteError(w, http.StatusRequestEntityTooLarge, "Request too large", "request body exceeds 1 MiB")
			return
		}
		respond.WriteError(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		respond.WriteError(w, http.StatusBadRequest, "Missing required fields",
			"missing required fields: "+strings.Join(missing, ", "))
		return
	}

	resp, err := h.deps.Chat.Chat(r.Context(), req)
	if err != nil {
		respond.WriteErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]any{"scenarios": scenarios.All()})
}

func (h *handler) handleModels(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]any{"models": h.deps.Models.Status()})
}
