package model

import "time"

// ================ Config ================
type ProviderConfig struct {
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	MistralAPIKey  string `envconfig:"MISTRAL_API_KEY"`
	MistralBaseURL string `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai/v1"`
	MistralModel   string `envconfig:"MISTRAL_MODEL" default:"open-mistral-nemo"`

	OpenRouterAPIKey   string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL  string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	OpenRouterReferrer string `envconfig:"OPENROUTER_REFERRER" default:"http://localhost:3000"`
	OpenRouterTitle    string `envconfig:"OPENROUTER_TITLE" default:"AI English Tutor"`
	DeepseekModel      string `envconfig:"DEEPSEEK_MODEL" default:"deepseek/deepseek-r1:free"`
	GemmaModel         string `envconfig:"GEMMA_MODEL" default:"google/gemma-3-27b-it:free"`
	NemotronModel      string `envconfig:"NEMOTRON_MODEL" default:"nvidia/llama-3.1-nemotron-nano-8b-v1:free"`

	Timeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`
}

type GenerationConfig struct {
	Temperature float32 `envconfig:"GENERATION_TEMPERATURE" default:"0.7"`
	MaxTokens   int     `envconfig:"GENERATION_MAX_TOKENS" default:"1024"`
}

type GatewayConfig struct {
	FallbackModel string `envconfig:"GATEWAY_FALLBACK_MODEL" default:"gemini"`
	// MaxHistory caps the forwarded history; zero forwards everything.
	MaxHistory int `envconfig:"GATEWAY_MAX_HISTORY" default:"0"`
}

type RateLimitConfig struct {
	Window        time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	MaxRequests   int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"20"`
	SweepInterval time.Duration `envconfig:"RATE_LIMIT_SWEEP_INTERVAL" default:"5m"`
}

type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"3000"`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ReadTimeout    time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"90s"`
}
