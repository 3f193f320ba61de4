package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/memory"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/parsers"
	"github.com/ai-english-tutor/server/internal/tutor/storage"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

const (
	maxRetries = 3
	retryDelay = time.Second
)

var (
	ErrEmptyInput = errors.New("message is empty")
	ErrBusy       = errors.New("still waiting for the previous reply")
)

type State string

const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting_reply"
)

type Kind string

const (
	KindUser     Kind = "user"
	KindAI       Kind = "ai"
	KindThinking Kind = "thinking"
)

// DisplayMessage is one entry of the visible transcript.
type DisplayMessage struct {
	Kind       Kind
	Content    string
	IsPractice bool
	// Correction is the suggested sentence found in an ai message, if any.
	Correction string
}

// Config holds the collaborators of a Controller. Memory and Storage are
// optional.
type Config struct {
	Responder   Responder
	Memory      *memory.Store
	Storage     storage.KV
	Language    string
	Model       model.ModelID
	Structured  bool
	Personalize bool
	// Sleep waits between network retries; it defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Controller drives one chat session: the transcript, the history sent to
// the gateway, objective progress and practice mode. At most one reply is in
// flight at a time.
type Controller struct {
	cfg Config

	mu             sync.Mutex
	state          State
	scenario       model.Scenario
	model          model.ModelID
	messages       []DisplayMessage
	history        []model.ConversationMessage
	objectives     []model.Objective
	practice       bool
	lastCorrection string
}

func NewController(cfg Config) *Controller {
	if cfg.Language == "" {
		cfg.Language = "hindi"
	}
	if cfg.Model == "" {
		cfg.Model = model.Gemini
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	return &Controller{cfg: cfg, state: StateIdle, model: cfg.Model}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reset starts scenario from scratch: the transcript holds only the welcome
// message, objectives are uncompleted and rate-limit marks are cleared.
func (c *Controller) Reset(ctx context.Context, scenario model.Scenario) error {
	c.mu.Lock()
	if c.state == StateAwaitingReply {
		c.mu.Unlock()
		return ErrBusy
	}
	objectives := model.CloneObjectives(scenario.Objectives)
	for i := range objectives {
		objectives[i].Completed = false
	}
	title := scenario.Title
	if title == "" {
		title = strings.ReplaceAll(scenario.ID, "-", " ")
	}

	c.scenario = scenario
	c.objectives = objectives
	c.history = nil
	c.messages = []DisplayMessage{{Kind: KindAI, Content: WelcomeMessage(title, c.cfg.Language)}}
	c.practice = false
	c.lastCorrection = ""
	c.mu.Unlock()

	if r, ok := c.cfg.Responder.(interface{ Reset() }); ok {
		r.Reset()
	}
	c.persist(ctx, storage.KeyUserLanguage, c.cfg.Language)
	c.persistObjectives(ctx, objectives)
	if c.cfg.Memory != nil {
		if err := c.cfg.Memory.RecordScenarioStart(ctx, scenario.ID, title); err != nil {
			logx.Warn().Err(err).Str("scenario", scenario.ID).Msg("failed to record scenario start")
		}
	}
	return nil
}

// Send runs one turn. On a responder failure the apology message is shown,
// objectives stay as they were and the error is returned with it.
// The user message joins the history only together with the reply, so a failed
// turn leaves no unanswered user entry behind.
func (c *Controller) Send(ctx context.Context, input string) (DisplayMessage, error) {
	text := strings.TrimSpace(input)

	c.mu.Lock()
	if text == "" {
		c.mu.Unlock()
		return DisplayMessage{}, ErrEmptyInput
	}
	if c.state == StateAwaitingReply {
		c.mu.Unlock()
		return DisplayMessage{}, ErrBusy
	}
	repeat := c.practice && strings.EqualFold(text, strings.TrimSpace(c.lastCorrection))
	c.messages = append(c.messages,
		DisplayMessage{Kind: KindUser, Content: text, IsPractice: c.practice},
		DisplayMessage{Kind: KindThinking},
	)
	c.practice = false
	c.lastCorrection = ""
	c.state = StateAwaitingReply
	req := c.request(text)
	c.mu.Unlock()

	if repeat {
		msg := DisplayMessage{Kind: KindAI, Content: PraiseMessage(c.cfg.Language)}
		c.mu.Lock()
		c.settle(msg)
		c.mu.Unlock()
		return msg, nil
	}

	if c.cfg.Personalize && c.cfg.Memory != nil {
		p, err := c.cfg.Memory.Personalization(ctx)
		if err != nil {
			logx.Warn().Err(err).Msg("personalization unavailable")
		} else {
			req.Personalization = p
		}
	}

	resp, err := c.respond(ctx, req)
	if err != nil {
		logx.Error().Err(err).Str("model", req.Model).Str("scenario", req.Scenario).Msg("chat turn failed")
		msg := DisplayMessage{Kind: KindAI, Content: ApologyMessage}
		c.mu.Lock()
		c.settle(msg)
		c.mu.Unlock()
		return msg, err
	}
	return c.complete(ctx, text, resp), nil
}

// respond retries failures whose text mentions the network, waiting one
// second times the attempt number.
func (c *Controller) respond(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	for attempt := 1; ; attempt++ {
		resp, err := c.cfg.Responder.Respond(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt > maxRetries || !strings.Contains(strings.ToLower(err.Error()), "network") {
			return nil, err
		}
		logx.Warn().Err(err).Int("attempt", attempt).Msg("network error, retrying")
		if err := c.cfg.Sleep(ctx, time.Duration(attempt)*retryDelay); err != nil {
			return nil, err
		}
	}
}

func (c *Controller) complete(ctx context.Context, text string, resp *model.ChatResponse) DisplayMessage {
	c.mu.Lock()
	before := parsers.CountCompleted(c.objectives)
	up := parsers.ApplyObjectiveMarkers(resp.Reply, c.objectives)
	c.objectives = up.Objectives
	after := parsers.CountCompleted(up.Objectives)

	msg := DisplayMessage{Kind: KindAI, Content: up.Clean}
	if corr, ok := parsers.ExtractCorrection(up.Clean); ok {
		msg.Correction = corr.Suggestion
	}
	c.history = append(c.history,
		model.ConversationMessage{Role: model.RoleUser, Content: text},
		model.ConversationMessage{Role: model.RoleAssistant, Content: up.Clean},
	)
	if resp.UsedFallback && resp.FallbackModel != nil {
		if id, ok := model.ParseModelID(*resp.FallbackModel); ok && id != c.model {
			logx.Info().Str("from", c.model.String()).Str("to", id.String()).Msg("switched to fallback model")
			c.model = id
		}
	}
	c.settle(msg)
	objectives := model.CloneObjectives(c.objectives)
	scenarioID := c.scenario.ID
	c.mu.Unlock()

	c.persistObjectives(ctx, objectives)
	c.record(ctx, text, up.Clean, scenarioID, resp)
	if total := len(objectives); total > 0 && after == total && before < total && c.cfg.Memory != nil {
		if err := c.cfg.Memory.RecordScenarioCompletion(ctx, scenarioID, after, total); err != nil {
			logx.Warn().Err(err).Str("scenario", scenarioID).Msg("failed to record scenario completion")
		}
	}
	return msg
}

// settle replaces the thinking placeholder with msg. Callers hold c.mu.
func (c *Controller) settle(msg DisplayMessage) {
	if n := len(c.messages); n > 0 && c.messages[n-1].Kind == KindThinking {
		c.messages = c.messages[:n-1]
	}
	c.messages = append(c.messages, msg)
	c.state = StateIdle
}

// request builds the gateway request for text. Callers hold c.mu.
func (c *Controller) request(text string) model.ChatRequest {
	history := make([]model.ConversationMessage, len(c.history))
	copy(history, c.history)
	return model.ChatRequest{
		Message:             text,
		Language:            c.cfg.Language,
		Model:               c.model.String(),
		Scenario:            c.scenario.ID,
		ConversationHistory: history,
		Structured:          c.cfg.Structured,
		ScenarioTitle:       c.scenario.Title,
		Objectives:          model.CloneObjectives(c.objectives),
	}
}

func (c *Controller) record(ctx context.Context, text, reply, scenarioID string, resp *model.ChatResponse) {
	if c.cfg.Memory == nil {
		return
	}
	if err := c.cfg.Memory.RecordConversation(ctx, text, reply, scenarioID); err != nil {
		logx.Warn().Err(err).Msg("failed to record conversation")
	}
	if len(resp.LearnedWords) > 0 {
		if _, err := c.cfg.Memory.ProcessLearnedWords(ctx, resp.LearnedWords, scenarioID); err != nil {
			logx.Warn().Err(err).Msg("failed to store learned words")
		}
	}
	if len(resp.LearnedPhrases) > 0 {
		if _, err := c.cfg.Memory.ProcessLearnedPhrases(ctx, resp.LearnedPhrases, scenarioID); err != nil {
			logx.Warn().Err(err).Msg("failed to store learned phrases")
		}
	}
}

func (c *Controller) persistObjectives(ctx context.Context, objectives []model.Objective) {
	if objectives == nil {
		objectives = []model.Objective{}
	}
	data, err := json.Marshal(objectives)
	if err != nil {
		logx.Error().Err(err).Msg("failed to encode objectives")
		return
	}
	c.persist(ctx, storage.KeyScenarioObjectives, string(data))
}

func (c *Controller) persist(ctx context.Context, key, value string) {
	if c.cfg.Storage == nil {
		return
	}
	if err := c.cfg.Storage.Set(ctx, key, value); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to persist session state")
	}
}

// EnterPracticeMode arms the practice-repeat check for correction and
// returns it as the text to pre-fill the input with.
func (c *Controller) EnterPracticeMode(correction string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.practice = true
	c.lastCorrection = correction
	return correction
}

func (c *Controller) CancelPractice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.practice = false
	c.lastCorrection = ""
}

// LastCorrection returns the suggestion in the most recent ai message.
func (c *Controller) LastCorrection() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Kind == KindAI {
			return c.messages[i].Correction, c.messages[i].Correction != ""
		}
	}
	return "", false
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) PracticeMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.practice
}

// Model is the active model; a server-side fallback replaces it.
func (c *Controller) Model() model.ModelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

func (c *Controller) SetModel(id model.ModelID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = id
}

func (c *Controller) Scenario() model.Scenario {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scenario
}

func (c *Controller) Messages() []DisplayMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DisplayMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) History() []model.ConversationMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ConversationMessage, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) Objectives() []model.Objective {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneObjectives(c.objectives)
}

// SpeechText is the text of msg to hand to a speech synthesizer.
func SpeechText(msg DisplayMessage) string {
	return parsers.SpeechText(msg.Content)
}
