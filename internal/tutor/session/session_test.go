package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	"github.com/ai-english-tutor/server/internal/tutor/memory"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/scenarios"
	"github.com/ai-english-tutor/server/internal/tutor/storage"
)

type result struct {
	resp *model.ChatResponse
	err  error
}

type scriptedResponder struct {
	mu      sync.Mutex
	results []result
	reqs    []model.ChatRequest
	block   chan struct{}
}

func (s *scriptedResponder) Respond(_ context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if len(s.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.resp, r.err
}

func reply(text string) result {
	return result{resp: &model.ChatResponse{Reply: text}}
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func phoneScenario(t *testing.T) model.Scenario {
	t.Helper()
	sc, ok := scenarios.Get("over-a-phone-call")
	require.True(t, ok)
	return sc
}

func newController(t *testing.T, r Responder, kv storage.KV, mem *memory.Store) (*Controller, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	c := NewController(Config{
		Responder: r,
		Memory:    mem,
		Storage:   kv,
		Language:  "hindi",
		Model:     model.Gemini,
		Sleep:     rec.Sleep,
	})
	require.NoError(t, c.Reset(context.Background(), phoneScenario(t)))
	return c, rec
}

func TestResetShowsWelcome(t *testing.T) {
	kv := storage.NewMemoryStore()
	c, _ := newController(t, &scriptedResponder{}, kv, nil)

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, KindAI, msgs[0].Kind)
	assert.Equal(t, `Welcome to the "Over a phone call" scenario! How can I help you practice your English today? (आपका स्वागत है)`, msgs[0].Content)
	assert.Equal(t, StateIdle, c.State())
	assert.Len(t, c.Objectives(), 4)

	lang, ok, err := kv.Get(context.Background(), storage.KeyUserLanguage)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hindi", lang)
}

func TestSendCompletesObjectives(t *testing.T) {
	kv := storage.NewMemoryStore()
	r := &scriptedResponder{results: []result{reply("[1] I'm well! (मैं ठीक हूँ!)")}}
	c, _ := newController(t, r, kv, nil)

	msg, err := c.Send(context.Background(), "  How are you?  ")
	require.NoError(t, err)
	assert.Equal(t, "I'm well! (मैं ठीक हूँ!)", msg.Content)

	objs := c.Objectives()
	assert.True(t, objs[0].Completed)
	assert.False(t, objs[1].Completed)

	require.Len(t, r.reqs, 1)
	req := r.reqs[0]
	assert.Equal(t, "How are you?", req.Message)
	assert.Equal(t, "gemini", req.Model)
	assert.Equal(t, "over-a-phone-call", req.Scenario)
	assert.Empty(t, req.ConversationHistory)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, KindUser, msgs[1].Kind)
	assert.Equal(t, KindAI, msgs[2].Kind)

	assert.Equal(t, []model.ConversationMessage{
		{Role: model.RoleUser, Content: "How are you?"},
		{Role: model.RoleAssistant, Content: "I'm well! (मैं ठीक हूँ!)"},
	}, c.History())

	raw, ok, err := kv.Get(context.Background(), storage.KeyScenarioObjectives)
	require.NoError(t, err)
	require.True(t, ok)
	var stored []model.Objective
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.True(t, stored[0].Completed)
}

func TestSendForwardsHistory(t *testing.T) {
	r := &scriptedResponder{results: []result{reply("Hello! (नमस्ते!)"), reply("Good. (अच्छा।)")}}
	c, _ := newController(t, r, nil, nil)

	_, err := c.Send(context.Background(), "Hi")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "Fine")
	require.NoError(t, err)

	require.Len(t, r.reqs, 2)
	assert.Len(t, r.reqs[1].ConversationHistory, 2)
	assert.Equal(t, "Fine", r.reqs[1].Message)
}

func TestSendRejectsEmptyInput(t *testing.T) {
	r := &scriptedResponder{}
	c, _ := newController(t, r, nil, nil)

	_, err := c.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Len(t, c.Messages(), 1)
	assert.Empty(t, r.reqs)
}

func TestSendRejectsWhileAwaitingReply(t *testing.T) {
	r := &scriptedResponder{results: []result{reply("Hi!")}, block: make(chan struct{})}
	c, _ := newController(t, r, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "Hello")
		done <- err
	}()

	require.Eventually(t, func() bool { return c.State() == StateAwaitingReply }, time.Second, time.Millisecond)
	msgs := c.Messages()
	assert.Equal(t, KindThinking, msgs[len(msgs)-1].Kind)

	_, err := c.Send(context.Background(), "Again")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Reset(context.Background(), phoneScenario(t)), ErrBusy)

	close(r.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, c.State())
	assert.Len(t, c.Messages(), 3)
}

func TestSendFailureShowsApology(t *testing.T) {
	r := &scriptedResponder{results: []result{{err: errx.Upstream(nil, "Both primary and fallback models failed")}}}
	c, rec := newController(t, r, nil, nil)

	msg, err := c.Send(context.Background(), "[1] hello")
	require.Error(t, err)
	assert.Equal(t, ApologyMessage, msg.Content)
	assert.Empty(t, rec.delays)
	assert.Equal(t, StateIdle, c.State())
	for _, o := range c.Objectives() {
		assert.False(t, o.Completed)
	}
	assert.Empty(t, c.History())

	msgs := c.Messages()
	assert.Equal(t, ApologyMessage, msgs[len(msgs)-1].Content)
}

func TestSendRetriesNetworkErrors(t *testing.T) {
	netErr := errx.Network(errors.New("connection refused"), "Gemini API network error")
	r := &scriptedResponder{results: []result{{err: netErr}, {err: netErr}, reply("Hello!")}}
	c, rec := newController(t, r, nil, nil)

	msg, err := c.Send(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", msg.Content)
	assert.Len(t, r.reqs, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestSendGivesUpAfterThreeRetries(t *testing.T) {
	netErr := errors.New("network error contacting tutor server")
	r := &scriptedResponder{results: []result{{err: netErr}, {err: netErr}, {err: netErr}, {err: netErr}, reply("late")}}
	c, rec := newController(t, r, nil, nil)

	msg, err := c.Send(context.Background(), "Hi")
	require.Error(t, err)
	assert.Equal(t, ApologyMessage, msg.Content)
	assert.Len(t, r.reqs, 4)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, rec.delays)
}

func TestPracticeRepeatShortcut(t *testing.T) {
	r := &scriptedResponder{results: []result{
		reply(`Good try! You should say: "I am going home" (अच्छा प्रयास!)`),
	}}
	c, _ := newController(t, r, nil, nil)

	msg, err := c.Send(context.Background(), "I going home")
	require.NoError(t, err)
	assert.Equal(t, "I am going home", msg.Correction)

	corr, ok := c.LastCorrection()
	require.True(t, ok)
	assert.Equal(t, "I am going home", c.EnterPracticeMode(corr))
	assert.True(t, c.PracticeMode())

	msg, err = c.Send(context.Background(), "i am going HOME")
	require.NoError(t, err)
	assert.Equal(t, "Perfect! That's exactly right. Let's continue our conversation. (बिल्कुल सही!)", msg.Content)
	assert.False(t, c.PracticeMode())
	assert.Len(t, r.reqs, 1)

	msgs := c.Messages()
	assert.True(t, msgs[len(msgs)-2].IsPractice)
}

func TestPracticeRepeatWithContraction(t *testing.T) {
	r := &scriptedResponder{results: []result{
		reply(`Try saying 'I don't know' instead. (कहिए 'मुझे नहीं पता')`),
	}}
	c, _ := newController(t, r, nil, nil)

	msg, err := c.Send(context.Background(), "I not know")
	require.NoError(t, err)
	assert.Equal(t, "I don't know", msg.Correction)

	c.EnterPracticeMode(msg.Correction)
	msg, err = c.Send(context.Background(), "I don't know")
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "Perfect!")
	assert.Len(t, r.reqs, 1)
}

func TestPracticeMismatchCallsResponder(t *testing.T) {
	r := &scriptedResponder{results: []result{reply("Almost! (लगभग!)")}}
	c, _ := newController(t, r, nil, nil)

	c.EnterPracticeMode("I am going home")
	_, err := c.Send(context.Background(), "I am go home")
	require.NoError(t, err)
	assert.Len(t, r.reqs, 1)
	assert.False(t, c.PracticeMode())
}

func TestCancelPractice(t *testing.T) {
	c, _ := newController(t, &scriptedResponder{}, nil, nil)
	c.EnterPracticeMode("x")
	c.CancelPractice()
	assert.False(t, c.PracticeMode())
}

func TestServerFallbackSwitchesModel(t *testing.T) {
	fb := "gemini"
	r := &scriptedResponder{results: []result{{resp: &model.ChatResponse{Reply: "Hi!", UsedFallback: true, FallbackModel: &fb}}}}
	c, _ := newController(t, r, nil, nil)
	c.SetModel(model.Mistral)

	_, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, model.Gemini, c.Model())
}

func TestSendRecordsMemory(t *testing.T) {
	mem := memory.NewStore(storage.NewMemoryStore())
	r := &scriptedResponder{results: []result{{resp: &model.ChatResponse{
		Reply:        "[1][2][3][4] Wonderful weekend plans! (शानदार!)",
		LearnedWords: []model.LearnedItem{{English: "weekend", Translation: "सप्ताहांत", Confidence: 0.9}},
	}}}}
	c, _ := newController(t, r, nil, mem)

	_, err := c.Send(context.Background(), "I am going to the beach this weekend")
	require.NoError(t, err)

	ctx := context.Background()
	history, err := mem.ConversationHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "over-a-phone-call", history[0].ScenarioID)

	words, err := mem.LearnedWords(ctx, memory.FilterAll, "")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "weekend", words[0].English)

	m, err := mem.Memory(ctx)
	require.NoError(t, err)
	stats := m.ScenarioPreferences.FavoriteScenarios["over-a-phone-call"]
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.StartCount)
	assert.Equal(t, 1, stats.CompletionCount)
	assert.Equal(t, "easy", stats.Difficulty)
}

func TestWelcomeFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, `Welcome to the "Coffee" scenario! How can I help you practice your English today? (Welcome)`,
		WelcomeMessage("Coffee", "french"))
}

func TestSpeechText(t *testing.T) {
	assert.Equal(t, "I'm well!", SpeechText(DisplayMessage{Content: "[1] I'm well! (मैं ठीक हूँ!)"}))
}

type modelResponder struct {
	errs  map[string]error
	calls []string
}

func (m *modelResponder) Respond(_ context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	m.calls = append(m.calls, req.Model)
	if err := m.errs[req.Model]; err != nil {
		return nil, err
	}
	return &model.ChatResponse{Reply: "from " + req.Model}, nil
}

func TestChainSkipsRateLimitedModels(t *testing.T) {
	direct := &modelResponder{errs: map[string]error{
		"gemini":  errx.RateLimited(nil, "Gemini API rate limit exceeded"),
		"mistral": errors.New("status 429"),
	}}
	chain := NewChain(direct, nil)

	resp, err := chain.Respond(context.Background(), model.ChatRequest{Model: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "from deepseek", resp.Reply)
	assert.True(t, resp.UsedFallback)
	require.NotNil(t, resp.FallbackModel)
	assert.Equal(t, "deepseek", *resp.FallbackModel)
	assert.Equal(t, []string{"gemini", "mistral", "deepseek"}, direct.calls)
	assert.Equal(t, []model.ModelID{model.Gemini, model.Mistral}, chain.Limited())

	direct.calls = nil
	_, err = chain.Respond(context.Background(), model.ChatRequest{Model: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, []string{"deepseek"}, direct.calls)

	chain.Reset()
	assert.Empty(t, chain.Limited())
}

func TestChainFallsBackToServer(t *testing.T) {
	limited := errx.RateLimited(nil, "rate limit exceeded")
	direct := &modelResponder{errs: map[string]error{
		"gemini": limited, "mistral": limited, "deepseek": limited, "nemotron": limited,
	}}
	server := &modelResponder{}
	chain := NewChain(direct, server)

	resp, err := chain.Respond(context.Background(), model.ChatRequest{Model: "mistral"})
	require.NoError(t, err)
	assert.Equal(t, "from mistral", resp.Reply)
	assert.Len(t, direct.calls, 4)
	assert.Equal(t, []string{"mistral"}, server.calls)
}

func TestChainWithoutServer(t *testing.T) {
	limited := errx.RateLimited(nil, "rate limit exceeded")
	direct := &modelResponder{errs: map[string]error{
		"gemini": limited, "mistral": limited, "deepseek": limited, "nemotron": limited,
	}}
	_, err := NewChain(direct, nil).Respond(context.Background(), model.ChatRequest{Model: "gemini"})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestChainReturnsOtherErrors(t *testing.T) {
	direct := &modelResponder{errs: map[string]error{"gemini": errx.Config("Gemini API key not configured")}}
	server := &modelResponder{}
	_, err := NewChain(direct, server).Respond(context.Background(), model.ChatRequest{Model: "gemini"})
	require.Error(t, err)
	assert.Equal(t, errx.KindConfig, errx.KindOf(err))
	assert.Empty(t, server.calls)
}

func TestResetClearsChainMarks(t *testing.T) {
	direct := &modelResponder{errs: map[string]error{"gemini": errx.RateLimited(nil, "rate limit")}}
	chain := NewChain(direct, nil)
	c, _ := newController(t, chain, nil, nil)

	_, err := c.Send(context.Background(), "Hi")
	require.NoError(t, err)
	assert.NotEmpty(t, chain.Limited())

	require.NoError(t, c.Reset(context.Background(), phoneScenario(t)))
	assert.Empty(t, chain.Limited())
}

func TestGatewayClient(t *testing.T) {
	var got model.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fb := "gemini"
		_ = json.NewEncoder(w).Encode(model.ChatResponse{Reply: "Hi!", UsedFallback: true, FallbackModel: &fb})
	}))
	defer srv.Close()

	resp, err := NewGatewayClient(srv.URL, 5*time.Second).Respond(context.Background(), model.ChatRequest{
		Message: "Hello", Language: "hindi", Model: "mistral", Scenario: "coffee-shop",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi!", resp.Reply)
	assert.True(t, resp.UsedFallback)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, "coffee-shop", got.Scenario)
}

func TestGatewayClientErrors(t *testing.T) {
	cases := []struct {
		status int
		kind   errx.Kind
	}{
		{http.StatusTooManyRequests, errx.KindRateLimit},
		{http.StatusBadRequest, errx.KindValidation},
		{http.StatusUnauthorized, errx.KindConfig},
		{http.StatusInternalServerError, errx.KindUpstream},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"short","details":"the details"}`))
			}))
			defer srv.Close()

			_, err := NewGatewayClient(srv.URL, 5*time.Second).Respond(context.Background(), model.ChatRequest{Message: "x"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, errx.KindOf(err))
			assert.Contains(t, err.Error(), "the details")
		})
	}
}

func TestGatewayClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewGatewayClient(url, time.Second).Respond(context.Background(), model.ChatRequest{Message: "x"})
	require.Error(t, err)
	assert.Equal(t, errx.KindNetwork, errx.KindOf(err))
	assert.Contains(t, err.Error(), "network")
}
