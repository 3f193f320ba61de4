package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-english-tutor/server/internal/tutor/memory"
	"github.com/ai-english-tutor/server/internal/tutor/model"
)

func fakeServer(t *testing.T, reply string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req model.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.ChatResponse{
			Reply:          reply,
			LearnedWords:   []model.LearnedItem{},
			LearnedPhrases: []model.LearnedItem{},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, serverURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TUTOR_STORAGE_DIR", dir)
	t.Setenv("TUTOR_SERVER_URL", serverURL)
	t.Setenv("TUTOR_LANGUAGE", "hindi")
	t.Setenv("REDIS_URL", "")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChatSession(t *testing.T) {
	var calls int32
	srv := fakeServer(t, "[1] I'm well! (मैं ठीक हूँ!)", &calls)
	setupEnv(t, srv.URL)

	out, err := run(t, "How are you?\n/objectives\n/quit\n", "chat", "--scenario", "over-a-phone-call")
	require.NoError(t, err)

	assert.Contains(t, out, `Welcome to the "Over a phone call" scenario!`)
	assert.Contains(t, out, "tutor> I'm well! (मैं ठीक हूँ!)")
	assert.Contains(t, out, "Objectives completed: 1/4")
	assert.Contains(t, out, "[x] 1. Ask how is your friend doing")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestChatPracticeRepeat(t *testing.T) {
	var calls int32
	srv := fakeServer(t, `Good try! You should say: "I am fine" (अच्छा प्रयास!)`, &calls)
	setupEnv(t, srv.URL)

	out, err := run(t, "I fine\n/practice\ni am fine\n/quit\n", "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "(type /practice to repeat the correction)")
	assert.Contains(t, out, "Repeat after me: I am fine")
	assert.Contains(t, out, "Perfect! That's exactly right. Let's continue our conversation. (बिल्कुल सही!)")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestChatRejectsUnknownScenarioAndModel(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	_, err := run(t, "", "chat", "--scenario", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scenario")

	_, err = run(t, "", "chat", "--model", "gpt-4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestScenariosList(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := run(t, "", "scenarios", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "over-a-phone-call")
	assert.Contains(t, out, "1. Ask how is your friend doing")

	out, err = run(t, "", "scenarios", "--personalized", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Estimated level: beginner")
	assert.Contains(t, out, "default-greeting")
}

func TestWords(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := run(t, "", "words")
	require.NoError(t, err)
	assert.Contains(t, out, "0 words, 0 phrases")

	_, err = run(t, "", "words", "--filter", "someday")
	require.Error(t, err)
}

func TestMemoryExportImportClear(t *testing.T) {
	var calls int32
	srv := fakeServer(t, "Nice! (बढ़िया!)", &calls)
	dir := setupEnv(t, srv.URL)

	_, err := run(t, "I like cooking food\n/quit\n", "chat")
	require.NoError(t, err)

	backup := filepath.Join(dir, "backup.out")
	_, err = run(t, "", "memory", "export", backup)
	require.NoError(t, err)

	raw, err := os.ReadFile(backup)
	require.NoError(t, err)
	var exported memory.Export
	require.NoError(t, json.Unmarshal(raw, &exported))
	require.Len(t, exported.ConversationHistory, 1)
	assert.Equal(t, "I like cooking food", exported.ConversationHistory[0].UserMessage)

	out, err := run(t, "", "memory", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile cleared.")

	out, err = run(t, "", "memory", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"conversationHistory": []`)

	out, err = run(t, "", "memory", "import", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Profile imported.")

	out, err = run(t, "", "memory", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "I like cooking food")
}

func TestProfileInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	var calls int32
	srv := fakeServer(t, "Nice! (बढ़िया!)", &calls)
	setupEnv(t, srv.URL)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())
	t.Setenv("TUTOR_PROFILE", "asha")

	_, err := run(t, "Hello there\n/quit\n", "chat")
	require.NoError(t, err)

	assert.True(t, mr.Exists("tutor:asha:aiTutorUserMemory"))
	raw, err := mr.Get("tutor:asha:aiTutorConversationHistory")
	require.NoError(t, err)
	assert.Contains(t, raw, "Hello there")
}
