package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/lexis"
	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/ai/mock"
	"github.com/poiesic/lexis/config"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
	"github.com/poiesic/lexis/ingestion"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/storage/badger"
	"github.com/poiesic/lexis/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var passages = []string{
	"时间是最宝贵的资源",
	"学习英语要先积累词汇",
	"复利是世界第八大奇迹",
}

type testAPI struct {
	router   *gin.Engine
	embedder *mock.MockEmbedder
	chat     *mock.MockChatModel
}

func newTestAPI(t *testing.T, withCorpus bool, opts ...RouterOption) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Corpus.Path = filepath.Join(t.TempDir(), "data.txt")
	cfg.Corpus.Splitter.Type = corpus.SplitterLine
	if withCorpus {
		require.NoError(t, os.WriteFile(cfg.Corpus.Path, []byte(strings.Join(passages, "\n")), 0o644))
	}

	embedder := mock.NewMockEmbedder()
	chat := mock.NewMockChatModel()
	repo, backend, err := badger.NewMemorySessionRepository(time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	engine, err := lexis.NewEngine(cfg,
		lexis.WithProvider(mock.NewMockProviderWithServices(embedder, chat)),
		lexis.WithSessionRepository(repo))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return &testAPI{
		router:   NewRouter(engine, cfg.Server, opts...),
		embedder: embedder,
		chat:     chat,
	}
}

func (a *testAPI) do(t *testing.T, method, path, session string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t, true)
	rr, body := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestSessionHeader(t *testing.T) {
	a := newTestAPI(t, true)

	rr, _ := a.do(t, http.MethodGet, "/health", "", nil)
	generated := rr.Header().Get(SessionHeader)
	assert.Len(t, generated, 36)

	rr, _ = a.do(t, http.MethodGet, "/health", "client-42", nil)
	assert.Equal(t, "client-42", rr.Header().Get(SessionHeader))
}

func TestFeatures(t *testing.T) {
	a := newTestAPI(t, true)
	rr, body := a.do(t, http.MethodGet, "/api/features", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	features := body["features"].(map[string]any)
	assert.Equal(t, true, features["semantic_search"])
	assert.Equal(t, true, features["vocabulary_quiz"])
	assert.Equal(t, false, features["transcripts"])
	assert.Equal(t, false, features["export"])
}

func TestCorpus(t *testing.T) {
	a := newTestAPI(t, true)
	rr, body := a.do(t, http.MethodGet, "/api/corpus", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	status := body["corpus"].(map[string]any)
	assert.Equal(t, true, status["available"])
	assert.Equal(t, float64(len(passages)), status["passages"])

	rr, _ = a.do(t, http.MethodPost, "/api/corpus/reload", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSearch(t *testing.T) {
	a := newTestAPI(t, true)

	t.Run("semantic", func(t *testing.T) {
		rr, body := a.do(t, http.MethodPost, "/api/search", "", gin.H{"query": passages[2]})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, ModeSemantic, body["mode"])
		results := body["results"].([]any)
		require.NotEmpty(t, results)
		assert.Equal(t, passages[2], results[0].(map[string]any)["text"])
	})

	t.Run("keyword", func(t *testing.T) {
		calls := a.embedder.CallCount()
		rr, body := a.do(t, http.MethodPost, "/api/search", "", gin.H{"query": "英语", "mode": "keyword"})
		require.Equal(t, http.StatusOK, rr.Code)
		results := body["results"].([]any)
		require.Len(t, results, 1)
		assert.Equal(t, float64(1), results[0].(map[string]any)["index"])
		assert.Equal(t, calls, a.embedder.CallCount())
	})

	tests := []struct {
		name string
		body gin.H
	}{
		{"empty query", gin.H{"query": "  "}},
		{"negative k", gin.H{"query": "时间", "k": -1}},
		{"k too large", gin.H{"query": "时间", "k": MaxK + 1}},
		{"bad threshold", gin.H{"query": "时间", "threshold": 2}},
		{"unknown mode", gin.H{"query": "时间", "mode": "fuzzy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := a.do(t, http.MethodPost, "/api/search", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, false, body["ok"])
		})
	}
}

func TestSearch_MissingCorpus(t *testing.T) {
	a := newTestAPI(t, false)
	rr, body := a.do(t, http.MethodPost, "/api/search", "", gin.H{"query": "时间"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestSearch_EmbedderDown(t *testing.T) {
	a := newTestAPI(t, true)
	a.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}
	rr, _ := a.do(t, http.MethodPost, "/api/search", "", gin.H{"query": "时间"})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestSearch_IndexBuildEmbedderDown(t *testing.T) {
	a := newTestAPI(t, true)
	a.embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("connection refused")
	}

	rr, body := a.do(t, http.MethodPost, "/api/search", "", gin.H{"query": "时间"})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "connection refused")
}

func TestAsk(t *testing.T) {
	a := newTestAPI(t, true)

	rr, body := a.do(t, http.MethodPost, "/api/ask", "", gin.H{"query": passages[0]})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, mock.DefaultReply, body["answer"])
	assert.Equal(t, false, body["skipped"])
	assert.NotContains(t, body, "error")

	a.chat.CompleteFunc = func(context.Context, ai.ChatRequest) (string, error) {
		return "", errors.New("upstream timeout")
	}
	rr, body = a.do(t, http.MethodPost, "/api/ask", "", gin.H{"query": passages[0]})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, body["error"], "upstream timeout")
	assert.Contains(t, body["answer"], "upstream timeout")

	rr, _ = a.do(t, http.MethodPost, "/api/ask", "", gin.H{"query": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuizFlow(t *testing.T) {
	a := newTestAPI(t, true)
	const sid = "quiz-session"

	rr, body := a.do(t, http.MethodGet, "/api/quiz", sid, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	quiz := body["quiz"].(map[string]any)
	assert.Equal(t, core.QuizStageOne.String(), quiz["stage"])
	assert.Len(t, quiz["words"], len(vocab.StageOneWords))

	rr, body = a.do(t, http.MethodPost, "/api/quiz/stage1", sid, gin.H{"known": vocab.StageOneWords[:12]})
	require.Equal(t, http.StatusOK, rr.Code)
	quiz = body["quiz"].(map[string]any)
	assert.Equal(t, string(core.BucketIntermediate), quiz["bucket"])

	rr, _ = a.do(t, http.MethodPost, "/api/quiz/stage1", sid, gin.H{"known": []string{}})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = a.do(t, http.MethodPost, "/api/quiz/stage2", sid, gin.H{"known": []string{"not-a-listed-word"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, body = a.do(t, http.MethodPost, "/api/quiz/stage2", sid, gin.H{"known": vocab.StageTwoWords[core.BucketIntermediate][:5]})
	require.Equal(t, http.StatusOK, rr.Code)
	profile := body["quiz"].(map[string]any)["profile"].(map[string]any)
	assert.Equal(t, float64(5500), profile["estimate"])
	assert.Equal(t, core.TierUnder6000.String(), profile["tier"])

	rr, _ = a.do(t, http.MethodDelete, "/api/quiz", sid, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	_, body = a.do(t, http.MethodGet, "/api/quiz", sid, nil)
	assert.Equal(t, core.QuizStageOne.String(), body["quiz"].(map[string]any)["stage"])
}

func TestMine(t *testing.T) {
	a := newTestAPI(t, true)
	text := "The committee reached a consensus after a long debate."

	a.chat.CompleteFunc = func(context.Context, ai.ChatRequest) (string, error) {
		return "```json\n[{\"headword\":\"consensus\",\"category\":\"word\",\"gloss\":\"共识\",\"example\":\"They reached a consensus.\"}]\n```", nil
	}
	rr, body := a.do(t, http.MethodPost, "/api/mine", "", gin.H{"text": text})
	require.Equal(t, http.StatusOK, rr.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "consensus", items[0].(map[string]any)["headword"])
	assert.Equal(t, false, body["truncated"])

	a.chat.CompleteFunc = func(context.Context, ai.ChatRequest) (string, error) {
		return "I could not find anything useful.", nil
	}
	rr, body = a.do(t, http.MethodPost, "/api/mine", "", gin.H{"text": text})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, body["items"])
	assert.NotEmpty(t, body["error"])

	calls := a.chat.CallCount()
	rr, _ = a.do(t, http.MethodPost, "/api/mine", "", gin.H{"text": "too short"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, calls, a.chat.CallCount())
}

func TestRateLimit(t *testing.T) {
	a := newTestAPI(t, true, WithLimiter(rate.NewLimiter(0, 1)))

	rr, _ := a.do(t, http.MethodPost, "/api/ask", "", gin.H{"query": passages[0]})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, body := a.do(t, http.MethodPost, "/api/ask", "", gin.H{"query": passages[0]})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, false, body["ok"])

	rr, _ = a.do(t, http.MethodPost, "/api/search", "", gin.H{"query": passages[0]})
	assert.Equal(t, http.StatusOK, rr.Code, "search is not rate limited")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{corpus.ErrCorpusUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: timeout", ingestion.ErrEmbedding), http.StatusBadGateway},
		{ingestion.ErrEmbeddingCountMismatch, http.StatusBadGateway},
		{search.ErrQueryEmbedding, http.StatusBadGateway},
		{vocab.ErrWrongStage, http.StatusConflict},
		{core.ErrUnknownWord, http.StatusBadRequest},
		{vocab.ErrNoProfile, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
