package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/vocab"
)

// MaxK caps the number of results a client may ask for.
const MaxK = 50

// Search modes.
const (
	ModeSemantic = "semantic"
	ModeKeyword  = "keyword"
)

type handler struct {
	svc Service
}

type resultView struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

func resultViews(results []core.ScoredResult) []resultView {
	views := make([]resultView, len(results))
	for i, r := range results {
		views[i] = resultView{Index: r.Passage.Index, Text: r.Passage.Text, Score: r.Score}
	}
	return views
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "healthy"})
}

func (h *handler) features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "features": h.svc.Features(c.Request.Context())})
}

func (h *handler) corpus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "corpus": h.svc.Corpus(c.Request.Context())})
}

func (h *handler) reload(c *gin.Context) {
	h.svc.Reload()
	c.JSON(http.StatusOK, gin.H{"ok": true, "corpus": h.svc.Corpus(c.Request.Context())})
}

type searchReq struct {
	Query     string   `json:"query"`
	K         int      `json:"k"`
	Threshold *float64 `json:"threshold"`
	Mode      string   `json:"mode"`
}

func (h *handler) search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		failErr(c, search.ErrEmptyQuery)
		return
	}
	if req.K < 0 || req.K > MaxK {
		fail(c, http.StatusBadRequest, "k must be between 0 and 50")
		return
	}

	var (
		results []core.ScoredResult
		err     error
	)
	ctx := c.Request.Context()
	switch mode := strings.ToLower(req.Mode); mode {
	case "", ModeSemantic:
		req.Mode = ModeSemantic
		opts := search.Options{K: req.K}
		if req.Threshold != nil {
			if *req.Threshold < -1 || *req.Threshold > 1 {
				fail(c, http.StatusBadRequest, "threshold must be between -1 and 1")
				return
			}
			opts.Threshold = *req.Threshold
		}
		results, err = h.svc.Search(ctx, query, opts)
	case ModeKeyword:
		req.Mode = ModeKeyword
		results, err = h.svc.Keyword(ctx, query, req.K)
	default:
		fail(c, http.StatusBadRequest, "mode must be semantic or keyword")
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "mode": req.Mode, "results": resultViews(results)})
}

type askReq struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (h *handler) ask(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		failErr(c, search.ErrEmptyQuery)
		return
	}
	if req.K < 0 || req.K > MaxK {
		fail(c, http.StatusBadRequest, "k must be between 0 and 50")
		return
	}

	result, err := h.svc.Ask(c.Request.Context(), query, req.K)
	if err != nil {
		failErr(c, err)
		return
	}

	body := gin.H{
		"ok":      true,
		"results": resultViews(result.Results),
		"answer":  result.Answer.Text,
		"skipped": result.Answer.Skipped,
	}
	if result.Answer.Failed() {
		body["error"] = errText(result.Answer.Err)
	}
	c.JSON(http.StatusOK, body)
}

type profileView struct {
	Estimate    int    `json:"estimate"`
	Bucket      string `json:"bucket"`
	Tier        string `json:"tier"`
	Instruction string `json:"instruction"`
}

type quizView struct {
	Stage   string       `json:"stage"`
	Words   []string     `json:"words"`
	Bucket  string       `json:"bucket,omitempty"`
	Profile *profileView `json:"profile,omitempty"`
}

func stateView(state *core.SessionState) quizView {
	view := quizView{
		Stage:  state.Stage.String(),
		Words:  vocab.Words(state),
		Bucket: string(state.Bucket),
	}
	if p := state.Profile; p != nil {
		view.Profile = &profileView{
			Estimate:    p.Estimate,
			Bucket:      string(p.Bucket),
			Tier:        p.Tier.String(),
			Instruction: p.Instruction,
		}
	}
	return view
}

func (h *handler) quizState(c *gin.Context) {
	state, err := h.svc.Quiz().State(c.Request.Context(), session(c))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "quiz": stateView(state)})
}

type knownReq struct {
	Known []string `json:"known"`
}

func (h *handler) stageOne(c *gin.Context) {
	h.submit(c, h.svc.Quiz().SubmitStageOne)
}

func (h *handler) stageTwo(c *gin.Context) {
	h.submit(c, h.svc.Quiz().SubmitStageTwo)
}

func (h *handler) submit(c *gin.Context, step func(ctx context.Context, id string, known []string) (*core.SessionState, error)) {
	var req knownReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	state, err := step(c.Request.Context(), session(c), req.Known)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "quiz": stateView(state)})
}

func (h *handler) quizReset(c *gin.Context) {
	if err := h.svc.Quiz().Reset(c.Request.Context(), session(c)); err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type mineReq struct {
	Text string `json:"text"`
}

func (h *handler) mine(c *gin.Context) {
	var req mineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid body")
		return
	}

	result := h.svc.Mine(c.Request.Context(), session(c), req.Text)
	if errors.Is(result.Err, vocab.ErrInputTooShort) {
		failErr(c, result.Err)
		return
	}

	items := make([]gin.H, len(result.Items))
	for i, item := range result.Items {
		items[i] = gin.H{
			"headword": item.Headword,
			"category": string(item.Category),
			"gloss":    item.Gloss,
			"example":  item.Example,
		}
	}
	body := gin.H{"ok": true, "items": items, "truncated": result.Truncated}
	if result.Err != nil {
		body["error"] = errText(result.Err)
	}
	c.JSON(http.StatusOK, body)
}
