package api

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/poiesic/lexis"
	"github.com/poiesic/lexis/config"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/vocab"
	"golang.org/x/time/rate"
)

// Service is the engine surface the handlers use. *lexis.Engine implements it.
type Service interface {
	Search(ctx context.Context, query string, opts search.Options) ([]core.ScoredResult, error)
	Keyword(ctx context.Context, query string, k int) ([]core.ScoredResult, error)
	Ask(ctx context.Context, query string, k int) (*lexis.AskResult, error)
	Mine(ctx context.Context, sessionID, text string) core.MineResult
	Quiz() *vocab.Service
	Corpus(ctx context.Context) lexis.CorpusStatus
	Reload()
	Features(ctx context.Context) lexis.Features
}

// RouterOption configures NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	logger  *slog.Logger
	limiter *rate.Limiter
}

// WithLogger sets the request logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) RouterOption {
	return func(o *routerOptions) {
		o.logger = logger
	}
}

// WithLimiter replaces the limiter built from the server config.
func WithLimiter(limiter *rate.Limiter) RouterOption {
	return func(o *routerOptions) {
		o.limiter = limiter
	}
}

// NewRouter builds the gin engine serving svc.
func NewRouter(svc Service, cfg config.ServerConfig, opts ...RouterOption) *gin.Engine {
	options := &routerOptions{}
	if cfg.RateLimit > 0 {
		options.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	h := &handler{svc: svc}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(sessionID())
	r.Use(requestLogger(options.logger.With("component", "api")))

	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/features", h.features)
	api.GET("/corpus", h.corpus)
	api.POST("/corpus/reload", h.reload)
	api.POST("/search", h.search)

	quiz := api.Group("/quiz")
	quiz.GET("", h.quizState)
	quiz.POST("/stage1", h.stageOne)
	quiz.POST("/stage2", h.stageTwo)
	quiz.DELETE("", h.quizReset)

	limited := api.Group("", rateLimit(options.limiter))
	limited.POST("/ask", h.ask)
	limited.POST("/mine", h.mine)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", SessionHeader},
		ExposeHeaders: []string{SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
