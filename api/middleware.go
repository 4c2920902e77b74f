package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// SessionHeader carries the session id in both directions.
const SessionHeader = "X-Session-ID"

const sessionKey = "session_id"

// sessionID reads the session id header, generating one when absent, and
// echoes it on the response.
func sessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(sessionKey, id)
		c.Writer.Header().Set(SessionHeader, id)
		c.Next()
	}
}

func session(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"session", session(c))
	}
}

// rateLimit rejects requests beyond the limiter's budget with 429.
// A nil limiter admits everything.
func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			fail(c, http.StatusTooManyRequests, "too many requests, try again shortly")
			return
		}
		c.Next()
	}
}
