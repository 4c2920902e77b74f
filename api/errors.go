package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
	"github.com/poiesic/lexis/ingestion"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/vocab"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, corpus.ErrCorpusUnavailable), errors.Is(err, ingestion.ErrEmptyCorpus):
		return http.StatusServiceUnavailable
	case errors.Is(err, search.ErrQueryEmbedding),
		errors.Is(err, ingestion.ErrEmbedding),
		errors.Is(err, ingestion.ErrEmbeddingCountMismatch),
		errors.Is(err, ingestion.ErrEmptyEmbedding):
		return http.StatusBadGateway
	case errors.Is(err, vocab.ErrWrongStage):
		return http.StatusConflict
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, vocab.ErrInputTooShort),
		errors.Is(err, core.ErrEmptySessionID),
		errors.Is(err, core.ErrUnknownWord):
		return http.StatusBadRequest
	case errors.Is(err, vocab.ErrNoProfile):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
}

func failErr(c *gin.Context, err error) {
	fail(c, statusFor(err), err.Error())
}

// errText renders an optional error for inline reporting.
func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
