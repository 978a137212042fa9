package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thywilljoshua/study-companion/internal/ai"
	"github.com/thywilljoshua/study-companion/internal/export"
	"github.com/thywilljoshua/study-companion/internal/ingest"
	"github.com/thywilljoshua/study-companion/internal/session"
	"github.com/thywilljoshua/study-companion/internal/study"
)

var (
	errNotPDF     = errors.New("only .pdf files are accepted")
	errNoFile     = errors.New("no file was uploaded")
	errBadRequest = errors.New("malformed request")
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// classify maps an event error onto an HTTP status, a stable code and a
// message fit for the user.
func classify(err error) (int, apiError) {
	var (
		xerr   *ingest.ExtractionError
		gerr   *ai.GenerationError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &xerr):
		return http.StatusUnprocessableEntity, apiError{"Could not read the PDF: " + xerr.Err.Error(), "extraction_failed"}
	case errors.Is(err, study.ErrEmptyText):
		return http.StatusUnprocessableEntity, apiError{"The document has no extractable text.", "empty_text"}
	case errors.Is(err, session.ErrNoDocument):
		return http.StatusConflict, apiError{"Upload a course document first.", "no_document"}
	case errors.Is(err, session.ErrNoSummary):
		return http.StatusConflict, apiError{"Generate a summary first.", "no_summary"}
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge, apiError{"The file is too large.", "too_large"}
	case errors.Is(err, study.ErrEmptyQuestion),
		errors.Is(err, study.ErrUnknownLevel),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, errNotPDF),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, apiError{err.Error(), "bad_request"}
	case errors.As(err, &gerr):
		return http.StatusBadGateway, apiError{"The model call failed: " + gerr.Err.Error(), "generation_failed"}
	}
	return http.StatusInternalServerError, apiError{"Internal error.", "internal"}
}

func (s *Server) logFailure(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("event failed", zap.String("session", sessionID(c)), zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, body := classify(err)
	s.logFailure(c, status, err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
