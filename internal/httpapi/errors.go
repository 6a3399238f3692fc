package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
)

// errorBody is the JSON error payload.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Category         string                    `json:"category"`
	Message          string                    `json:"message"`
	ValidationErrors goerrors.ValidationErrors `json:"validation_errors,omitempty"`
	RequestID        string                    `json:"request_id,omitempty"`
}

// StatusFor maps an error category to an HTTP status.
func StatusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	var gerr *goerrors.Error
	if !errors.As(err, &gerr) {
		gerr = goerrors.Wrap(err, goerrors.CategoryInternal, err.Error())
	}
	status := StatusFor(gerr.Category)
	if status >= http.StatusInternalServerError {
		logctx.From(c.Request.Context()).Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	c.Header(headerCacheControl, "no-store")
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{
		Category:         gerr.Category.String(),
		Message:          gerr.Message,
		ValidationErrors: gerr.ValidationErrors,
		RequestID:        GetRequestID(c),
	}})
}

func respondStatus(c *gin.Context, status int, category, message string) {
	c.Header(headerCacheControl, "no-store")
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{
		Category:  category,
		Message:   message,
		RequestID: GetRequestID(c),
	}})
}
