package server

import (
	"errors"
	"net/http"

	mealdomain "github.com/foodlens/offcache/internal/meal/domain"
	"github.com/foodlens/offcache/internal/offclient"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware renders the last handler error as a JSON payload
// when nothing was written yet.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "resource not found"}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, mealdomain.ErrEmptySelection),
		errors.Is(err, mealdomain.ErrInvalidDays),
		errors.Is(err, mealdomain.ErrInvalidRange),
		errors.Is(err, productdomain.ErrInvalidLimit):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: err.Error()}
	case errors.Is(err, offclient.ErrUpstreamUnavailable):
		// Retryable: the cache stays valid, the caller may try again or
		// degrade to a cache-only view.
		return http.StatusServiceUnavailable, errorPayload{Type: "upstream_unavailable", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal error"}
	}
}

func invalidRequestError() error {
	return ErrInvalidRequest
}
