package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/pkg/middleware"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// respondServiceError maps the domain's sentinel errors onto the HTTP
// taxonomy. Anything unrecognized is a 500 with a generic body; the detail
// stays in the server log.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("unexpected error",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func identity(c *gin.Context) (domain.Identity, bool) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
	}
	return ident, ok
}
