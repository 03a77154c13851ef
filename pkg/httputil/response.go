package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithMessage sends a success response that only carries a message.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
	})
}

// RespondWithError sends an error response. The underlying cause is only
// echoed outside release mode; server errors are always logged.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	status := appErr.StatusCode()

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	resp := Response{
		Success: false,
		Message: appErr.Message,
	}
	if gin.Mode() != gin.ReleaseMode && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}
