// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the envelope of every failed request.
type ErrorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

// DetailBody is used by endpoints that answer with a message only.
type DetailBody struct {
	Detail string `json:"detail"`
}

// JSON writes the raw object as the response body.
func JSON(c *gin.Context, status int, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

// Detail writes {"detail": message}.
func Detail(c *gin.Context, status int, message string) {
	c.JSON(status, DetailBody{Detail: message})
}

// NoContent writes an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string) {
	// Abort before writing so later handlers do not append to the body
	c.Abort()
	c.JSON(code, ErrorBody{Detail: message})
}

// ValidationError sends a 400 carrying every field problem.
func ValidationError(c *gin.Context, fields map[string]string) {
	c.Abort()
	c.JSON(http.StatusBadRequest, ErrorBody{
		Detail: "Invalid input.",
		Errors: fields,
	})
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// FromError translates a service error into status and detail. Unknown
// errors become a 500 and are logged with their cause.
func FromError(c *gin.Context, logger *zap.Logger, err error) {
	if ve, ok := validation.AsError(err); ok {
		ValidationError(c, ve.Fields)
		return
	}

	if be, ok := xerrors.AsBillingError(err); ok {
		Error(c, http.StatusBadGateway, be.Error())
		return
	}

	status, fallback := classify(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("unhandled error",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		Error(c, status, fallback)
		return
	}

	var de *xerrors.DetailError
	if errors.As(err, &de) {
		Error(c, status, de.Detail)
		return
	}
	Error(c, status, fallback)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, xerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, xerrors.ErrInactiveAccount):
		return http.StatusUnauthorized, "User account is disabled."
	case errors.Is(err, xerrors.ErrDeviceLimitExceeded):
		return http.StatusUnauthorized, "Maximum number of active devices reached."
	case errors.Is(err, xerrors.ErrUnauthorized), errors.Is(err, xerrors.ErrSessionExpired):
		return http.StatusUnauthorized, "Authentication credentials were not provided or are invalid."
	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, try again later."
	case errors.Is(err, xerrors.ErrConflict):
		return http.StatusBadRequest, "Resource already exists."
	case errors.Is(err, xerrors.ErrInvalidInput), errors.Is(err, xerrors.ErrBadRequest):
		return http.StatusBadRequest, "Invalid input."
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}
