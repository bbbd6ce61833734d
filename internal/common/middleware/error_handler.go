package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deskwarrior-backend/internal/common/errors"
	"deskwarrior-backend/internal/common/logger"
)

// ErrorHandler recovers panics and turns them into a structured 500.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		logger.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		SendError(c, appErr)
	})
}

// RequestID assigns every request an ID, taken from the header when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
}

// SendError writes err as a JSON response with the matching status code.
// Non-AppError values are wrapped as internal errors.
func SendError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Unexpected error")
	}

	requestID := getRequestID(c)

	switch {
	case appErr.IsInternal():
		logger.Error().
			Str("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Str("code", string(appErr.Code)).
			Err(appErr.Cause).
			Msg(appErr.Message)
	default:
		logger.Info().
			Str("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Str("code", string(appErr.Code)).
			Msg(appErr.Message)
	}

	c.AbortWithStatusJSON(statusCode(appErr), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

func statusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeInvalidInterval:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUserNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict, errors.ErrCodeDuplicateAck:
		return http.StatusConflict
	case errors.ErrCodeUserPaused:
		return http.StatusForbidden
	case errors.ErrCodeNoPendingSession, errors.ErrCodeSessionExpired, errors.ErrCodeNotAcknowledgeable:
		return http.StatusGone
	case errors.ErrCodeStorageError:
		return http.StatusInternalServerError
	case errors.ErrCodeDeliveryFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
