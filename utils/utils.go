package utils

import (
	"errors"
	"net/http"
	"strings"

	"techhub/logger"
	"techhub/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NewRequestID creates a new UUID v4 and returns its string representation
// with all dashes removed.
func NewRequestID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// GinOK sends a success envelope with data.
func GinOK(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{Success: true, Message: message, Data: data})
}

// GinList sends a success envelope with a list and its length in count.
func GinList(c *gin.Context, data []models.Record) {
	if data == nil {
		data = []models.Record{}
	}
	n := len(data)
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Count: &n})
}

// GinError sends an error envelope with a specific status code and aborts the chain.
// It logs the error server-side as well.
func GinError(c *gin.Context, statusCode int, message string) {
	entry := logger.Log.WithFields(map[string]any{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": statusCode,
	})
	if statusCode >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Info(message)
	}
	c.AbortWithStatusJSON(statusCode, Response{Success: false, Message: message})
}

// GinBadRequest sends a 400 Bad Request error response.
func GinBadRequest(c *gin.Context, message string) {
	GinError(c, http.StatusBadRequest, message)
}

// GinForbidden sends a 403 Forbidden error response.
func GinForbidden(c *gin.Context, message string) {
	GinError(c, http.StatusForbidden, message)
}

// GinNotFound sends a 404 Not Found error response.
func GinNotFound(c *gin.Context, message string) {
	GinError(c, http.StatusNotFound, message)
}

// ServerErrorMessage is the only text a client sees for an unexpected failure.
const ServerErrorMessage = "Server error"

// StatusFor maps an error to its HTTP status and client-safe message.
func StatusFor(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict, "User with this email already exists"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized, "Access denied. No token provided."
	case errors.Is(err, models.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token."
	case errors.Is(err, models.ErrInvalidOldPassword):
		return http.StatusBadRequest, "Invalid old password"
	case errors.Is(err, models.ErrInactiveAccount):
		return http.StatusForbidden, "Your account has been deactivated. Please contact support."
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "Access denied."
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusInternalServerError, "Server configuration error: JWT secret is missing."
	default:
		return http.StatusInternalServerError, ServerErrorMessage
	}
}

// RespondError writes the envelope for err. Unexpected errors are logged in full
// and reported to the client only as a generic server error.
func RespondError(c *gin.Context, err error) {
	status, message := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).Errorf("Request %s %s failed", c.Request.Method, c.Request.URL.Path)
	}
	GinError(c, status, message)
}
