// api/middleware/error_handler.go
package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10" // Import validator for binding errors

	"github.com/Annany2002/nebula-docstore/internal/auth"    // Import internal auth errors
	"github.com/Annany2002/nebula-docstore/internal/backup"  // Import import/export errors
	"github.com/Annany2002/nebula-docstore/internal/core"    // Import input validation errors
	"github.com/Annany2002/nebula-docstore/internal/gateway" // Import gateway errors
	"github.com/Annany2002/nebula-docstore/internal/storage" // Import internal storage errors
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers attach errors with c.Error and never write error bodies themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// We only handle the last error for the response.
		err := c.Errors.Last().Err
		customLog.Debugf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		statusCode, userMessage := classify(err)
		if statusCode == http.StatusInternalServerError {
			customLog.Errorf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			customLog.Warnf("[ErrorHandler] Response already written before handling error: %v", err)
		}
	}
}

// classify maps an error to its HTTP status and client-facing message.
func classify(err error) (int, string) {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, gateway.ErrMalformedRequest),
		errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, backup.ErrInvalidDataset):
		return http.StatusBadRequest, err.Error()

	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			customLog.Debugf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
		}
		return http.StatusBadRequest, "Validation failed. Please check your input."

	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Invalid JSON request body."

	case errors.Is(err, auth.ErrInvalidAPIKey):
		return http.StatusUnauthorized, "Invalid or inactive API key"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."

	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Authentication token has expired."

	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Authorization header required."

	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenClaimsInvalid),
		errors.Is(err, auth.ErrUnexpectedSigningMethod):
		return http.StatusUnauthorized, "Invalid or malformed authentication token."

	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrDatabaseNotFound),
		errors.Is(err, storage.ErrTableNotFound),
		errors.Is(err, storage.ErrRowNotFound),
		errors.Is(err, storage.ErrAPIKeyNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, storage.ErrEmailExists),
		errors.Is(err, storage.ErrTableExists):
		return http.StatusConflict, err.Error()

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()

	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}
