package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"backend/internal/auth"
)

// Envelope statuses shared by every auth endpoint.
const (
	statusSuccess = "SUCCESS"
	statusFailed  = "FAILED"
	statusPending = "PENDING"
)

func respond(c *gin.Context, httpStatus int, status, message string, data interface{}) {
	body := gin.H{"status": status, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(httpStatus, body)
}

func respondSuccess(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, statusSuccess, message, data)
}

// respondAuthError maps the service error taxonomy onto the envelope.
// Anything unrecognized is logged and collapsed to a generic message.
func respondAuthError(c *gin.Context, route string, err error) {
	var validationErr *auth.ValidationError
	var unverifiedErr *auth.UnverifiedError
	var deliveryErr *auth.DeliveryError

	switch {
	case errors.As(err, &validationErr):
		respond(c, http.StatusBadRequest, statusFailed, validationErr.Error(), nil)
	case errors.Is(err, auth.ErrDuplicateAccount):
		respond(c, http.StatusConflict, statusFailed, err.Error(), nil)
	case errors.Is(err, auth.ErrAccountNotFound), errors.Is(err, auth.ErrTokenNotFound):
		respond(c, http.StatusNotFound, statusFailed, err.Error(), nil)
	case errors.Is(err, auth.ErrTokenExpired):
		respond(c, http.StatusGone, statusFailed, err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrUnauthorized):
		respond(c, http.StatusUnauthorized, statusFailed, err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidAssertion):
		respond(c, http.StatusUnauthorized, statusFailed, err.Error(), nil)
	case errors.As(err, &unverifiedErr):
		c.JSON(http.StatusForbidden, gin.H{
			"status":               statusFailed,
			"message":              unverifiedErr.Error(),
			"requiresVerification": true,
			"userId":               unverifiedErr.UserID.Hex(),
		})
	case errors.As(err, &deliveryErr):
		respond(c, http.StatusBadGateway, statusPending, deliveryErr.Error(), gin.H{
			"userId": deliveryErr.UserID.Hex(),
		})
	default:
		log.Printf("[%s] unexpected error: %v", route, err)
		respond(c, http.StatusInternalServerError, statusFailed, "something went wrong", nil)
	}
}

// respondBindingError reports the first missing/invalid field of a request
// body the way the service reports semantic failures.
func respondBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		field := lowerCamel(validationErrors[0].Field())
		respond(c, http.StatusBadRequest, statusFailed, fmt.Sprintf("%s is required", field), nil)
		return
	}
	respond(c, http.StatusBadRequest, statusFailed, "invalid request body", nil)
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  statusFailed,
			"message": "something went wrong",
		})
	}
}
