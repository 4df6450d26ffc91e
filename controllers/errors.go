package controllers

import (
	"errors"
	"net/http"

	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

type apiError struct {
	status int
	code   string
	msg    string
}

func classify(err error) apiError {
	switch {
	case errors.Is(err, svc.ErrAuth):
		return apiError{http.StatusUnauthorized, "unauthorized", "missing, invalid or expired token"}
	case errors.Is(err, svc.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"}
	case errors.Is(err, svc.ErrUserNotFound):
		return apiError{http.StatusNotFound, "user_not_found", "User not found"}
	case errors.Is(err, svc.ErrUserExists):
		return apiError{http.StatusBadRequest, "user_exists", "Username already exists"}
	case errors.Is(err, svc.ErrWeakPassword):
		return apiError{http.StatusBadRequest, "weak_password", "Password must contain at least one letter and one number"}
	case errors.Is(err, svc.ErrEmptyMessage):
		return apiError{http.StatusBadRequest, "empty_message", "Message text is required"}
	case errors.Is(err, svc.ErrInvalidInput):
		return apiError{http.StatusBadRequest, "invalid_input", err.Error()}
	case errors.Is(err, svc.ErrUpstream):
		return apiError{http.StatusBadGateway, "upstream_error", "The assistant is unavailable, please try again"}
	default:
		return apiError{http.StatusInternalServerError, "internal_error", "internal server error"}
	}
}

// respondError writes the JSON error body for err and attaches err to the
// gin context for the request log.
func respondError(c *gin.Context, err error) {
	e := classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.status, gin.H{"msg": e.msg, "error": e.code})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": msg, "error": "invalid_input"})
}
