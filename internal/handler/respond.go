package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/middleware"
	"taskboard/internal/service"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps service error kinds onto status codes. Unknown errors
// become a 500 with a generic body; the cause only goes to the log.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	message := err.Error()
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: message})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
	default:
		_ = c.Error(err)
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("❌ Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// currentUser reads the id set by the JWT middleware, replying 401 when it is
// missing.
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
	}
	return id, ok
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func uintQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		badRequest(c, "Query parameter "+name+" is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
