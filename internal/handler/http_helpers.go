package handler

import (
	"errors"
	"net/http"

	"github.com/futureme/internal/service"
	"github.com/futureme/internal/state"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// statusForError 将服务层的哨兵错误映射为 HTTP 状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrProfileLocked),
		errors.Is(err, service.ErrAlreadyCheckedIn):
		return http.StatusConflict
	case errors.Is(err, service.ErrProfileRequired),
		errors.Is(err, state.ErrInvalidPersona),
		errors.Is(err, state.ErrInvalidHorizon),
		errors.Is(err, state.ErrInvalidTrigger):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	status := statusForError(err)
	message := fallback
	if status != http.StatusInternalServerError {
		message = err.Error()
	} else {
		c.Error(err)
	}
	respondError(c, status, message)
}
