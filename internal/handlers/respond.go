package handlers

import (
	"errors"
	"net/http"

	"uat-portal-api/internal/database"
	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"
	"uat-portal-api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// statusForCode maps the lifecycle error taxonomy onto HTTP statuses. The
// code itself travels in the payload so clients key off it, not the status.
func statusForCode(code string) int {
	switch code {
	case lifecycle.CodeStaleWrite:
		return http.StatusConflict
	case lifecycle.CodeMalformedExpectation:
		return http.StatusBadRequest
	case lifecycle.CodeLocked:
		return http.StatusLocked
	case lifecycle.CodeTransitionRejected:
		return http.StatusUnprocessableEntity
	case lifecycle.CodeNotReady:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes the JSON error payload for a failed operation.
func respondError(c *gin.Context, err error) {
	if re, ok := lifecycle.AsRuleError(err); ok {
		c.JSON(statusForCode(re.Code), gin.H{
			"code":  re.Code,
			"error": re.Message,
		})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

// actorFromContext builds the service actor from the JWT claims stored by
// the auth middleware.
func actorFromContext(c *gin.Context) service.Actor {
	return service.Actor{
		ID:       c.GetString("user_id"),
		Username: c.GetString("username"),
		Role:     models.Role(c.GetString("role")),
		Country:  c.GetString("country"),
	}
}

func taskService() *service.TaskService {
	return service.NewTaskService(database.GetDB())
}
