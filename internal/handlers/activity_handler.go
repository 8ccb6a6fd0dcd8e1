package handlers

import (
	"net/http"

	"uat-portal-api/internal/database"
	"uat-portal-api/internal/models"

	"github.com/gin-gonic/gin"
)

// GetActivity handles GET /api/tasks/:id/activity
// The history stays readable even after the task is signed off.
func GetActivity(c *gin.Context) {
	taskID := c.Param("id")

	var entries []models.Activity
	if err := database.GetDB().
		Where("task_id = ?", taskID).
		Order("created_at desc, id desc").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity": entries,
		"count":    len(entries),
	})
}
