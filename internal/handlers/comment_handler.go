package handlers

import (
	"log"
	"net/http"

	"uat-portal-api/internal/database"
	"uat-portal-api/internal/models"
	"uat-portal-api/internal/notify"

	"github.com/gin-gonic/gin"
)

// CreateCommentRequest represents the comment creation payload
type CreateCommentRequest struct {
	Body             string `json:"body" binding:"required"`
	StepSeq          *int   `json:"stepSeq"`
	ExpectedModified string `json:"expectedLastModified"`
}

// CreateComment handles POST /api/tasks/:id/comments
func CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, events, err := taskService().AddComment(actorFromContext(c), c.Param("id"), req.Body, req.StepSeq, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(events)

	c.JSON(http.StatusCreated, comment)
}

// GetComments handles GET /api/tasks/:id/comments
// Listing marks all of the task's comments as read for the caller.
func GetComments(c *gin.Context) {
	taskID := c.Param("id")

	var comments []models.Comment
	if err := database.GetDB().
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	userID := c.GetString("user_id")
	if err := taskService().MarkCommentsRead(userID, taskID); err != nil {
		// read markers are convenience state, not worth failing the listing
		log.Printf("comments: failed to mark read for %s: %v", userID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    len(comments),
	})
}
