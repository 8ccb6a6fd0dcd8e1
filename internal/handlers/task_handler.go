package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"uat-portal-api/internal/database"
	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"
	"uat-portal-api/internal/notify"
	"uat-portal-api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StepRequest is one step definition inside a create or import payload
type StepRequest struct {
	Description    string `json:"description" binding:"required"`
	ExpectedResult string `json:"expectedResult"`
	TestData       string `json:"testData"`
}

func (r StepRequest) draft() service.StepDraft {
	return service.StepDraft{
		Description:    r.Description,
		ExpectedResult: r.ExpectedResult,
		TestData:       r.TestData,
	}
}

// CreateTaskRequest represents the request payload for creating the
// per-country tasks of one logical change
type CreateTaskRequest struct {
	Title         string              `json:"title" binding:"required"`
	Description   string              `json:"description"`
	Priority      models.TaskPriority `json:"priority"`
	Module        string              `json:"module"`
	DueDate       string              `json:"dueDate"`
	JiraTicket    string              `json:"jiraTicket"`
	ChangeRequest string              `json:"changeRequest"`
	Developer     string              `json:"developer"`
	Countries     []string            `json:"countries" binding:"required,min=1"`
	Assignees     map[string]string   `json:"assignees"`
	Steps         []StepRequest       `json:"steps"`
}

// UpdateTaskRequest represents a partial update of the shared metadata
// fields, optionally propagated across the task group
type UpdateTaskRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	JiraTicket       *string `json:"jiraTicket"`
	ChangeRequest    *string `json:"changeRequest"`
	Developer        *string `json:"developer"`
	DueDate          *string `json:"dueDate"`
	ExpectedModified string  `json:"expectedLastModified"`
	PropagateToGroup bool    `json:"propagateToGroup"`
}

// UpdateTaskStatusRequest represents a minimal request to change status.
// Status accepts the user-facing vocabulary as well as canonical names.
type UpdateTaskStatusRequest struct {
	Status           string `json:"status" binding:"required"`
	ExpectedModified string `json:"expectedLastModified"`
}

// SignOffRequest carries the optional freshness expectation for sign-off
// and deployment calls
type SignOffRequest struct {
	ExpectedModified string `json:"expectedLastModified"`
}

// CreateTask handles POST /api/tasks (admin)
// Creates one task per selected country; multiple countries share a group id.
func CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Module:        req.Module,
		DueDate:       req.DueDate,
		JiraTicket:    req.JiraTicket,
		ChangeRequest: req.ChangeRequest,
		Developer:     req.Developer,
		Countries:     req.Countries,
		Assignees:     req.Assignees,
	}
	for _, s := range req.Steps {
		in.Steps = append(in.Steps, s.draft())
	}

	tasks, events, err := taskService().CreateTasks(actorFromContext(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(events)

	c.JSON(http.StatusCreated, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTasks handles GET /api/tasks
// Query params: page (default 1), limit (default 20), sort (asc|desc on
// created_at), country, status (user vocabulary accepted), module, groupId,
// assigneeId.
func GetTasks(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "20")
	sortParam := strings.ToLower(c.DefaultQuery("sort", "desc"))

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	order := "created_at desc"
	if sortParam == "asc" {
		order = "created_at asc"
	}

	db := database.GetDB()
	query := db.Model(&models.Task{})
	if country := c.Query("country"); country != "" {
		query = query.Where("country = ?", country)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", lifecycle.StatusFromLabel(status))
	}
	if module := c.Query("module"); module != "" {
		query = query.Where("module = ?", module)
	}
	if groupID := c.Query("groupId"); groupID != "" {
		query = query.Where("task_group_id = ?", groupID)
	}
	if assigneeID := c.Query("assigneeId"); assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
		return
	}

	var tasks []models.Task
	result := query.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(offset).Find(&tasks)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	enrichAssignees(tasks)

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
		"total": total,
		"page":  page,
		"limit": limit,
		"sort":  sortParam,
	})
}

// enrichAssignees fills the response-only assignee field from the users table.
func enrichAssignees(tasks []models.Task) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		return
	}
	userByID := make(map[string]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	for i := range tasks {
		if u, ok := userByID[tasks[i].AssigneeID]; ok {
			tasks[i].Assignee = models.Assignee{ID: u.ID, Name: u.Username}
		}
	}
}

// GetTaskByID handles GET /api/tasks/:id
// Returns the task with its steps (ordered) and comments, plus the
// user-facing status label.
func GetTaskByID(c *gin.Context) {
	taskID := c.Param("id")

	var task models.Task
	err := database.GetDB().
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }).
		Preload("Comments").
		First(&task, "id = ?", taskID).Error
	if err != nil {
		respondError(c, err)
		return
	}

	if task.AssigneeID != "" {
		var u models.User
		if err := database.GetDB().First(&u, "id = ?", task.AssigneeID).Error; err == nil {
			task.Assignee = models.Assignee{ID: u.ID, Name: u.Username}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"task":        task,
		"statusLabel": lifecycle.LabelFor(task.Status),
		"locked":      lifecycle.IsLocked(&task),
	})
}

// UpdateTask handles PUT /api/tasks/:id (admin)
// Applies a partial metadata edit; with propagateToGroup it fans out to the
// unlocked siblings of the task group and reports the summary.
func UpdateTask(c *gin.Context) {
	taskID := c.Param("id")

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delta := service.MetadataDelta{
		Title:         req.Title,
		Description:   req.Description,
		JiraTicket:    req.JiraTicket,
		ChangeRequest: req.ChangeRequest,
		Developer:     req.Developer,
		DueDate:       req.DueDate,
	}

	res, err := taskService().ApplyMetadataEdit(actorFromContext(c), taskID, delta, req.ExpectedModified, req.PropagateToGroup)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(res.Events)

	c.JSON(http.StatusOK, res)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
func UpdateTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requested := lifecycle.StatusFromLabel(req.Status)
	ack, err := taskService().ChangeStatus(actorFromContext(c), taskID, requested, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(ack.Events)

	c.JSON(http.StatusOK, gin.H{
		"task":      ack.Task,
		"unchanged": ack.Unchanged,
	})
}

// SignOffTask handles POST /api/tasks/:id/signoff
// Freezes the task permanently once it is PASSED with all steps resolved.
func SignOffTask(c *gin.Context) {
	taskID := c.Param("id")

	var req SignOffRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	ack, err := taskService().SignOff(actorFromContext(c), taskID, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(ack.Events)

	c.JSON(http.StatusOK, gin.H{"task": ack.Task})
}

// DeployTask handles POST /api/tasks/:id/deploy (admin)
// Marks a signed-off task DEPLOYED; the lock stays in place.
func DeployTask(c *gin.Context) {
	taskID := c.Param("id")

	var req SignOffRequest
	_ = c.ShouldBindJSON(&req)

	ack, err := taskService().MarkDeployed(actorFromContext(c), taskID, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(ack.Events)

	c.JSON(http.StatusOK, gin.H{
		"task":      ack.Task,
		"unchanged": ack.Unchanged,
	})
}

// DeleteTask handles DELETE /api/tasks/:id (admin)
func DeleteTask(c *gin.Context) {
	taskID := c.Param("id")

	events, err := taskService().DeleteTask(actorFromContext(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(events)

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// GetStats handles GET /api/stats
// Returns task counts by status, optionally filtered by country.
func GetStats(c *gin.Context) {
	db := database.GetDB()

	type row struct {
		Status string
		Count  int64
	}

	query := db.Model(&models.Task{}).Select("status, COUNT(*) as count")
	if country := c.Query("country"); country != "" {
		query = query.Where("country = ?", country)
	}

	var rows []row
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	counts := map[string]int64{
		string(models.StatusDraft):      0,
		string(models.StatusReady):      0,
		string(models.StatusInProgress): 0,
		string(models.StatusBlocked):    0,
		string(models.StatusFailed):     0,
		string(models.StatusPassed):     0,
		string(models.StatusDeployed):   0,
	}
	var total int64
	for _, r := range rows {
		counts[r.Status] = r.Count
		total += r.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"byStatus": counts,
		"total":    total,
	})
}
