package handlers

import (
	"net/http"
	"strconv"

	"uat-portal-api/internal/notify"
	"uat-portal-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// StepOutcomeRequest records a pass/fail result for one step
type StepOutcomeRequest struct {
	Passed           *bool  `json:"passed" binding:"required"`
	ActualResult     string `json:"actualResult"`
	ExpectedModified string `json:"expectedLastModified"`
}

// StepDefinitionRequest edits the admin-owned fields of a step
type StepDefinitionRequest struct {
	Description      string `json:"description"`
	ExpectedResult   string `json:"expectedResult"`
	TestData         string `json:"testData"`
	ExpectedModified string `json:"expectedLastModified"`
}

func stepIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("stepId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step id"})
		return 0, false
	}
	return uint(id), true
}

// AddStep handles POST /api/tasks/:id/steps (admin)
func AddStep(c *gin.Context) {
	var req StepDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}

	draft := service.StepDraft{
		Description:    req.Description,
		ExpectedResult: req.ExpectedResult,
		TestData:       req.TestData,
	}
	step, err := taskService().AddStep(actorFromContext(c), c.Param("id"), draft, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, step)
}

// UpdateStep handles PUT /api/tasks/:id/steps/:stepId (admin)
// Edits description/expected-result/test-data; never triggers aggregation.
func UpdateStep(c *gin.Context) {
	stepID, ok := stepIDParam(c)
	if !ok {
		return
	}

	var req StepDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := service.StepDraft{
		Description:    req.Description,
		ExpectedResult: req.ExpectedResult,
		TestData:       req.TestData,
	}
	step, err := taskService().UpdateStepDefinition(actorFromContext(c), c.Param("id"), stepID, draft, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, step)
}

// RecordStepOutcome handles PATCH /api/tasks/:id/steps/:stepId/outcome
// Stores the result and recomputes the task status from all steps.
func RecordStepOutcome(c *gin.Context) {
	stepID, ok := stepIDParam(c)
	if !ok {
		return
	}

	var req StepOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ack, err := taskService().RecordStepOutcome(actorFromContext(c), c.Param("id"), stepID, *req.Passed, req.ActualResult, req.ExpectedModified)
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(ack.Events)

	c.JSON(http.StatusOK, gin.H{"task": ack.Task})
}

// DeleteStep handles DELETE /api/tasks/:id/steps/:stepId (admin)
// Remaining steps are re-sequenced to stay contiguous from 1.
func DeleteStep(c *gin.Context) {
	stepID, ok := stepIDParam(c)
	if !ok {
		return
	}

	ack, err := taskService().DeleteStep(actorFromContext(c), c.Param("id"), stepID, c.Query("expectedLastModified"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Step deleted successfully",
		"steps":   ack.Task.Steps,
	})
}

// ImportSteps handles POST /api/tasks/:id/steps/import (admin)
// Accepts a multipart xlsx upload with columns: description, expected
// result, test data. The first row is treated as a header.
func ImportSteps(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload"})
		return
	}
	defer file.Close()

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid xlsx file"})
		return
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workbook has no sheets"})
		return
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read sheet"})
		return
	}

	var drafts []service.StepDraft
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		draft := service.StepDraft{Description: row[0]}
		if len(row) > 1 {
			draft.ExpectedResult = row[1]
		}
		if len(row) > 2 {
			draft.TestData = row[2]
		}
		drafts = append(drafts, draft)
	}
	if len(drafts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No steps found in file"})
		return
	}

	ack, err := taskService().ImportSteps(actorFromContext(c), c.Param("id"), drafts, c.Query("expectedLastModified"))
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Dispatch(ack.Events)

	c.JSON(http.StatusOK, gin.H{
		"imported": len(drafts),
		"task":     ack.Task,
	})
}
