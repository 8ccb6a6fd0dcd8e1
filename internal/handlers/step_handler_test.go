package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"uat-portal-api/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildStepsWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []string{"Description", "Expected Result", "Test Data"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+2)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportSteps_FromWorkbook(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter()

	task := models.Task{ID: "t-1", Title: "Import target", Status: models.StatusReady, Country: "SG"}
	require.NoError(t, db.Create(&task).Error)
	require.NoError(t, db.Create(&models.TaskStep{TaskID: task.ID, Seq: 1, Description: "existing step"}).Error)

	workbook := buildStepsWorkbook(t, [][]string{
		{"open invoice screen", "screen loads", "invoice INV-100"},
		{"apply credit note", "balance drops", ""},
		{"", "", ""}, // blank rows are skipped
	})

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "steps.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/t-1/steps/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.EqualValues(t, 2, resp["imported"])

	// Imported steps append after the existing sequence.
	var steps []models.TaskStep
	require.NoError(t, db.Where("task_id = ?", task.ID).Order("seq asc").Find(&steps).Error)
	require.Len(t, steps, 3)
	require.Equal(t, "existing step", steps[0].Description)
	require.Equal(t, 2, steps[1].Seq)
	require.Equal(t, "open invoice screen", steps[1].Description)
	require.Equal(t, "invoice INV-100", steps[1].TestData)
	require.Equal(t, 3, steps[2].Seq)
	require.Equal(t, "apply credit note", steps[2].Description)
}

func TestImportSteps_RejectsNonWorkbook(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter()

	task := models.Task{ID: "t-1", Title: "Import target", Status: models.StatusReady, Country: "SG"}
	require.NoError(t, db.Create(&task).Error)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "steps.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a spreadsheet"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/t-1/steps/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddStep_RequiresDescription(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter()

	task := models.Task{ID: "t-1", Title: "Authoring", Status: models.StatusReady, Country: "SG"}
	require.NoError(t, db.Create(&task).Error)

	w := doJSON(t, r, http.MethodPost, "/api/tasks/t-1/steps", adminToken(t), map[string]any{
		"expectedResult": "no description given",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteStep_ResequencesOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter()

	task := models.Task{ID: "t-1", Title: "Trim", Status: models.StatusReady, Country: "SG"}
	require.NoError(t, db.Create(&task).Error)
	var middle models.TaskStep
	for i, desc := range []string{"first", "second", "third"} {
		step := models.TaskStep{TaskID: task.ID, Seq: i + 1, Description: desc}
		require.NoError(t, db.Create(&step).Error)
		if desc == "second" {
			middle = step
		}
	}

	w := doJSON(t, r, http.MethodDelete,
		"/api/tasks/t-1/steps/"+strconv.Itoa(int(middle.ID)), adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var steps []models.TaskStep
	require.NoError(t, db.Where("task_id = ?", task.ID).Order("seq asc").Find(&steps).Error)
	require.Len(t, steps, 2)
	require.Equal(t, "first", steps[0].Description)
	require.Equal(t, 1, steps[0].Seq)
	require.Equal(t, "third", steps[1].Description)
	require.Equal(t, 2, steps[1].Seq)
}
