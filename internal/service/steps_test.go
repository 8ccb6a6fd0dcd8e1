package service

import (
	"testing"

	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"

	"github.com/stretchr/testify/require"
)

func stepBySeq(t *testing.T, steps []models.TaskStep, seq int) *models.TaskStep {
	t.Helper()
	for i := range steps {
		if steps[i].Seq == seq {
			return &steps[i]
		}
	}
	t.Fatalf("no step with seq %d", seq)
	return nil
}

func taskSteps(t *testing.T, svc *TaskService, taskID string) []models.TaskStep {
	t.Helper()
	var steps []models.TaskStep
	require.NoError(t, svc.db.Where("task_id = ?", taskID).Order("seq asc").Find(&steps).Error)
	return steps
}

func TestRecordStepOutcome_FirstPassMovesReadyToInProgress(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusReady, steps: []*bool{nil, nil}})

	steps := taskSteps(t, svc, task.ID)
	ack, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[0].ID, true, "", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, ack.Task.Status)
}

func TestRecordStepOutcome_AllPassDerivesPassed(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusInProgress, steps: []*bool{boolPtr(true), nil}})

	steps := taskSteps(t, svc, task.ID)
	ack, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[1].ID, true, "matches expected", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusPassed, ack.Task.Status)
	require.Equal(t, "matches expected", stepBySeq(t, ack.Task.Steps, 2).ActualResult)
}

func TestRecordStepOutcome_AnyFailDerivesFailed(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusInProgress, steps: []*bool{boolPtr(true), nil, nil}})

	steps := taskSteps(t, svc, task.ID)
	ack, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[1].ID, false, "", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusFailed, ack.Task.Status)
}

func TestRecordStepOutcome_FailedRecoversOnRetest(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusFailed, steps: []*bool{boolPtr(true), boolPtr(false)}})

	steps := taskSteps(t, svc, task.ID)
	ack, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[1].ID, true, "fixed in build 42", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusPassed, ack.Task.Status)
}

// A derived move the transition table forbids is dropped: the step write
// still lands, the status stays, and the conflict shows up in history.
func TestRecordStepOutcome_IllegalDerivationIsSkipped(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusBlocked, steps: []*bool{boolPtr(true), nil}})

	steps := taskSteps(t, svc, task.ID)
	ack, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[1].ID, true, "", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusBlocked, ack.Task.Status)
	require.NotNil(t, stepBySeq(t, ack.Task.Steps, 2).Passed)
	require.EqualValues(t, 1, countActivities(t, db, task.ID, models.ActionAggregationSkipped))
}

func TestRecordStepOutcome_RejectedOnDraft(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusDraft, steps: []*bool{nil}})

	steps := taskSteps(t, svc, task.ID)
	_, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[0].ID, true, "", "")
	requireRuleCode(t, err, lifecycle.CodeNotReady)
}

func TestRecordStepOutcome_DeployedNeverRegresses(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusDeployed, steps: []*bool{boolPtr(true)}})

	// Deployed tasks are normally also signed off; an unlocked one still
	// must not regress through aggregation.
	steps := taskSteps(t, svc, task.ID)
	ack, err := svc.RecordStepOutcome(stakeActor, task.ID, steps[0].ID, false, "", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusDeployed, ack.Task.Status)
}

func TestAddStep_AppendsAtNextSeq(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusReady, steps: []*bool{nil, nil}})

	created, err := svc.AddStep(adminActor, task.ID, StepDraft{Description: "check audit log"}, "")
	require.NoError(t, err)
	require.Equal(t, 3, created.Seq)
	require.EqualValues(t, 1, countActivities(t, db, task.ID, models.ActionStepAdded))
}

func TestUpdateStepDefinition_DoesNotTriggerAggregation(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusInProgress, steps: []*bool{boolPtr(true)}})

	steps := taskSteps(t, svc, task.ID)
	updated, err := svc.UpdateStepDefinition(adminActor, task.ID, steps[0].ID, StepDraft{Description: "reworded"}, "")
	require.NoError(t, err)
	require.Equal(t, "reworded", updated.Description)

	// Editing the definition leaves the derived status alone even though the
	// single step already passed.
	require.Equal(t, models.StatusInProgress, reload(t, db, task.ID).Status)
}

func TestDeleteStep_ResequencesRemaining(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusReady, steps: []*bool{nil, nil, nil}})

	before := taskSteps(t, svc, task.ID)
	first, middle, last := before[0], before[1], before[2]

	ack, err := svc.DeleteStep(adminActor, task.ID, middle.ID, "")
	require.NoError(t, err)
	require.Len(t, ack.Task.Steps, 2)

	after := taskSteps(t, svc, task.ID)
	require.Len(t, after, 2)
	require.Equal(t, first.ID, after[0].ID)
	require.Equal(t, 1, after[0].Seq)
	require.Equal(t, last.ID, after[1].ID)
	require.Equal(t, 2, after[1].Seq)
}

func TestImportSteps_AppendsAfterExisting(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusReady, steps: []*bool{nil}})

	drafts := []StepDraft{
		{Description: "open report page", ExpectedResult: "page loads"},
		{Description: "export csv", ExpectedResult: "file downloads", TestData: "march dataset"},
	}
	ack, err := svc.ImportSteps(adminActor, task.ID, drafts, "")
	require.NoError(t, err)
	require.Len(t, ack.Events, 1)

	steps := taskSteps(t, svc, task.ID)
	require.Len(t, steps, 3)
	require.Equal(t, 2, steps[1].Seq)
	require.Equal(t, "open report page", steps[1].Description)
	require.Equal(t, 3, steps[2].Seq)
	require.Equal(t, "march dataset", steps[2].TestData)
	require.EqualValues(t, 1, countActivities(t, db, task.ID, models.ActionStepsImported))
}

func TestImportSteps_RejectedWhenLocked(t *testing.T) {
	svc, db := newTestService(t)
	task := seedTask(t, db, seedOpts{status: models.StatusPassed, steps: []*bool{boolPtr(true)}})

	_, err := svc.SignOff(stakeActor, task.ID, "")
	require.NoError(t, err)

	_, err = svc.ImportSteps(adminActor, task.ID, []StepDraft{{Description: "late addition"}}, "")
	requireRuleCode(t, err, lifecycle.CodeLocked)
}
