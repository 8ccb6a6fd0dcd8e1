package service

import (
	"fmt"

	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"

	"gorm.io/gorm"
)

// StepDraft is the definition of one step to create (authoring, template or
// import), before it gets a sequence number assigned.
type StepDraft struct {
	Description    string `json:"description"`
	ExpectedResult string `json:"expectedResult"`
	TestData       string `json:"testData"`
}

// RecordStepOutcome stores a pass/fail result for one step and recomputes
// the owning task's status from the full current step set. The derived
// status only applies when the transition table allows it; an illegal
// derivation (e.g. PASSED out of BLOCKED) is dropped and recorded in
// history instead of being forced.
func (s *TaskService) RecordStepOutcome(actor Actor, taskID string, stepID uint, outcome bool, actualResult, expected string) (*Ack, error) {
	var ack Ack
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if err := lifecycle.EnsureUnlocked(task); err != nil {
			return err
		}
		if err := lifecycle.EnsureNotDraft(task); err != nil {
			return err
		}

		var step models.TaskStep
		if err := tx.First(&step, "id = ? AND task_id = ?", stepID, task.ID).Error; err != nil {
			return err
		}

		step.Passed = &outcome
		if actualResult != "" {
			step.ActualResult = actualResult
		}
		if err := tx.Model(&step).Updates(map[string]any{
			"passed":        outcome,
			"actual_result": step.ActualResult,
		}).Error; err != nil {
			return err
		}

		result := "FAIL"
		if outcome {
			result = "PASS"
		}
		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionStepOutcome,
			Message: fmt.Sprintf("step %d recorded as %s", step.Seq, result),
			After:   map[string]any{"seq": step.Seq, "passed": outcome},
		})

		ack.Events = append(ack.Events, Event{
			Type:    EventStepOutcome,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s: step %d %s", task.Title, step.Seq, result),
		})

		var steps []models.TaskStep
		if err := tx.Where("task_id = ?", task.ID).Order("seq asc").Find(&steps).Error; err != nil {
			return err
		}

		s.touch(task, actor)
		changes := touchChanges(task)

		if target, changed := lifecycle.DeriveStatus(task.Status, steps); changed {
			if err := lifecycle.ValidateTransition(task.Status, target); err != nil {
				// Aggregation wanted a move the table forbids. Keep the
				// current status and leave a trail of the conflict.
				s.rec.Record(tx, RecordInput{
					TaskID:  task.ID,
					ActorID: actor.ID,
					Action:  models.ActionAggregationSkipped,
					Message: fmt.Sprintf("derived status %s not applied: %v", target, err),
				})
			} else {
				previous := task.Status
				task.Status = target
				changes["status"] = target
				s.rec.Record(tx, RecordInput{
					TaskID:  task.ID,
					ActorID: actor.ID,
					Action:  models.ActionStatusChanged,
					Message: fmt.Sprintf("status derived from step outcomes: %s -> %s", previous, target),
					Before:  map[string]any{"status": previous},
					After:   map[string]any{"status": target},
				})
				ack.Events = append(ack.Events, Event{
					Type:    EventStatusChanged,
					TaskID:  task.ID,
					Country: task.Country,
					ActorID: actor.ID,
					Message: fmt.Sprintf("%s: status %s -> %s", task.Title, previous, target),
				})
			}
		}

		if err := tx.Model(task).Updates(changes).Error; err != nil {
			return err
		}
		task.Steps = steps
		ack.Task = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// AddStep appends one step at the next sequence position.
func (s *TaskService) AddStep(actor Actor, taskID string, draft StepDraft, expected string) (*models.TaskStep, error) {
	var created models.TaskStep
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if err := lifecycle.EnsureUnlocked(task); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.TaskStep{}).Where("task_id = ?", task.ID).Count(&count).Error; err != nil {
			return err
		}

		created = models.TaskStep{
			TaskID:         task.ID,
			Seq:            int(count) + 1,
			Description:    draft.Description,
			ExpectedResult: draft.ExpectedResult,
			TestData:       draft.TestData,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		s.touch(task, actor)
		if err := tx.Model(task).Updates(touchChanges(task)).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionStepAdded,
			Message: fmt.Sprintf("step %d added", created.Seq),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateStepDefinition edits the admin-owned fields of a step (description,
// expected result, test data). This path never triggers aggregation.
func (s *TaskService) UpdateStepDefinition(actor Actor, taskID string, stepID uint, draft StepDraft, expected string) (*models.TaskStep, error) {
	var updated models.TaskStep
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if err := lifecycle.EnsureUnlocked(task); err != nil {
			return err
		}

		if err := tx.First(&updated, "id = ? AND task_id = ?", stepID, task.ID).Error; err != nil {
			return err
		}
		changes := map[string]any{}
		if draft.Description != "" {
			updated.Description = draft.Description
			changes["description"] = draft.Description
		}
		if draft.ExpectedResult != "" {
			updated.ExpectedResult = draft.ExpectedResult
			changes["expected_result"] = draft.ExpectedResult
		}
		if draft.TestData != "" {
			updated.TestData = draft.TestData
			changes["test_data"] = draft.TestData
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&updated).Updates(changes).Error; err != nil {
			return err
		}

		s.touch(task, actor)
		if err := tx.Model(task).Updates(touchChanges(task)).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionStepEdited,
			Message: fmt.Sprintf("step %d definition edited", updated.Seq),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteStep removes one step and re-sequences the remaining steps so their
// order stays contiguous from 1, preserving relative order.
func (s *TaskService) DeleteStep(actor Actor, taskID string, stepID uint, expected string) (*Ack, error) {
	var ack Ack
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if err := lifecycle.EnsureUnlocked(task); err != nil {
			return err
		}

		var step models.TaskStep
		if err := tx.First(&step, "id = ? AND task_id = ?", stepID, task.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&step).Error; err != nil {
			return err
		}

		var remaining []models.TaskStep
		if err := tx.Where("task_id = ?", task.ID).Order("seq asc").Find(&remaining).Error; err != nil {
			return err
		}
		for i := range remaining {
			if remaining[i].Seq != i+1 {
				if err := tx.Model(&remaining[i]).Update("seq", i+1).Error; err != nil {
					return err
				}
				remaining[i].Seq = i + 1
			}
		}

		s.touch(task, actor)
		if err := tx.Model(task).Updates(touchChanges(task)).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionStepDeleted,
			Message: fmt.Sprintf("step %d deleted, %d steps re-sequenced", step.Seq, len(remaining)),
		})

		task.Steps = remaining
		ack.Task = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// ImportSteps appends a batch of steps (bulk import wizard) after the
// current last sequence position.
func (s *TaskService) ImportSteps(actor Actor, taskID string, drafts []StepDraft, expected string) (*Ack, error) {
	var ack Ack
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if err := lifecycle.EnsureUnlocked(task); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.TaskStep{}).Where("task_id = ?", task.ID).Count(&count).Error; err != nil {
			return err
		}
		next := int(count) + 1
		for i, draft := range drafts {
			step := models.TaskStep{
				TaskID:         task.ID,
				Seq:            next + i,
				Description:    draft.Description,
				ExpectedResult: draft.ExpectedResult,
				TestData:       draft.TestData,
			}
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
		}

		s.touch(task, actor)
		if err := tx.Model(task).Updates(touchChanges(task)).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:   task.ID,
			ActorID:  actor.ID,
			Action:   models.ActionStepsImported,
			Message:  fmt.Sprintf("%d steps imported", len(drafts)),
			Metadata: map[string]any{"count": len(drafts)},
		})

		ack.Task = task
		ack.Events = append(ack.Events, Event{
			Type:    EventStepsImported,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s: %d steps imported", task.Title, len(drafts)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
