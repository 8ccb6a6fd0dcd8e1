// Package service implements the mutating task operations. Every operation
// runs freshness check, lock check and transition validation against the
// freshest stored row inside a single transaction, appends history and
// collects post-commit notification events for the dispatcher.
package service

import (
	"fmt"
	"time"

	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"

	"gorm.io/gorm"
)

// Actor identifies the authenticated caller of an operation. The identity
// layer has already authenticated it before it reaches the core.
type Actor struct {
	ID       string
	Username string
	Role     models.Role
	Country  string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Event describes a committed mutation for post-commit delivery to the
// notification sinks (email, webhook, websocket). Events are returned by
// operations and handed to the dispatcher only after the transaction
// commits; sink failures never influence the committed state change.
type Event struct {
	Type    string `json:"type"`
	TaskID  string `json:"taskId"`
	Country string `json:"country"`
	ActorID string `json:"actorId"`
	Message string `json:"message"`
}

// Event types emitted by the operations.
const (
	EventTaskCreated     = "task_created"
	EventTaskDeleted     = "task_deleted"
	EventTaskUpdated     = "task_updated"
	EventStatusChanged   = "task_status_changed"
	EventStepOutcome     = "step_outcome_recorded"
	EventStepsImported   = "steps_imported"
	EventCommentAdded    = "comment_added"
	EventTaskSignedOff   = "task_signed_off"
	EventTaskDeployed    = "task_deployed"
)

// Ack is the result of a single-task mutation.
type Ack struct {
	Task      *models.Task `json:"task"`
	Unchanged bool         `json:"unchanged"`
	Events    []Event      `json:"-"`
}

// TaskService runs the task lifecycle operations against a gorm database.
// The clock is injectable so tests can pin timestamps.
type TaskService struct {
	db  *gorm.DB
	rec *Recorder
	now func() time.Time
}

// NewTaskService creates a TaskService backed by db.
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, rec: NewRecorder(), now: time.Now}
}

// WithClock replaces the service clock, for tests.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// loadTask fetches the freshest row for taskID. Lock and freshness checks
// must run against this row, never a client-cached copy.
func loadTask(tx *gorm.DB, taskID string) (*models.Task, error) {
	var task models.Task
	if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// touch stamps the optimistic-lock columns for a write by actor.
func (s *TaskService) touch(task *models.Task, actor Actor) {
	task.LastModifiedAt = s.now()
	task.LastModifiedBy = actor.ID
}

// touchChanges returns the column updates for the optimistic-lock stamp.
func touchChanges(task *models.Task) map[string]any {
	return map[string]any{
		"last_modified_at": task.LastModifiedAt,
		"last_modified_by": task.LastModifiedBy,
	}
}

// ChangeStatus moves a task to the requested status. The same target as the
// current status is acknowledged as unchanged without writing anything.
func (s *TaskService) ChangeStatus(actor Actor, taskID string, requested models.TaskStatus, expected string) (*Ack, error) {
	var ack Ack
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if task.Status == requested {
			ack.Task = task
			ack.Unchanged = true
			return nil
		}
		if err := lifecycle.EnsureUnlocked(task); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if err := lifecycle.EnsureNotDraft(task); err != nil {
				return err
			}
		}
		if err := lifecycle.ValidateTransition(task.Status, requested); err != nil {
			return err
		}

		previous := task.Status
		task.Status = requested
		s.touch(task, actor)
		changes := touchChanges(task)
		changes["status"] = requested
		if err := tx.Model(task).Updates(changes).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionStatusChanged,
			Message: fmt.Sprintf("status changed from %s to %s", previous, requested),
			Before:  map[string]any{"status": previous},
			After:   map[string]any{"status": requested},
		})

		ack.Task = task
		ack.Events = append(ack.Events, Event{
			Type:    EventStatusChanged,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s: status %s -> %s", task.Title, previous, requested),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// SignOff freezes a task permanently. Only legal once the task is PASSED
// with every step outcome resolved. Deployment afterward does not unfreeze.
func (s *TaskService) SignOff(actor Actor, taskID, expected string) (*Ack, error) {
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
		if task.Status != models.StatusPassed {
			return lifecycle.NewSignOffRejected(task.Status)
		}

		var unresolved int64
		if err := tx.Model(&models.TaskStep{}).
			Where("task_id = ? AND passed IS NULL", task.ID).
			Count(&unresolved).Error; err != nil {
			return err
		}
		if unresolved > 0 {
			return lifecycle.NewSignOffRejected(task.Status)
		}

		signedAt := s.now()
		task.SignedOffAt = &signedAt
		task.SignedOffBy = actor.ID
		s.touch(task, actor)
		changes := touchChanges(task)
		changes["signed_off_at"] = signedAt
		changes["signed_off_by"] = actor.ID
		if err := tx.Model(task).Updates(changes).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionSignedOff,
			Message: fmt.Sprintf("signed off by %s", actor.Username),
		})

		ack.Task = task
		ack.Events = append(ack.Events, Event{
			Type:    EventTaskSignedOff,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s signed off for %s", task.Title, task.Country),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// MarkDeployed moves a signed-off task to the terminal DEPLOYED status.
// This is the single path allowed to change the status of a locked task;
// the sign-off lock itself stays in place.
func (s *TaskService) MarkDeployed(actor Actor, taskID, expected string) (*Ack, error) {
	var ack Ack
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckFreshness(task.LastModifiedAt, expected); err != nil {
			return err
		}
		if task.Status == models.StatusDeployed {
			ack.Task = task
			ack.Unchanged = true
			return nil
		}
		if !lifecycle.IsLocked(task) {
			return lifecycle.NewSignOffRejected(task.Status)
		}
		if err := lifecycle.ValidateTransition(task.Status, models.StatusDeployed); err != nil {
			return err
		}

		previous := task.Status
		task.Status = models.StatusDeployed
		s.touch(task, actor)
		changes := touchChanges(task)
		changes["status"] = models.StatusDeployed
		if err := tx.Model(task).Updates(changes).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionDeployed,
			Message: fmt.Sprintf("marked deployed (was %s)", previous),
			Before:  map[string]any{"status": previous},
			After:   map[string]any{"status": models.StatusDeployed},
		})

		ack.Task = task
		ack.Events = append(ack.Events, Event{
			Type:    EventTaskDeployed,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s deployed for %s", task.Title, task.Country),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
