package service

import (
	"fmt"

	"uat-portal-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTaskInput describes one logical change to test. One task is created
// per country; when more than one country is selected the tasks share a
// fresh TaskGroupID and each gets its own copy of the step template.
type CreateTaskInput struct {
	Title         string
	Description   string
	Priority      models.TaskPriority
	Module        string
	DueDate       string
	JiraTicket    string
	ChangeRequest string
	Developer     string
	Countries     []string
	Assignees     map[string]string // country -> user id, optional
	Steps         []StepDraft
}

// CreateTasks creates the per-country tasks for one logical change. All
// tasks start in DRAFT.
func (s *TaskService) CreateTasks(actor Actor, in CreateTaskInput) ([]models.Task, []Event, error) {
	groupID := ""
	if len(in.Countries) > 1 {
		groupID = uuid.NewString()
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	var created []models.Task
	var events []Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, country := range in.Countries {
			task := models.Task{
				ID:             uuid.NewString(),
				Title:          in.Title,
				Description:    in.Description,
				Status:         models.StatusDraft,
				Priority:       priority,
				Country:        country,
				Module:         in.Module,
				DueDate:        in.DueDate,
				JiraTicket:     in.JiraTicket,
				ChangeRequest:  in.ChangeRequest,
				Developer:      in.Developer,
				TaskGroupID:    groupID,
				AssigneeID:     in.Assignees[country],
				LastModifiedAt: s.now(),
				LastModifiedBy: actor.ID,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
			for i, draft := range in.Steps {
				step := models.TaskStep{
					TaskID:         task.ID,
					Seq:            i + 1,
					Description:    draft.Description,
					ExpectedResult: draft.ExpectedResult,
					TestData:       draft.TestData,
				}
				if err := tx.Create(&step).Error; err != nil {
					return err
				}
			}

			s.rec.Record(tx, RecordInput{
				TaskID:  task.ID,
				ActorID: actor.ID,
				Action:  models.ActionTaskCreated,
				Message: fmt.Sprintf("task created for %s with %d steps", country, len(in.Steps)),
				Metadata: map[string]any{
					"country":     country,
					"taskGroupId": groupID,
				},
			})

			created = append(created, task)
			events = append(events, Event{
				Type:    EventTaskCreated,
				TaskID:  task.ID,
				Country: country,
				ActorID: actor.ID,
				Message: fmt.Sprintf("%s created for %s", task.Title, country),
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, events, nil
}

// DeleteTask removes a task with its steps and comments. The deletion path
// writes a final history entry before the rows go away.
func (s *TaskService) DeleteTask(actor Actor, taskID string) ([]Event, error) {
	var events []Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionTaskDeleted,
			Message: fmt.Sprintf("task deleted (%s, %s)", task.Country, task.Status),
			Before:  map[string]any{"title": task.Title, "status": string(task.Status)},
		})

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskStep{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(task).Error; err != nil {
			return err
		}

		events = append(events, Event{
			Type:    EventTaskDeleted,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s deleted", task.Title),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
