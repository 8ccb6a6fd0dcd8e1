package service

import (
	"fmt"

	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"

	"gorm.io/gorm"
)

// MetadataDelta carries the shared metadata fields of a partial update.
// Only non-nil fields are applied (and propagated); absent fields are left
// untouched. Status, assignee and steps are deliberately not part of the
// delta: they stay per-country even inside one logical group.
type MetadataDelta struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	JiraTicket    *string `json:"jiraTicket"`
	ChangeRequest *string `json:"changeRequest"`
	Developer     *string `json:"developer"`
	DueDate       *string `json:"dueDate"`
}

// Empty reports whether the delta carries no fields at all.
func (d MetadataDelta) Empty() bool {
	return d.Title == nil && d.Description == nil && d.JiraTicket == nil &&
		d.ChangeRequest == nil && d.Developer == nil && d.DueDate == nil
}

// changes returns the column updates for the fields present in the delta.
func (d MetadataDelta) changes() map[string]any {
	out := map[string]any{}
	if d.Title != nil {
		out["title"] = *d.Title
	}
	if d.Description != nil {
		out["description"] = *d.Description
	}
	if d.JiraTicket != nil {
		out["jira_ticket"] = *d.JiraTicket
	}
	if d.ChangeRequest != nil {
		out["change_request"] = *d.ChangeRequest
	}
	if d.Developer != nil {
		out["developer"] = *d.Developer
	}
	if d.DueDate != nil {
		out["due_date"] = *d.DueDate
	}
	return out
}

// fieldNames lists the delta fields present, for audit metadata.
func (d MetadataDelta) fieldNames() []string {
	var names []string
	for name, present := range map[string]bool{
		"title":         d.Title != nil,
		"description":   d.Description != nil,
		"jiraTicket":    d.JiraTicket != nil,
		"changeRequest": d.ChangeRequest != nil,
		"developer":     d.Developer != nil,
		"dueDate":       d.DueDate != nil,
	} {
		if present {
			names = append(names, name)
		}
	}
	return names
}

// snapshot captures the current values of the delta's fields on task.
func (d MetadataDelta) snapshot(task *models.Task) map[string]any {
	out := map[string]any{}
	if d.Title != nil {
		out["title"] = task.Title
	}
	if d.Description != nil {
		out["description"] = task.Description
	}
	if d.JiraTicket != nil {
		out["jiraTicket"] = task.JiraTicket
	}
	if d.ChangeRequest != nil {
		out["changeRequest"] = task.ChangeRequest
	}
	if d.Developer != nil {
		out["developer"] = task.Developer
	}
	if d.DueDate != nil {
		out["dueDate"] = task.DueDate
	}
	return out
}

// apply writes the delta's fields onto the in-memory task.
func (d MetadataDelta) apply(task *models.Task) {
	if d.Title != nil {
		task.Title = *d.Title
	}
	if d.Description != nil {
		task.Description = *d.Description
	}
	if d.JiraTicket != nil {
		task.JiraTicket = *d.JiraTicket
	}
	if d.ChangeRequest != nil {
		task.ChangeRequest = *d.ChangeRequest
	}
	if d.Developer != nil {
		task.Developer = *d.Developer
	}
	if d.DueDate != nil {
		task.DueDate = *d.DueDate
	}
}

// MetadataResult is the outcome of ApplyMetadataEdit. GroupSummary is set
// only when propagation across the task group was requested and applicable.
type MetadataResult struct {
	Task         *models.Task  `json:"task"`
	GroupSummary *GroupSummary `json:"groupSummary,omitempty"`
	Unchanged    bool          `json:"unchanged"`
	Events       []Event       `json:"-"`
}

// ApplyMetadataEdit applies a partial update of the shared metadata fields
// to one task and, when requested, fans it out to the unlocked siblings of
// its task group. The source update commits on its own; sibling updates are
// each independent transactions and never roll the source back.
func (s *TaskService) ApplyMetadataEdit(actor Actor, taskID string, delta MetadataDelta, expected string, propagate bool) (*MetadataResult, error) {
	var res MetadataResult
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
		if delta.Empty() {
			res.Task = task
			res.Unchanged = true
			return nil
		}

		before := delta.snapshot(task)
		delta.apply(task)
		s.touch(task, actor)
		changes := delta.changes()
		for col, v := range touchChanges(task) {
			changes[col] = v
		}
		if err := tx.Model(task).Updates(changes).Error; err != nil {
			return err
		}

		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionMetadataEdited,
			Message: fmt.Sprintf("metadata edited (%d fields)", len(before)),
			Before:  before,
			After:   delta.snapshot(task),
		})

		res.Task = task
		res.Events = append(res.Events, Event{
			Type:    EventTaskUpdated,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s updated", task.Title),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if propagate && !res.Unchanged && res.Task.TaskGroupID != "" {
		res.GroupSummary = s.propagateDelta(actor, res.Task, delta)
	}
	return &res, nil
}
