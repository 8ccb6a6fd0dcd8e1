package service

import (
	"errors"
	"fmt"
	"log"

	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reasons a sibling can be skipped during group propagation.
const (
	SkipReasonSignedOff   = "SIGNED_OFF"
	SkipReasonWriteFailed = "WRITE_FAILED"
)

// SkippedSibling records one group member that propagation did not update.
type SkippedSibling struct {
	TaskID  string `json:"taskId"`
	Country string `json:"country"`
	Reason  string `json:"reason"`
}

// GroupSummary reports the outcome of one propagation run. Updated includes
// the source task; every affected sibling's history entry carries the same
// OperationID so the batch can be correlated afterward.
type GroupSummary struct {
	OperationID      string           `json:"operationId"`
	Total            int              `json:"total"`
	Updated          int              `json:"updated"`
	SkippedSignedOff int              `json:"skippedSignedOff"`
	Skipped          []SkippedSibling `json:"skipped"`
}

var errSiblingLocked = errors.New("sibling signed off")

// propagateDelta replicates an already-committed metadata edit to every
// sibling task sharing the source's group id. Each sibling update is its own
// transaction: one failure never rolls back the source or the siblings that
// already applied, so an admin can retry just the failed subset.
func (s *TaskService) propagateDelta(actor Actor, source *models.Task, delta MetadataDelta) *GroupSummary {
	operationID := uuid.NewString()

	var siblings []models.Task
	if err := s.db.
		Where("task_group_id = ? AND id <> ?", source.TaskGroupID, source.ID).
		Find(&siblings).Error; err != nil {
		log.Printf("propagation %s: failed to list siblings of %s: %v", operationID, source.ID, err)
		return &GroupSummary{OperationID: operationID, Total: 1, Updated: 1, Skipped: []SkippedSibling{}}
	}

	summary := &GroupSummary{
		OperationID: operationID,
		Total:       len(siblings) + 1,
		Updated:     1, // the source itself
		Skipped:     []SkippedSibling{},
	}

	for i := range siblings {
		sibling := &siblings[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			fresh, err := loadTask(tx, sibling.ID)
			if err != nil {
				return err
			}
			// Lock state is re-checked against the fresh row; a sign-off
			// racing the propagation wins.
			if lifecycle.IsLocked(fresh) {
				return errSiblingLocked
			}

			delta.apply(fresh)
			s.touch(fresh, actor)
			changes := delta.changes()
			for col, v := range touchChanges(fresh) {
				changes[col] = v
			}
			if err := tx.Model(fresh).Updates(changes).Error; err != nil {
				return err
			}

			s.rec.Record(tx, RecordInput{
				TaskID:  fresh.ID,
				ActorID: actor.ID,
				Action:  models.ActionGroupPropagated,
				Message: fmt.Sprintf("metadata propagated from %s (%s)", source.ID, source.Country),
				Metadata: map[string]any{
					"operationId":  operationID,
					"sourceTaskId": source.ID,
					"fields":       delta.fieldNames(),
				},
			})
			return nil
		})

		switch {
		case err == nil:
			summary.Updated++
		case errors.Is(err, errSiblingLocked):
			summary.SkippedSignedOff++
			summary.Skipped = append(summary.Skipped, SkippedSibling{
				TaskID:  sibling.ID,
				Country: sibling.Country,
				Reason:  SkipReasonSignedOff,
			})
		default:
			log.Printf("propagation %s: sibling %s failed: %v", operationID, sibling.ID, err)
			summary.Skipped = append(summary.Skipped, SkippedSibling{
				TaskID:  sibling.ID,
				Country: sibling.Country,
				Reason:  SkipReasonWriteFailed,
			})
		}
	}

	return summary
}
