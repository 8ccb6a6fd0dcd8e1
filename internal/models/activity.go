package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityAction identifies the kind of mutation an activity entry records
type ActivityAction string

const (
	ActionTaskCreated         ActivityAction = "task_created"
	ActionTaskDeleted         ActivityAction = "task_deleted"
	ActionStatusChanged       ActivityAction = "status_changed"
	ActionMetadataEdited      ActivityAction = "metadata_edited"
	ActionGroupPropagated     ActivityAction = "group_propagated"
	ActionStepAdded           ActivityAction = "step_added"
	ActionStepEdited          ActivityAction = "step_edited"
	ActionStepOutcome         ActivityAction = "step_outcome"
	ActionStepDeleted         ActivityAction = "step_deleted"
	ActionStepsImported       ActivityAction = "steps_imported"
	ActionCommentAdded        ActivityAction = "comment_added"
	ActionSignedOff           ActivityAction = "signed_off"
	ActionDeployed            ActivityAction = "deployed"
	ActionAggregationSkipped  ActivityAction = "aggregation_skipped"
)

// Activity is an append-only audit record of a state-changing action.
// Entries are never updated or deleted.
type Activity struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TaskID    string         `json:"taskId" gorm:"column:task_id;not null;index"`
	ActorID   string         `json:"actorId" gorm:"column:actor_id"`
	Action    ActivityAction `json:"action" gorm:"not null;index"`
	Message   string         `json:"message"`
	Before    datatypes.JSON `json:"before,omitempty"`
	After     datatypes.JSON `json:"after,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TableName specifies the table name for Activity Model
func (Activity) TableName() string {
	return "activities"
}
