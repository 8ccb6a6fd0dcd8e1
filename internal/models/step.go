package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskStep is one ordered test instruction within a task.
// Seq is 1-based and contiguous within a task; deleting a step re-sequences
// the remaining ones.
type TaskStep struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TaskID         string         `json:"taskId" gorm:"column:task_id;not null;index"`
	Seq            int            `json:"seq" gorm:"not null"`
	Description    string         `json:"description" gorm:"not null"`
	ExpectedResult string         `json:"expectedResult" gorm:"column:expected_result"`
	TestData       string         `json:"testData" gorm:"column:test_data"`
	ActualResult   string         `json:"actualResult" gorm:"column:actual_result"`
	Passed         *bool          `json:"passed"`
	Attachments    datatypes.JSON `json:"attachments,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for TaskStep Model
func (TaskStep) TableName() string {
	return "task_steps"
}
