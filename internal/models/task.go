package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the lifecycle status of a UAT task
type TaskStatus string

const (
	StatusDraft      TaskStatus = "DRAFT"
	StatusReady      TaskStatus = "READY"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusBlocked    TaskStatus = "BLOCKED"
	StatusFailed     TaskStatus = "FAILED"
	StatusPassed     TaskStatus = "PASSED"
	StatusDeployed   TaskStatus = "DEPLOYED"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Assignee represents a task assignee as rendered in responses
type Assignee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task represents one unit of UAT work scoped to a country.
// Tasks created for multiple countries from one logical change share a
// TaskGroupID; shared metadata edits propagate across that group while
// status, assignment and steps stay per-country.
// A non-nil SignedOffAt freezes the task for every mutation path.
type Task struct {
	ID             string       `json:"id" gorm:"primaryKey"`
	Title          string       `json:"title" gorm:"not null"`
	Description    string       `json:"description"`
	Status         TaskStatus   `json:"status" gorm:"not null;default:'DRAFT';index"`
	Priority       TaskPriority `json:"priority" gorm:"default:'medium'"`
	Country        string       `json:"country" gorm:"not null;index"`
	Module         string       `json:"module" gorm:"index"`
	DueDate        string       `json:"dueDate" gorm:"column:due_date"`
	JiraTicket     string       `json:"jiraTicket" gorm:"column:jira_ticket"`
	ChangeRequest  string       `json:"changeRequest" gorm:"column:change_request"`
	Developer      string       `json:"developer"`
	TaskGroupID    string       `json:"taskGroupId" gorm:"column:task_group_id;index"`
	AssigneeID     string       `json:"-" gorm:"column:assignee_id;index"`
	Assignee       Assignee     `json:"assignee" gorm:"-"`
	SignedOffAt    *time.Time   `json:"signedOffAt" gorm:"column:signed_off_at"`
	SignedOffBy    string       `json:"signedOffBy" gorm:"column:signed_off_by"`
	LastModifiedAt time.Time    `json:"lastModifiedAt" gorm:"column:last_modified_at"`
	LastModifiedBy string       `json:"lastModifiedBy" gorm:"column:last_modified_by"`
	Steps          []TaskStep   `json:"steps,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Comments       []Comment    `json:"comments,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	gorm.Model
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
