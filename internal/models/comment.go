package models

import "time"

// Comment is a free-text remark on a task, optionally scoped to a step order.
// Authorship is immutable; comments cannot be added to a signed-off task.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"taskId" gorm:"column:task_id;not null;index"`
	StepSeq   *int      `json:"stepSeq,omitempty" gorm:"column:step_seq"`
	Body      string    `json:"body" gorm:"not null"`
	AuthorID  string    `json:"authorId" gorm:"column:author_id;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}

// CommentRead marks a comment as read by a user.
type CommentRead struct {
	CommentID uint      `json:"commentId" gorm:"column:comment_id;primaryKey"`
	UserID    string    `json:"userId" gorm:"column:user_id;primaryKey"`
	ReadAt    time.Time `json:"readAt" gorm:"column:read_at"`
}

// TableName specifies the table name for CommentRead Model
func (CommentRead) TableName() string {
	return "comment_reads"
}
