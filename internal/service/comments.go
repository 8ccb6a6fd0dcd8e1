package service

import (
	"fmt"

	"uat-portal-api/internal/lifecycle"
	"uat-portal-api/internal/models"

	"gorm.io/gorm"
)

// AddComment attaches a remark to a task, optionally scoped to a step
// order. Comments are rejected on drafts and on signed-off tasks.
func (s *TaskService) AddComment(actor Actor, taskID, body string, stepSeq *int, expected string) (*models.Comment, []Event, error) {
	var created models.Comment
	var events []Event
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

		created = models.Comment{
			TaskID:   task.ID,
			StepSeq:  stepSeq,
			Body:     body,
			AuthorID: actor.ID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		s.touch(task, actor)
		if err := tx.Model(task).Updates(touchChanges(task)).Error; err != nil {
			return err
		}

		scope := ""
		if stepSeq != nil {
			scope = fmt.Sprintf(" on step %d", *stepSeq)
		}
		s.rec.Record(tx, RecordInput{
			TaskID:  task.ID,
			ActorID: actor.ID,
			Action:  models.ActionCommentAdded,
			Message: fmt.Sprintf("comment added%s", scope),
		})

		events = append(events, Event{
			Type:    EventCommentAdded,
			TaskID:  task.ID,
			Country: task.Country,
			ActorID: actor.ID,
			Message: fmt.Sprintf("%s: new comment by %s", task.Title, actor.Username),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &created, events, nil
}

// MarkCommentsRead records that userID has seen all current comments of a
// task. Reads are allowed regardless of lock state.
func (s *TaskService) MarkCommentsRead(userID, taskID string) error {
	var comments []models.Comment
	if err := s.db.Where("task_id = ?", taskID).Find(&comments).Error; err != nil {
		return err
	}
	for _, c := range comments {
		marker := models.CommentRead{CommentID: c.ID, UserID: userID, ReadAt: s.now()}
		// Already-read markers are left as they were.
		if err := s.db.Where("comment_id = ? AND user_id = ?", c.ID, userID).
			FirstOrCreate(&marker).Error; err != nil {
			return err
		}
	}
	return nil
}
