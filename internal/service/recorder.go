package service

import (
	"encoding/json"
	"log"

	"uat-portal-api/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordInput describes one history entry to append.
type RecordInput struct {
	TaskID   string
	ActorID  string
	Action   models.ActivityAction
	Message  string
	Before   map[string]any
	After    map[string]any
	Metadata map[string]any
}

// Recorder appends immutable activity entries. Writes are best-effort: an
// audit failure is logged and swallowed so it can never abort the primary
// mutation it describes. Losing an audit row is preferable to losing a
// user's test result.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func toJSON(m map[string]any) datatypes.JSON {
	if m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		log.Printf("history: failed to marshal snapshot: %v", err)
		return nil
	}
	return datatypes.JSON(raw)
}

// Record appends one activity entry using db (typically the operation's
// transaction so the entry commits with the mutation it describes).
func (r *Recorder) Record(db *gorm.DB, in RecordInput) {
	entry := models.Activity{
		TaskID:   in.TaskID,
		ActorID:  in.ActorID,
		Action:   in.Action,
		Message:  in.Message,
		Before:   toJSON(in.Before),
		After:    toJSON(in.After),
		Metadata: toJSON(in.Metadata),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("history: failed to record %s for task %s: %v", in.Action, in.TaskID, err)
	}
}
