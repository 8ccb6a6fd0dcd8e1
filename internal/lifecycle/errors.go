package lifecycle

import (
	"errors"
	"fmt"

	"uat-portal-api/internal/models"
)

// Stable machine-readable codes returned to clients alongside the human
// message. Clients key their recovery behavior off these, not the text.
const (
	CodeStaleWrite           = "STALE_WRITE"
	CodeMalformedExpectation = "MALFORMED_EXPECTATION"
	CodeLocked               = "TASK_LOCKED"
	CodeTransitionRejected   = "TRANSITION_REJECTED"
	CodeNotReady             = "TASK_NOT_READY"
)

// RuleError is a rejection from the lifecycle rules. Every member of the
// taxonomy aborts the triggering operation before any write.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// AsRuleError unwraps err into a RuleError if it is one.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// NewStaleWrite reports an expected-timestamp mismatch. Recoverable by
// refetching the task and retrying with the fresh timestamp.
func NewStaleWrite() *RuleError {
	return &RuleError{
		Code:    CodeStaleWrite,
		Message: "task was modified by someone else; refresh and try again",
	}
}

// NewMalformedExpectation reports an unparseable expected timestamp.
func NewMalformedExpectation(raw string) *RuleError {
	return &RuleError{
		Code:    CodeMalformedExpectation,
		Message: fmt.Sprintf("expected timestamp %q is not a valid timestamp", raw),
	}
}

// NewLocked reports a mutation attempt against a signed-off task.
func NewLocked(taskID string) *RuleError {
	return &RuleError{
		Code:    CodeLocked,
		Message: fmt.Sprintf("task %s is signed off and can no longer be modified", taskID),
	}
}

// NewTransitionRejected reports a status move not allowed by the transition
// table, naming both states.
func NewTransitionRejected(from, to models.TaskStatus) *RuleError {
	return &RuleError{
		Code:    CodeTransitionRejected,
		Message: fmt.Sprintf("status transition %s -> %s is not allowed", from, to),
	}
}

// NewSignOffRejected reports a sign-off attempt before the task reached the
// sign-off-ready state with all step outcomes resolved.
func NewSignOffRejected(current models.TaskStatus) *RuleError {
	return &RuleError{
		Code:    CodeTransitionRejected,
		Message: fmt.Sprintf("task must be %s with all steps resolved before sign-off (current: %s)", models.StatusPassed, current),
	}
}

// NewNotReady reports a stakeholder action attempted while the task is still
// a draft.
func NewNotReady(taskID string) *RuleError {
	return &RuleError{
		Code:    CodeNotReady,
		Message: fmt.Sprintf("task %s is still a draft; an admin must move it to %s first", taskID, models.StatusReady),
	}
}
