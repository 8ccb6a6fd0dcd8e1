package lifecycle

import "uat-portal-api/internal/models"

// IsLocked reports whether a task has been signed off and is therefore
// immutable except for reads and history queries. Callers must evaluate this
// against the freshest stored row immediately before a write, never against
// a client-cached copy.
func IsLocked(task *models.Task) bool {
	return task.SignedOffAt != nil
}

// EnsureUnlocked rejects any mutation of a signed-off task.
func EnsureUnlocked(task *models.Task) error {
	if IsLocked(task) {
		return NewLocked(task.ID)
	}
	return nil
}

// EnsureNotDraft rejects stakeholder-initiated actions (step outcomes,
// comments, sign-off) while a task is still a draft. Stakeholders may only
// view drafts; an admin has to move the task to READY first.
func EnsureNotDraft(task *models.Task) error {
	if task.Status == models.StatusDraft {
		return NewNotReady(task.ID)
	}
	return nil
}
