// Package lifecycle holds the pure rules of the task lifecycle: the status
// transition table, the optimistic freshness guard, the sign-off lock
// predicate, step aggregation and the user-facing status vocabulary.
// Nothing in here touches storage; every mutating operation runs these
// checks before writing.
package lifecycle

import "uat-portal-api/internal/models"

// transitions is the full set of legal status moves. DRAFT is the initial
// state, DEPLOYED is terminal with no outgoing edges.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.StatusDraft:      {models.StatusReady},
	models.StatusReady:      {models.StatusInProgress, models.StatusBlocked, models.StatusFailed, models.StatusPassed},
	models.StatusInProgress: {models.StatusReady, models.StatusBlocked, models.StatusFailed, models.StatusPassed},
	models.StatusBlocked:    {models.StatusReady, models.StatusInProgress, models.StatusFailed},
	models.StatusFailed:     {models.StatusReady, models.StatusInProgress, models.StatusBlocked, models.StatusPassed},
	models.StatusPassed:     {models.StatusInProgress, models.StatusBlocked, models.StatusFailed, models.StatusDeployed},
	models.StatusDeployed:   {},
}

// KnownStatus reports whether s is one of the canonical statuses.
func KnownStatus(s models.TaskStatus) bool {
	_, ok := transitions[s]
	return ok
}

// ValidateTransition checks a requested status move against the transition
// table. A self-transition is always a no-op success. Every status write in
// the system must pass through here first.
func ValidateTransition(from, to models.TaskStatus) error {
	if from == to {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return NewTransitionRejected(from, to)
}
