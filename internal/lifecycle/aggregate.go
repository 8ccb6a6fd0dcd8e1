package lifecycle

import "uat-portal-api/internal/models"

// DeriveStatus computes the status implied by the full current set of step
// outcomes, in precedence order: all steps passed wins, then any failure,
// then first progress out of READY. It returns the derived target and
// whether a change should be attempted. A DEPLOYED task never regresses.
//
// The caller still has to run the result through ValidateTransition; when
// the table rejects the derived target (e.g. BLOCKED has no edge to PASSED)
// the aggregation is dropped and the conflict recorded, never forced.
func DeriveStatus(current models.TaskStatus, steps []models.TaskStep) (models.TaskStatus, bool) {
	if current == models.StatusDeployed || len(steps) == 0 {
		return current, false
	}

	allPassed := true
	anyFailed := false
	anyPassed := false
	for _, s := range steps {
		switch {
		case s.Passed == nil:
			allPassed = false
		case *s.Passed:
			anyPassed = true
		default:
			allPassed = false
			anyFailed = true
		}
	}

	var target models.TaskStatus
	switch {
	case allPassed:
		target = models.StatusPassed
	case anyFailed:
		target = models.StatusFailed
	case anyPassed && current == models.StatusReady:
		target = models.StatusInProgress
	default:
		return current, false
	}

	if target == current {
		return current, false
	}
	return target, true
}
