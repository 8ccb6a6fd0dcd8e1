package lifecycle

import (
	"strings"

	"uat-portal-api/internal/models"
)

// statusLabels maps the canonical statuses to the vocabulary shown to users.
var statusLabels = map[models.TaskStatus]string{
	models.StatusDraft:      "Draft",
	models.StatusReady:      "Pending",
	models.StatusInProgress: "In Progress",
	models.StatusBlocked:    "Blocked",
	models.StatusFailed:     "Failed",
	models.StatusPassed:     "Passed",
	models.StatusDeployed:   "Deployed",
}

// LabelFor returns the user-facing label for a canonical status.
func LabelFor(s models.TaskStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// StatusFromLabel translates user-facing vocabulary (or a canonical status
// name) into the internal enumeration. Unknown input defaults to READY
// rather than failing, to tolerate legacy and partially-typed client
// payloads. The leniency is deliberate, not a validation gap.
func StatusFromLabel(label string) models.TaskStatus {
	trimmed := strings.TrimSpace(label)
	for status, l := range statusLabels {
		if strings.EqualFold(trimmed, l) {
			return status
		}
	}
	canonical := models.TaskStatus(strings.ToUpper(strings.ReplaceAll(trimmed, " ", "_")))
	if KnownStatus(canonical) {
		return canonical
	}
	return models.StatusReady
}
