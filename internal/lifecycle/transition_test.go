package lifecycle

import (
	"testing"

	"uat-portal-api/internal/models"

	"github.com/stretchr/testify/require"
)

var allStatuses = []models.TaskStatus{
	models.StatusDraft,
	models.StatusReady,
	models.StatusInProgress,
	models.StatusBlocked,
	models.StatusFailed,
	models.StatusPassed,
	models.StatusDeployed,
}

var legalEdges = map[models.TaskStatus][]models.TaskStatus{
	models.StatusDraft:      {models.StatusReady},
	models.StatusReady:      {models.StatusInProgress, models.StatusBlocked, models.StatusFailed, models.StatusPassed},
	models.StatusInProgress: {models.StatusReady, models.StatusBlocked, models.StatusFailed, models.StatusPassed},
	models.StatusBlocked:    {models.StatusReady, models.StatusInProgress, models.StatusFailed},
	models.StatusFailed:     {models.StatusReady, models.StatusInProgress, models.StatusBlocked, models.StatusPassed},
	models.StatusPassed:     {models.StatusInProgress, models.StatusBlocked, models.StatusFailed, models.StatusDeployed},
	models.StatusDeployed:   {},
}

func isLegalEdge(from, to models.TaskStatus) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func TestValidateTransition_AllPairs(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := ValidateTransition(from, to)
			if from == to || isLegalEdge(from, to) {
				require.NoError(t, err, "%s -> %s should be allowed", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s should be rejected", from, to)
			re, ok := AsRuleError(err)
			require.True(t, ok)
			require.Equal(t, CodeTransitionRejected, re.Code)
			require.Contains(t, re.Message, string(from))
			require.Contains(t, re.Message, string(to))
		}
	}
}

func TestValidateTransition_DeployedIsTerminal(t *testing.T) {
	for _, to := range allStatuses {
		if to == models.StatusDeployed {
			require.NoError(t, ValidateTransition(models.StatusDeployed, to))
			continue
		}
		require.Error(t, ValidateTransition(models.StatusDeployed, to))
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range allStatuses {
		require.True(t, KnownStatus(s))
	}
	require.False(t, KnownStatus("APPROVED"))
	require.False(t, KnownStatus(""))
}
