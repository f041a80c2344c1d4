package emergency

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowd-safety-service/internal/apperr"
	"crowd-safety-service/internal/models"
)

func TestActivateDeactivate(t *testing.T) {
	m := New()

	state, err := m.Activate("hall", models.TriggerManual, "admin-1")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, models.TriggerManual, state.Trigger)
	assert.Equal(t, "hall", state.AreaID)
	assert.Equal(t, "admin-1", state.ActivatedBy)
	require.NotNil(t, state.ActivatedAt)
	assert.True(t, m.Active())

	state, err = m.Deactivate("admin-2")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Equal(t, "admin-2", state.DeactivatedBy)
	require.NotNil(t, state.DeactivatedAt)
	assert.False(t, m.Active())
}

func TestDeactivate_Idempotent(t *testing.T) {
	m := New()

	first, err := m.Deactivate("admin-1")
	require.NoError(t, err)
	assert.False(t, first.Active)

	second, err := m.Deactivate("admin-1")
	require.NoError(t, err)
	assert.False(t, second.Active)
}

func TestReactivationUpdatesInPlace(t *testing.T) {
	m := New()

	_, err := m.Activate("gate", models.TriggerManual, "admin-1")
	require.NoError(t, err)

	state, err := m.Activate("", models.TriggerAutomatic, "admin-2")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, models.TriggerAutomatic, state.Trigger)
	assert.Equal(t, "", state.AreaID, "re-activation may widen to site-wide")
	assert.Equal(t, "admin-2", state.ActivatedBy)
	assert.Empty(t, state.DeactivatedBy, "stale deactivation fields must not leak into the new activation")
}

func TestActivate_Validation(t *testing.T) {
	m := New()

	_, err := m.Activate("hall", "PANIC", "admin-1")
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)

	_, err = m.Activate("hall", models.TriggerManual, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)

	assert.False(t, m.Active(), "failed validation must not mutate state")
}

func TestNotifierSeesEachTransition(t *testing.T) {
	var seen []models.EmergencyMode
	m := New(func(state models.EmergencyMode) { seen = append(seen, state) })

	_, err := m.Activate("hall", models.TriggerManual, "admin-1")
	require.NoError(t, err)
	_, err = m.Deactivate("admin-1")
	require.NoError(t, err)
	// Idempotent deactivate is a no-op and must not re-notify.
	_, err = m.Deactivate("admin-1")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Active)
	assert.False(t, seen[1].Active)
}

func TestConcurrentActivations(t *testing.T) {
	m := New()

	const callers = 32
	var wg sync.WaitGroup
	ids := make([]string, callers)
	for i := 0; i < callers; i++ {
		ids[i] = fmt.Sprintf("admin-%d", i)
	}
	for _, id := range ids {
		wg.Add(1)
		go func(admin string) {
			defer wg.Done()
			_, err := m.Activate("hall", models.TriggerManual, admin)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	final := m.State()
	assert.True(t, final.Active)
	assert.Contains(t, ids, final.ActivatedBy, "final state must belong to exactly one caller, not a mix")
	assert.Equal(t, "hall", final.AreaID)
	require.NotNil(t, final.ActivatedAt)
}
