package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdLevelOrdering(t *testing.T) {
	assert.True(t, LevelNormal < LevelWarning)
	assert.True(t, LevelWarning < LevelCritical)
	assert.True(t, LevelCritical < LevelEmergency)
}

func TestThresholdLevelLookupTables(t *testing.T) {
	assert.Equal(t, "#90EE90", LevelNormal.Color())
	assert.Equal(t, "#FFD700", LevelWarning.Color())
	assert.Equal(t, "#FF6B6B", LevelCritical.Color())
	assert.Equal(t, "Safe", LevelNormal.StatusText())
	assert.Equal(t, "Crowded", LevelCritical.StatusText())

	// Out-of-range levels render the gray fallback, never panic.
	bogus := ThresholdLevel(99)
	assert.Equal(t, "#CCCCCC", bogus.Color())
	assert.Equal(t, "Unknown", bogus.StatusText())
}

func TestThresholdLevelJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(LevelEmergency)
	require.NoError(t, err)
	assert.Equal(t, `"EMERGENCY"`, string(data))

	var level ThresholdLevel
	require.NoError(t, json.Unmarshal([]byte(`"WARNING"`), &level))
	assert.Equal(t, LevelWarning, level)

	assert.Error(t, json.Unmarshal([]byte(`"PANIC"`), &level))
}

func TestValidTrigger(t *testing.T) {
	assert.True(t, ValidTrigger(TriggerManual))
	assert.True(t, ValidTrigger(TriggerAutomatic))
	assert.False(t, ValidTrigger("SCHEDULED"))
}
