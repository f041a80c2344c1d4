package models

import (
	"encoding/json"
	"fmt"
)

// ThresholdLevel classifies how far a density reading sits above the safe
// capacity of an area. Levels are ordered; comparisons with < and > are
// meaningful for escalation decisions.
type ThresholdLevel int

const (
	LevelNormal ThresholdLevel = iota
	LevelWarning
	LevelCritical
	LevelEmergency
)

var levelNames = map[ThresholdLevel]string{
	LevelNormal:    "NORMAL",
	LevelWarning:   "WARNING",
	LevelCritical:  "CRITICAL",
	LevelEmergency: "EMERGENCY",
}

// levelColors drive the dashboard zone cards. Unknown levels render gray.
var levelColors = map[ThresholdLevel]string{
	LevelNormal:    "#90EE90",
	LevelWarning:   "#FFD700",
	LevelCritical:  "#FF6B6B",
	LevelEmergency: "#8B0000",
}

var levelStatus = map[ThresholdLevel]string{
	LevelNormal:    "Safe",
	LevelWarning:   "Moderate",
	LevelCritical:  "Crowded",
	LevelEmergency: "Critical",
}

func (l ThresholdLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("ThresholdLevel(%d)", int(l))
}

// Color returns the dashboard color code for the level.
func (l ThresholdLevel) Color() string {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return "#CCCCCC"
}

// StatusText returns the human-readable zone status for the level.
func (l ThresholdLevel) StatusText() string {
	if s, ok := levelStatus[l]; ok {
		return s
	}
	return "Unknown"
}

func (l ThresholdLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *ThresholdLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseThresholdLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseThresholdLevel converts a level name to its ThresholdLevel.
func ParseThresholdLevel(name string) (ThresholdLevel, error) {
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return LevelNormal, fmt.Errorf("unknown threshold level %q", name)
}
