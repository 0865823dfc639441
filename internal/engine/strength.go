package engine

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	MinLevel = 1
	MaxLevel = 4

	// AnalysisDepth is the fixed search depth for hints and evaluations.
	// Game replies use the per-level move time instead.
	AnalysisDepth = 15
)

// Strength maps one difficulty level onto engine behavior: the skill option
// sent to the process and the think time granted per move. Higher levels are
// stronger and slower; any monotonic table satisfies that contract.
type Strength struct {
	SkillLevel     int `yaml:"skill_level"`
	MoveTimeMillis int `yaml:"move_time_ms"`
}

var strengthMu sync.RWMutex

var strengthLevels = map[int]Strength{
	1: {SkillLevel: 0, MoveTimeMillis: 500},
	2: {SkillLevel: 5, MoveTimeMillis: 1000},
	3: {SkillLevel: 10, MoveTimeMillis: 1500},
	4: {SkillLevel: 20, MoveTimeMillis: 2000},
}

func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

func StrengthFor(level int) Strength {
	strengthMu.RLock()
	defer strengthMu.RUnlock()
	return strengthLevels[ClampLevel(level)]
}

// LoadStrengthOverrides merges a YAML level table into the defaults.
// Unknown levels and out-of-range values are rejected as a whole.
func LoadStrengthOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read strength overrides: %w", err)
	}
	overrides := map[int]Strength{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parse strength overrides: %w", err)
	}
	for level, s := range overrides {
		if err := validateStrength(level, s); err != nil {
			return err
		}
	}

	strengthMu.Lock()
	defer strengthMu.Unlock()
	for level, s := range overrides {
		strengthLevels[level] = s
	}
	return nil
}

func validateStrength(level int, s Strength) error {
	if level < MinLevel || level > MaxLevel {
		return fmt.Errorf("strength level %d out of range %d-%d", level, MinLevel, MaxLevel)
	}
	if s.SkillLevel < 0 || s.SkillLevel > 20 {
		return fmt.Errorf("skill level %d out of range 0-20", s.SkillLevel)
	}
	if s.MoveTimeMillis <= 0 {
		return fmt.Errorf("move time must be > 0: %d", s.MoveTimeMillis)
	}
	return nil
}
