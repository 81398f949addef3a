// Package priority turns a task's deadline and importance into a single score.
package priority

import (
	"math"
	"time"
)

// Canonical importance levels.
const (
	Low      = "low"
	Medium   = "medium"
	High     = "high"
	Critical = "critical"
)

// CanonicalLevels lists the importance levels in ascending order.
var CanonicalLevels = []string{Low, Medium, High, Critical}

// NormalizationDivisor is the number of canonical levels. Importance weights are
// divided by it even when a rule maps levels outside the 1..4 range.
const NormalizationDivisor = 4

// MissingLevelWeight is used when a rule carries no weight for the task's level.
const MissingLevelWeight = 1

const (
	maxComponentScore = 100.0
	decayPerDay       = 10.0
)

// Levels maps an importance level name to its weight.
type Levels map[string]int

// Clone returns an independent copy of l.
func (l Levels) Clone() Levels {
	out := make(Levels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Weight returns the weight for level, falling back to MissingLevelWeight.
func (l Levels) Weight(level string) int {
	if w, ok := l[level]; ok {
		return w
	}
	return MissingLevelWeight
}

// IsCanonicalLevel reports whether level is one of the four named tiers.
func IsCanonicalLevel(level string) bool {
	for _, l := range CanonicalLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Weights is the part of a prioritization rule the scorer reads.
type Weights struct {
	Deadline   float64
	Importance float64
	Levels     Levels
}

// Breakdown shows how a score was assembled.
type Breakdown struct {
	DaysUntilDeadline    float64
	DeadlineScore        float64
	ImportanceScore      int
	NormalizedImportance float64
	Total                float64
}

// Evaluate scores a task due at deadline with the given importance level.
func Evaluate(deadline time.Time, level string, w Weights, now time.Time) Breakdown {
	days := deadline.Sub(now).Seconds() / (24 * time.Hour).Seconds()

	// Anything ten or more days out contributes nothing from the deadline term.
	deadlineScore := maxComponentScore
	if days > 0 {
		deadlineScore = math.Max(0, maxComponentScore-days*decayPerDay)
	}

	importance := w.Levels.Weight(level)
	normalized := float64(importance) / NormalizationDivisor * maxComponentScore

	return Breakdown{
		DaysUntilDeadline:    days,
		DeadlineScore:        deadlineScore,
		ImportanceScore:      importance,
		NormalizedImportance: normalized,
		Total:                deadlineScore*w.Deadline + normalized*w.Importance,
	}
}

// Score returns the priority score for a task.
func Score(deadline time.Time, level string, w Weights, now time.Time) float64 {
	return Evaluate(deadline, level, w, now).Total
}
