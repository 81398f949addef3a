package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func canonicalWeights() Weights {
	return Weights{
		Deadline:   0.5,
		Importance: 0.5,
		Levels:     Levels{Low: 1, Medium: 2, High: 3, Critical: 4},
	}
}

func TestScore(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("critical task due now scores 100", func(t *testing.T) {
		assert.Equal(t, 100.0, Score(now, Critical, canonicalWeights(), now))
	})

	t.Run("low task ten days out scores 12.5", func(t *testing.T) {
		deadline := now.Add(10 * 24 * time.Hour)
		assert.Equal(t, 12.5, Score(deadline, Low, canonicalWeights(), now))
	})

	t.Run("weights need not sum to one", func(t *testing.T) {
		w := canonicalWeights()
		w.Deadline = 1
		w.Importance = 1
		assert.Equal(t, 200.0, Score(now, Critical, w, now))
	})
}

func TestEvaluate_DeadlineTerm(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	w := canonicalWeights()

	t.Run("overdue tasks get the full deadline score", func(t *testing.T) {
		for _, overdue := range []time.Duration{time.Minute, 24 * time.Hour, 400 * 24 * time.Hour} {
			b := Evaluate(now.Add(-overdue), Medium, w, now)
			assert.Equal(t, 100.0, b.DeadlineScore)
			assert.Less(t, b.DaysUntilDeadline, 0.0)
		}
	})

	t.Run("decays linearly by ten per day", func(t *testing.T) {
		b := Evaluate(now.Add(36*time.Hour), Medium, w, now)
		assert.InDelta(t, 85.0, b.DeadlineScore, 1e-9)
	})

	t.Run("non-increasing and zero from ten days on", func(t *testing.T) {
		prev := Evaluate(now, Medium, w, now).Total
		for hours := 1; hours <= 24*15; hours++ {
			cur := Evaluate(now.Add(time.Duration(hours)*time.Hour), Medium, w, now).Total
			assert.LessOrEqual(t, cur, prev, "hour %d", hours)
			prev = cur
		}
		assert.Equal(t, 0.0, Evaluate(now.Add(10*24*time.Hour), Medium, w, now).DeadlineScore)
	})

	// The clamp is coarse on purpose: ten and a hundred days out are indistinguishable.
	t.Run("ten and hundred days out tie", func(t *testing.T) {
		ten := Score(now.Add(10*24*time.Hour), High, w, now)
		hundred := Score(now.Add(100*24*time.Hour), High, w, now)
		assert.Equal(t, ten, hundred)
	})
}

func TestEvaluate_ImportanceTerm(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("unknown level falls back to weight one", func(t *testing.T) {
		b := Evaluate(now, "someday", canonicalWeights(), now)
		assert.Equal(t, 1, b.ImportanceScore)
		assert.Equal(t, 25.0, b.NormalizedImportance)
	})

	t.Run("divisor stays at four for weights beyond the canonical range", func(t *testing.T) {
		w := canonicalWeights()
		w.Levels[Critical] = 10
		b := Evaluate(now, Critical, w, now)
		assert.Equal(t, 250.0, b.NormalizedImportance)
	})

	t.Run("nil levels behave like an empty map", func(t *testing.T) {
		w := Weights{Deadline: 0, Importance: 1}
		assert.Equal(t, 25.0, Score(now, High, w, now))
	})
}

func TestLevels(t *testing.T) {
	l := Levels{Low: 1}
	c := l.Clone()
	c[Low] = 7
	assert.Equal(t, 1, l[Low])

	assert.True(t, IsCanonicalLevel(Critical))
	assert.False(t, IsCanonicalLevel("urgent"))
}
