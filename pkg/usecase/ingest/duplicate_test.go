package ingest

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/csfalcao/magis/pkg/model"
)

func experienceAt(content string, created time.Time) *model.Memory {
	return &model.Memory{
		Content:        content,
		Classification: model.ClassExperience,
		CreatedAt:      created,
	}
}

func TestIsNearDuplicate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("same utterance reworded", func(t *testing.T) {
		a := experienceAt("Dinner with Sarah at Luigi's tonight", now)
		b := experienceAt("Tonight dinner at Luigi's with Sarah", now.Add(-time.Hour))
		gt.B(t, isNearDuplicate(a, b)).True()
	})

	t.Run("below overlap threshold", func(t *testing.T) {
		a := experienceAt("Dinner with Sarah tonight", now)
		b := experienceAt("Dinner with Sarah tonight at Luigi's downtown", now.Add(-time.Hour))
		// 4 shared words over 8 distinct is under the 0.7 cutoff
		gt.B(t, isNearDuplicate(a, b)).False()
	})

	t.Run("outside time window", func(t *testing.T) {
		a := experienceAt("Dinner with Sarah at Luigi's tonight", now)
		b := experienceAt("Dinner with Sarah at Luigi's tonight", now.Add(-25*time.Hour))
		gt.B(t, isNearDuplicate(a, b)).False()
	})

	t.Run("different classification", func(t *testing.T) {
		a := experienceAt("Dinner with Sarah at Luigi's tonight", now)
		b := experienceAt("Dinner with Sarah at Luigi's tonight", now)
		b.Classification = model.ClassMemory
		gt.B(t, isNearDuplicate(a, b)).False()
	})

	t.Run("different context", func(t *testing.T) {
		a := experienceAt("Dinner with Sarah at Luigi's tonight", now)
		b := experienceAt("Dinner with Sarah at Luigi's tonight", now)
		b.Context = "work"
		gt.B(t, isNearDuplicate(a, b)).False()
	})
}

func TestOverlapRatio(t *testing.T) {
	gt.V(t, overlapRatio("dinner with sarah", "dinner with sarah")).Equal(1.0)
	gt.V(t, overlapRatio("dinner with sarah", "completely unrelated words")).Equal(0.0)
	gt.V(t, overlapRatio("", "dinner")).Equal(0.0)

	// Punctuation and case do not count as differences
	gt.V(t, overlapRatio("Dinner, with Sarah!", "dinner with sarah")).Equal(1.0)

	// Half the larger set shared
	gt.V(t, overlapRatio("one two", "one two three four")).Equal(0.5)
}
