package ingest

import (
	"time"

	"github.com/csfalcao/magis/pkg/model"
)

// Confidence levels for heuristically resolved dates. These are deliberately
// low: a backfilled date makes a memory eligible for temporal scoring, it
// does not claim the annotator's precision.
const (
	confidenceRelativeDay = 0.6
	confidenceWeekday     = 0.4
	confidenceWeekend     = 0.3
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveTemporalKeywords backfills approximate resolved dates from temporal
// keywords when the annotator produced none. Without this, a memory whose
// only time signal is a keyword like "friday" would never score on the
// temporal dimension.
func ResolveTemporalKeywords(keywords []string, now time.Time) []model.ResolvedDate {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var dates []model.ResolvedDate
	for _, kw := range keywords {
		switch kw {
		case "today", "tonight":
			dates = append(dates, model.ResolvedDate{Start: today, Confidence: confidenceRelativeDay})
		case "tomorrow":
			dates = append(dates, model.ResolvedDate{Start: today.AddDate(0, 0, 1), Confidence: confidenceRelativeDay})
		case "yesterday":
			dates = append(dates, model.ResolvedDate{Start: today.AddDate(0, 0, -1), Confidence: confidenceRelativeDay})
		case "weekend":
			dates = append(dates, model.ResolvedDate{Start: nextWeekday(today, time.Saturday), Confidence: confidenceWeekend})
		default:
			if wd, ok := weekdays[kw]; ok {
				dates = append(dates, model.ResolvedDate{Start: nextWeekday(today, wd), Confidence: confidenceWeekday})
			}
		}
	}

	return dates
}

// nextWeekday returns the next occurrence of wd strictly after today
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := int(wd-today.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}
