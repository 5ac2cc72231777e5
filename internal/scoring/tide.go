package scoring

import (
	"time"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

// NearestTide returns the tide event closest in time to target. The series is
// scanned in full, so it need not be sorted; on equal distance the earlier
// entry in the slice wins. ok is false only when events is empty.
func NearestTide(target time.Time, events []models.TideEvent) (nearest models.TideEvent, ok bool) {
	if len(events) == 0 {
		return models.TideEvent{}, false
	}

	nearest = events[0]
	minDiff := absDuration(events[0].Time.Sub(target))
	for _, ev := range events[1:] {
		if diff := absDuration(ev.Time.Sub(target)); diff < minDiff {
			minDiff = diff
			nearest = ev
		}
	}
	return nearest, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
