// Package schedule resolves which scheduled ad a grid cell shows at a given
// wall-clock time. The resolver is a pure function: callers re-evaluate it on
// their own render tick (once per minute is the design default).
package schedule

import (
	"fmt"
	"time"

	"github.com/screenwerk/signage/internal/domain"
)

// Resolve picks the assignment a cell should render at now ("HH:mm",
// zero-padded 24-hour). The most recently started assignment wins; ties on
// the maximal start time go to the element latest in input order. If nothing
// has started yet today, the soonest upcoming assignment is returned so the
// cell is never blank. Returns nil only for an empty slice.
//
// Comparison is lexicographic on the HH:mm strings. A schedule spanning
// midnight (23:50 followed by 00:10) resolves naively at the day boundary;
// this is a known limitation, not a bug to compensate for here.
func Resolve(scheduledAds []domain.ScheduledAd, now string) *domain.ScheduledAd {
	if len(scheduledAds) == 0 {
		return nil
	}

	var started *domain.ScheduledAd
	for i := range scheduledAds {
		a := &scheduledAds[i]
		if a.ScheduledTime > now {
			continue
		}
		// >= keeps the later element on equal start times.
		if started == nil || a.ScheduledTime >= started.ScheduledTime {
			started = a
		}
	}
	if started != nil {
		return started
	}

	// Nothing has started yet: fall back to the soonest upcoming slot.
	upcoming := &scheduledAds[0]
	for i := 1; i < len(scheduledAds); i++ {
		if scheduledAds[i].ScheduledTime < upcoming.ScheduledTime {
			upcoming = &scheduledAds[i]
		}
	}
	return upcoming
}

// ClockTime formats t as the "HH:mm" string Resolve expects.
func ClockTime(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
