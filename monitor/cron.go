package monitor

import (
	"time"

	"github.com/dreitier/testermon/config"
	"github.com/gorhill/cronexpr"
)

// FindPrevious returns the latest fire time of cron not after moment. cronexpr
// only knows Next, so the fire time is narrowed down by bisection. The zero
// time is returned if cron has not fired within the last 200 years.
func FindPrevious(cron *cronexpr.Expression, moment time.Time) time.Time {
	if cron == nil {
		return time.Time{}
	}

	high := cron.Next(moment)
	if high.IsZero() {
		high = moment.Add(time.Second)
	}

	// widen the window until it contains at least one fire time before high
	window := -2 * config.Day
	low := cron.Next(moment.Add(window))

	for low.IsZero() || !low.Before(high) {
		window *= 2
		if window < -200*config.Year {
			return time.Time{}
		}
		low = cron.Next(moment.Add(window))
	}

	return bisect(cron, low, moment, high)
}

// bisect narrows [low, high] down to the last fire time before next
func bisect(cron *cronexpr.Expression, low time.Time, high time.Time, next time.Time) time.Time {
	for {
		diff := high.Sub(low)
		median := low.Add(diff / 2)
		nextAfterMedian := cron.Next(median)

		if nextAfterMedian.Before(next) {
			if diff < time.Minute {
				return nextAfterMedian
			}
			low = nextAfterMedian
		} else {
			if diff < time.Minute {
				return low
			}
			high = median
		}
	}
}
