package naqfc

import "time"

// cycleHours are the daily AQM initialization hours, ascending, UTC.
var cycleHours = []int{6, 12}

// LatestCycle returns the most recent forecast initialization time that is
// not after the package clock's current time. Before 06Z it falls back to
// the previous day's 12Z run.
func LatestCycle() time.Time {
	return latestCycleAt(clock.Now())
}

// LatestCycleBefore returns the most recent initialization time not after t.
func LatestCycleBefore(t time.Time) time.Time {
	return latestCycleAt(t)
}

func latestCycleAt(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for i := len(cycleHours) - 1; i >= 0; i-- {
		cycle := day.Add(time.Duration(cycleHours[i]) * time.Hour)
		if !cycle.After(now) {
			return cycle
		}
	}

	// Before the first run of the day: yesterday's last cycle.
	return day.AddDate(0, 0, -1).Add(time.Duration(cycleHours[len(cycleHours)-1]) * time.Hour)
}
