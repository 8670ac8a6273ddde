package timer

import (
	"fmt"
	"time"
)

// NextDailyRun returns the next occurrence of the given local time of
// day (format "HH:MM"). If today's slot has passed, tomorrow's is used.
func NextDailyRun(timeOfDay string) (time.Time, error) {
	return nextDailyRunFrom(timeOfDay, time.Now())
}

func nextDailyRunFrom(timeOfDay string, now time.Time) (time.Time, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %s (expected HH:MM)", timeOfDay)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time of day out of range: %s", timeOfDay)
	}

	todayRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(todayRun) {
		return todayRun.AddDate(0, 0, 1), nil
	}
	return todayRun, nil
}
