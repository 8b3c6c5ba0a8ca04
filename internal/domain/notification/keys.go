package notification

import (
	"strconv"
	"time"
)

// StatusPeriodKey scopes status emails to one ISO week of a semester, so a
// weekly job re-run in the same week sends nothing new.
func StatusPeriodKey(semesterID uint, now time.Time) string {
	year, week := now.ISOWeek()
	return "status:" + strconv.FormatUint(uint64(semesterID), 10) + ":" + strconv.Itoa(year) + "-W" + strconv.Itoa(week)
}
