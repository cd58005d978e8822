package domain

import "time"

// DailyTrigger is the once-per-local-day firing state machine for an
// archive group: Idle until the target local time is reached on a calendar
// date not yet processed, then Fired(date) until the date rolls over.
// Callers tick it with the current time; it never sleeps itself.
type DailyTrigger struct {
	Hour     int
	Minute   int
	Location *time.Location

	firedDate string // local calendar date of the last fire, "" when idle
}

// NewDailyTrigger builds a trigger for a fixed UTC offset, matching the
// fixed-offset local times the archive groups are configured with.
func NewDailyTrigger(hour, minute, utcOffsetHours int) *DailyTrigger {
	return &DailyTrigger{
		Hour:     hour,
		Minute:   minute,
		Location: time.FixedZone("archive", utcOffsetHours*3600),
	}
}

// Tick reports whether the trigger fires at now. Firing records the local
// calendar date so the same date never fires twice.
func (t *DailyTrigger) Tick(now time.Time) bool {
	local := now.In(t.Location)
	date := local.Format("2006-01-02")
	if date == t.firedDate {
		return false
	}

	target := time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, t.Location)
	if local.Before(target) {
		return false
	}

	t.firedDate = date
	return true
}

// FiredDate returns the local calendar date of the last fire, or "" when
// the trigger has not fired yet.
func (t *DailyTrigger) FiredDate() string {
	return t.firedDate
}
