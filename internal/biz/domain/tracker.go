package domain

import "time"

// Tracker is the per-user collection session: the opt-in gate and the
// anchor of the single outgoing report message. At most one tracker exists
// per user; a new trigger wipes the old one before creating its own.
type Tracker struct {
	UserID          string
	ChannelID       string
	Command         string
	OptIn           bool
	ReportChannelID string
	ReportMessageID string
	CreatedAt       time.Time
}

// HasReport reports whether a report message has been posted for this
// tracker yet.
func (t *Tracker) HasReport() bool {
	return t.ReportMessageID != ""
}
