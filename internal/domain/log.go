package domain

import (
	"time"
)

// Action is the tag recorded on a log entry. Only two values exist.
type Action string

const (
	ActionEnter Action = "enter"
	ActionLeave Action = "leave"
)

// ParseAction validates an action tag coming from outside the process.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionEnter, ActionLeave:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}

// LogEntry is one entry/exit record. Identity fields are copied in at write
// time so the entry stays meaningful after the identity is edited or deleted.
type LogEntry struct {
	ID         int64     `json:"id"`
	IdentityID int64     `json:"identity_id"`
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	Hostel     string    `json:"hostel"`
	Room       string    `json:"room"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// LateNight reports whether the entry falls in the curfew window, 10 PM to
// 5 AM.
func (e LogEntry) LateNight() bool {
	hour := e.Timestamp.Hour()
	return hour >= 22 || hour < 5
}
