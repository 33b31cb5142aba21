package ws

import (
	"time"
)

type EventType string

const (
	EventRecognitionUpdated EventType = "recognition.updated"
	EventLogCreated         EventType = "log.created"
	EventIdentityRegistered EventType = "identity.registered"
	EventIdentityDeleted    EventType = "identity.deleted"
	EventAlertTriggered     EventType = "alert.triggered"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
