package models

import (
	"gorm.io/gorm"
)

// EventStatusChange is an append-only audit row written for every lifecycle
// transition. ActorID is zero when the completion poller made the change.
type EventStatusChange struct {
	gorm.Model
	EventID    uint        `json:"event_id"`
	FromStatus EventStatus `json:"from_status"`
	ToStatus   EventStatus `json:"to_status"`
	ActorID    uint        `json:"actor_id"`
	Reason     string      `json:"reason"`
}
