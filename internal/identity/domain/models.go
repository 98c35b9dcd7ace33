package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord stores each webhook delivery. The unique index on
// (provider, event_id) makes redelivery handling race free.
type EventRecord struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider    string         `json:"provider" gorm:"type:text;not null"`
	EventID     string         `json:"event_id" gorm:"type:text;not null"`
	EventType   string         `json:"event_type" gorm:"type:text;not null"`
	ClerkID     string         `json:"clerk_id" gorm:"type:text;not null"`
	Payload     datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt  time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "identity_events" }

const (
	EventTypeUserCreated = "user.created"
	EventTypeUserUpdated = "user.updated"
	EventTypeUserDeleted = "user.deleted"
)

// UserEvent is the canonical lifecycle event parsed from a webhook payload.
type UserEvent struct {
	EventID   string
	Type      string
	ClerkID   string
	Email     string
	Username  string
	Photo     string
	FirstName string
	LastName  string
}
