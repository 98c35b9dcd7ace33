package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User mirrors an identity-provider account plus its credit balance. The
// balance is only ever changed through atomic SQL updates.
type User struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ClerkID       string       `gorm:"not null;uniqueIndex" json:"clerkID"`
	Email         string       `gorm:"not null;uniqueIndex" json:"email"`
	Username      string       `gorm:"not null" json:"username"`
	Photo         string       `gorm:"not null" json:"photo"`
	FirstName     string       `json:"firstName"`
	LastName      string       `json:"lastName"`
	CreditBalance int64        `gorm:"not null;default:5" json:"creditBalance"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

// DefaultCreditBalance is granted to every newly provisioned account.
const DefaultCreditBalance = 5
