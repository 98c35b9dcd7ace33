package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Transaction records one checkout attempt. Payment stays false until
// the gateway callback is verified; the credits attached to the plan
// are granted at that point, exactly once.
type Transaction struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	ClerkID   string       `json:"clerkID" gorm:"type:text;not null;index"`
	Plan      string       `json:"plan" gorm:"type:text;not null"`
	Amount    int64        `json:"amount" gorm:"not null"`
	Credits   int64        `json:"credits" gorm:"not null"`
	Payment   bool         `json:"payment" gorm:"not null;default:false"`
	OrderID   string       `json:"orderID" gorm:"type:text;not null;index"`
	CreatedAt time.Time    `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time    `json:"updatedAt" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }
