package models

import (
	"time"
)

// ChatHistory stores one transcript turn of an assistant session.
// Storage-only; no business logic reads it.
type ChatHistory struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID string    `gorm:"type:varchar(36);not null" json:"session_id"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}
