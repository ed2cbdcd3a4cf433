package models

import (
	"time"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is a scheduled reminder tied to one task's due time. It is
// stored only; dispatching is out of scope.
type Notification struct {
	ID          string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	TaskID      string             `gorm:"type:varchar(36);not null;index:idx_notifications_task_id" json:"task_id"`
	Type        string             `gorm:"type:varchar(20);not null" json:"type"`
	ScheduledAt time.Time          `gorm:"not null;index:idx_notifications_scheduled" json:"scheduled_at"`
	SentAt      *time.Time         `json:"sent_at"`
	Status      NotificationStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_notifications_status" json:"status"`

	// Tracking fields added by the notification_tracking migration.
	ClickedAt   *time.Time `json:"clicked_at"`
	ActionTaken *string    `gorm:"size:50" json:"action_taken"`
	RetryCount  int        `gorm:"not null;default:0" json:"retry_count"`
}
