package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// Valid reports whether p is one of the known task priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// Task is the aggregate root. Attachments and notifications belong to exactly
// one task and are removed together with it.
type Task struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index:idx_tasks_status" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);default:'medium';index:idx_tasks_priority" json:"priority"`
	Eta         *time.Time   `gorm:"index:idx_tasks_eta" json:"eta"`
	CreatedAt   time.Time    `gorm:"not null;autoCreateTime:false;index:idx_tasks_created" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
	Tags        StringList   `gorm:"type:json" json:"tags"`
	Metadata    JSONMap      `gorm:"type:json;column:metadata" json:"metadata"`

	// Relations
	Attachments   []Attachment   `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Notifications []Notification `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}
