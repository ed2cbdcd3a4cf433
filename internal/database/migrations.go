package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/raychrisgdp/taskgenie/internal/models"
)

// Registered returns all schema migrations in application order. New steps
// are appended; versions are zero-padded so lexical order equals application
// order.
func Registered() []Migration {
	return []Migration{
		{
			Version: "001_initial",
			Name:    "initial schema",
			Apply:   initialSchemaApply,
			Revert:  initialSchemaRevert,
		},
		{
			Version: "002_notification_tracking",
			Name:    "notification tracking columns",
			Apply:   notificationTrackingApply,
			Revert:  notificationTrackingRevert,
		},
	}
}

// Snapshot types freeze the schema as it was at each migration step, so that
// later model changes do not alter what an old step creates.

type task001 struct {
	ID          string            `gorm:"type:varchar(36);primaryKey"`
	Title       string            `gorm:"size:255;not null"`
	Description *string           `gorm:"type:text"`
	Status      string            `gorm:"type:varchar(20);not null;default:'pending';index:idx_tasks_status"`
	Priority    string            `gorm:"type:varchar(20);default:'medium';index:idx_tasks_priority"`
	Eta         *time.Time        `gorm:"index:idx_tasks_eta"`
	CreatedAt   time.Time         `gorm:"not null;index:idx_tasks_created"`
	UpdatedAt   time.Time         `gorm:"not null"`
	Tags        models.StringList `gorm:"type:json"`
	Metadata    models.JSONMap    `gorm:"type:json;column:metadata"`
}

func (task001) TableName() string { return "tasks" }

type attachment001 struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	TaskID    string         `gorm:"type:varchar(36);not null;index:idx_attachments_task_id"`
	Type      string         `gorm:"type:varchar(20);not null;index:idx_attachments_type"`
	Reference string         `gorm:"size:500;not null"`
	Title     *string        `gorm:"size:255"`
	Content   *string        `gorm:"type:text"`
	Metadata  models.JSONMap `gorm:"type:json;column:metadata"`
	CreatedAt time.Time      `gorm:"not null"`

	Task task001 `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (attachment001) TableName() string { return "attachments" }

type notification001 struct {
	ID          string     `gorm:"type:varchar(36);primaryKey"`
	TaskID      string     `gorm:"type:varchar(36);not null;index:idx_notifications_task_id"`
	Type        string     `gorm:"type:varchar(20);not null"`
	ScheduledAt time.Time  `gorm:"not null;index:idx_notifications_scheduled"`
	SentAt      *time.Time
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_notifications_status"`

	Task task001 `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (notification001) TableName() string { return "notifications" }

type chatHistory001 struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	SessionID string    `gorm:"type:varchar(36);not null"`
	Role      string    `gorm:"size:10;not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (chatHistory001) TableName() string { return "chat_history" }

type appConfig001 struct {
	Key       string    `gorm:"size:100;primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (appConfig001) TableName() string { return "config" }

func initialSchemaApply(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(
		&task001{},
		&attachment001{},
		&notification001{},
		&chatHistory001{},
		&appConfig001{},
	)
}

func initialSchemaRevert(tx *gorm.DB) error {
	// Reverse order because of the foreign keys on attachments/notifications.
	return tx.Migrator().DropTable(
		&appConfig001{},
		&chatHistory001{},
		&notification001{},
		&attachment001{},
		&task001{},
	)
}

type notification002 struct {
	ClickedAt   *time.Time
	ActionTaken *string    `gorm:"size:50"`
	RetryCount  int        `gorm:"not null;default:0"`
}

func (notification002) TableName() string { return "notifications" }

func notificationTrackingApply(tx *gorm.DB) error {
	for _, col := range []string{"ClickedAt", "ActionTaken", "RetryCount"} {
		if err := tx.Migrator().AddColumn(&notification002{}, col); err != nil {
			return err
		}
	}
	return nil
}

func notificationTrackingRevert(tx *gorm.DB) error {
	for _, col := range []string{"RetryCount", "ActionTaken", "ClickedAt"} {
		if err := tx.Migrator().DropColumn(&notification002{}, col); err != nil {
			return err
		}
	}
	return nil
}
