package models

import (
	"time"
)

type AttachmentType string

const (
	AttachmentTypeGmail  AttachmentType = "gmail"
	AttachmentTypeGithub AttachmentType = "github"
	AttachmentTypeURL    AttachmentType = "url"
	AttachmentTypeDoc    AttachmentType = "doc"
)

// Valid reports whether t is one of the known attachment types.
func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentTypeGmail, AttachmentTypeGithub, AttachmentTypeURL, AttachmentTypeDoc:
		return true
	}
	return false
}

// Attachment is an external reference (email, issue, link, document) bound to
// one task.
type Attachment struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TaskID    string         `gorm:"type:varchar(36);not null;index:idx_attachments_task_id" json:"task_id"`
	Type      AttachmentType `gorm:"type:varchar(20);not null;index:idx_attachments_type" json:"type"`
	Reference string         `gorm:"size:500;not null" json:"reference"`
	Title     *string        `gorm:"size:255" json:"title"`
	Content   *string        `gorm:"type:text" json:"content"`
	Metadata  JSONMap        `gorm:"type:json;column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime:false" json:"created_at"`
}
