package models

import (
	"time"
)

// AppConfig is a free-form application configuration key/value pair persisted
// in the store.
type AppConfig struct {
	Key       string    `gorm:"size:100;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AppConfig) TableName() string {
	return "config"
}
