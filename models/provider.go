package models

import "time"

// Provider is a tenant boundary owning a subset of platform resources.
// Platform-wide entities reference no provider.
type Provider struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Provider) TableName() string { return "providers" }
