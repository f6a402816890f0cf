package models

import "time"

// Project is a platform-wide grouping of collections across providers.
type Project struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	Collections []Collection `gorm:"many2many:project_collections;joinForeignKey:project_id;joinReferences:collection_id" json:"-"`
}

func (Project) TableName() string { return "projects" }

// ProjectCollection links a project to a member collection.
type ProjectCollection struct {
	ProjectID    string `gorm:"column:project_id;primaryKey"`
	CollectionID string `gorm:"column:collection_id;primaryKey"`
}

func (ProjectCollection) TableName() string { return "project_collections" }
