package models

import (
	"encoding/json"
	"time"
)

// Record is a metadata record within a collection. DOI is assigned at most
// once and is unique across the platform.
type Record struct {
	ID           string          `gorm:"column:id;primaryKey" json:"id"`
	DOI          *string         `gorm:"column:doi;uniqueIndex" json:"doi"`
	CollectionID string          `gorm:"column:collection_id;index" json:"collection_id"`
	SchemaURI    string          `gorm:"column:schema_uri" json:"schema_uri"`
	Metadata     json.RawMessage `gorm:"column:metadata" json:"metadata"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Record) TableName() string { return "records" }
