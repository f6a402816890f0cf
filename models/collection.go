package models

import "time"

// Collection groups records under one provider. DOIKey, when set, is the
// collection-specific component of DOIs minted for its records.
type Collection struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name" json:"name"`
	DOIKey     *string   `gorm:"column:doi_key" json:"doi_key"`
	ProviderID string    `gorm:"column:provider_id;index" json:"provider_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`

	Projects []Project `gorm:"many2many:project_collections;joinForeignKey:collection_id;joinReferences:project_id" json:"-"`
}

func (Collection) TableName() string { return "collections" }

// ProjectIDs returns the ids of projects the collection belongs to.
func (c Collection) ProjectIDs() []string {
	ids := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		ids = append(ids, p.ID)
	}
	return ids
}
