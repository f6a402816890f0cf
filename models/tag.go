package models

import (
	"encoding/json"
	"time"
)

// TagType identifies the kind of resource a tag may be attached to.
type TagType string

const (
	TagTypeCollection TagType = "collection"
	TagTypeRecord     TagType = "record"
)

// IsValid reports whether t is a known tag type.
func (t TagType) IsValid() bool {
	return t == TagTypeCollection || t == TagTypeRecord
}

// AuditCommand is the mutation recorded by a tag audit row.
type AuditCommand string

const (
	AuditInsert AuditCommand = "insert"
	AuditUpdate AuditCommand = "update"
	AuditDelete AuditCommand = "delete"
)

// Tag is a named annotation type. Flag distinguishes single-valued status
// flags (exclusive per resource across all users) from multi-valued free
// tags. SchemaURI resolves to the JSON schema that instance payloads must
// satisfy.
type Tag struct {
	ID        string  `gorm:"column:id;primaryKey" json:"id"`
	Type      TagType `gorm:"column:tag_type;primaryKey" json:"type"`
	Flag      bool    `gorm:"column:flag" json:"flag"`
	SchemaURI string  `gorm:"column:schema_uri" json:"schema_uri"`
	Public    bool    `gorm:"column:public" json:"public"`
}

func (Tag) TableName() string { return "tags" }

// TagInstance binds a tag to one resource instance and one authoring user.
// UserID is nil for system-set flags. At most one instance exists per
// (resource, tag, user); flag-type tags are additionally exclusive per
// (resource, tag) regardless of user.
type TagInstance struct {
	ID         string          `gorm:"column:id;primaryKey" json:"id"`
	TagID      string          `gorm:"column:tag_id" json:"tag_id"`
	TagType    TagType         `gorm:"column:tag_type" json:"tag_type"`
	ResourceID string          `gorm:"column:resource_id;index" json:"resource_id"`
	UserID     *string         `gorm:"column:user_id" json:"user_id"`
	Data       json.RawMessage `gorm:"column:data" json:"data"`
	Timestamp  time.Time       `gorm:"column:timestamp" json:"timestamp"`
}

func (TagInstance) TableName() string { return "tag_instances" }

// TagAudit is an append-only record of one tag mutation. Resource, tag and
// user identifiers are snapshotted rather than referenced so audit history
// survives deletion of the rows it describes. Data is nil for deletes.
type TagAudit struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID   string          `gorm:"column:client_id"`
	UserID     string          `gorm:"column:user_id"`
	Command    AuditCommand    `gorm:"column:command"`
	Timestamp  time.Time       `gorm:"column:timestamp"`
	TagID      string          `gorm:"column:_tag_id"`
	TagType    TagType         `gorm:"column:_tag_type"`
	ResourceID string          `gorm:"column:_resource_id"`
	TagUserID  *string         `gorm:"column:_user_id"`
	Data       json.RawMessage `gorm:"column:_data"`
}

func (TagAudit) TableName() string { return "tag_audit" }
