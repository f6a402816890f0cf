// Package tagging implements the audit-logged mutation protocol for
// user-attached, schema-validated annotations on platform resources.
//
// Every state-changing write persists the tag instance and appends exactly
// one audit row inside the same transaction, so replaying the audit log
// reconstructs instance history exactly. Re-applying an identical payload is
// a no-op: no write, no timestamp bump, no audit row.
package tagging

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

// Validator resolves a schema URI and validates a payload against it. A
// failed validation returns *errors.ValidationError carrying the detailed
// report.
type Validator interface {
	Validate(ctx context.Context, schemaURI string, payload json.RawMessage) error
}

type Service struct {
	db      *gorm.DB
	schemas Validator
}

func NewService(db *gorm.DB, schemas Validator) *Service {
	return &Service{db: db, schemas: schemas}
}

// ApplyInput identifies the resource, tag and acting (user, client) pair for
// an upsert.
type ApplyInput struct {
	TagType    models.TagType
	ResourceID string
	TagID      string
	UserID     string
	ClientID   string
	Data       json.RawMessage
}

// RemoveInput identifies the instance to delete: removal is always scoped to
// the acting user's own instance.
type RemoveInput struct {
	TagType    models.TagType
	ResourceID string
	TagID      string
	UserID     string
	ClientID   string
}

// InstanceView is the API shape of a tag instance.
type InstanceView struct {
	TagID     string          `json:"tag_id"`
	UserID    *string         `json:"user_id"`
	UserName  string          `json:"user_name"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Apply upserts a tag instance for (resource, tag, acting user).
//
// An existing instance for the tuple becomes an update. Otherwise, if the
// tag is a flag and any user has already set it on this resource, the apply
// fails with Conflict — flags are exclusive regardless of author. The
// payload is validated against the tag's schema before any write. An
// unchanged payload short-circuits without touching the database.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (InstanceView, error) {
	var view InstanceView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("id = ? AND tag_type = ?", in.TagID, in.TagType).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NotFoundf("tag")
			}
			return err
		}

		var instance models.TagInstance
		command := models.AuditUpdate
		err := tx.Where("tag_type = ? AND resource_id = ? AND tag_id = ? AND user_id = ?",
			in.TagType, in.ResourceID, in.TagID, in.UserID).First(&instance).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if tag.Flag {
				var count int64
				if err := tx.Model(&models.TagInstance{}).
					Where("tag_type = ? AND resource_id = ? AND tag_id = ?",
						in.TagType, in.ResourceID, in.TagID).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return errors.Conflictf("flag has already been set")
				}
			}
			userID := in.UserID
			instance = models.TagInstance{
				ID:         models.NewID(),
				TagID:      in.TagID,
				TagType:    in.TagType,
				ResourceID: in.ResourceID,
				UserID:     &userID,
			}
			command = models.AuditInsert
		case err != nil:
			return err
		}

		if bytes.Equal(canonical(instance.Data), canonical(in.Data)) && command == models.AuditUpdate {
			view = s.view(tx, instance)
			return nil
		}

		// Schema-less tags (plain flags) accept any payload, typically none.
		if tag.SchemaURI != "" {
			if err := s.schemas.Validate(ctx, tag.SchemaURI, in.Data); err != nil {
				return err
			}
		}

		instance.Data = in.Data
		instance.Timestamp = time.Now().UTC()
		if err := tx.Save(&instance).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Conflictf("tag instance already exists")
			}
			return err
		}

		audit := models.TagAudit{
			ClientID:   in.ClientID,
			UserID:     in.UserID,
			Command:    command,
			Timestamp:  instance.Timestamp,
			TagID:      instance.TagID,
			TagType:    instance.TagType,
			ResourceID: instance.ResourceID,
			TagUserID:  instance.UserID,
			Data:       instance.Data,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		view = s.view(tx, instance)
		return nil
	})
	if err != nil {
		return InstanceView{}, err
	}
	return view, nil
}

// Remove deletes the acting user's instance of a tag on a resource and
// appends a delete audit row with a nil payload.
func (s *Service) Remove(ctx context.Context, in RemoveInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var instance models.TagInstance
		err := tx.Where("tag_type = ? AND resource_id = ? AND tag_id = ? AND user_id = ?",
			in.TagType, in.ResourceID, in.TagID, in.UserID).First(&instance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFoundf("tag instance")
		}
		if err != nil {
			return err
		}

		if err := tx.Where("id = ?", instance.ID).Delete(&models.TagInstance{}).Error; err != nil {
			return err
		}

		audit := models.TagAudit{
			ClientID:   in.ClientID,
			UserID:     in.UserID,
			Command:    models.AuditDelete,
			Timestamp:  time.Now().UTC(),
			TagID:      instance.TagID,
			TagType:    instance.TagType,
			ResourceID: instance.ResourceID,
			TagUserID:  instance.UserID,
		}
		return tx.Create(&audit).Error
	})
}

// Instances lists all tag instances attached to a resource.
func (s *Service) Instances(ctx context.Context, tagType models.TagType, resourceID string) ([]InstanceView, error) {
	var instances []models.TagInstance
	if err := s.db.WithContext(ctx).
		Where("tag_type = ? AND resource_id = ?", tagType, resourceID).
		Order("tag_id, timestamp").
		Find(&instances).Error; err != nil {
		return nil, err
	}
	views := make([]InstanceView, 0, len(instances))
	for _, instance := range instances {
		views = append(views, s.view(s.db.WithContext(ctx), instance))
	}
	return views, nil
}

func (s *Service) view(tx *gorm.DB, instance models.TagInstance) InstanceView {
	view := InstanceView{
		TagID:     instance.TagID,
		UserID:    instance.UserID,
		Data:      instance.Data,
		Timestamp: instance.Timestamp,
	}
	if instance.UserID != nil {
		var u models.User
		if err := tx.Select("name").Where("id = ?", *instance.UserID).First(&u).Error; err == nil {
			view.UserName = u.Name
		}
	}
	return view
}

// canonical re-marshals a JSON payload with sorted object keys so payload
// comparison is structural, not sensitive to client-side key order.
func canonical(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	out, err := json.Marshal(v)
	if err != nil {
		return raw
	}
	return out
}
