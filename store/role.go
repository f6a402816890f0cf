package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type RoleStore struct{ DB *gorm.DB }

func NewRoleStore(db *gorm.DB) *RoleStore { return &RoleStore{DB: db} }

func (s *RoleStore) Create(ctx context.Context, r models.Role, scopeIDs []string) (models.Role, error) {
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return models.Role{}, errors.Unprocessablef("role id is required")
	}
	r.CreatedAt = time.Now().UTC()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Scopes").Create(&r).Error; err != nil {
			return translate(err, "role")
		}
		return setRoleScopes(tx, r.ID, scopeIDs)
	})
	if err != nil {
		return models.Role{}, err
	}
	return s.Get(ctx, r.ID)
}

func (s *RoleStore) Get(ctx context.Context, id string) (models.Role, error) {
	var r models.Role
	err := s.DB.WithContext(ctx).Preload("Scopes").Where("id = ?", id).First(&r).Error
	return r, translate(err, "role")
}

func (s *RoleStore) List(ctx context.Context, pager Pager) ([]models.Role, int64, error) {
	pager = pager.normalize("id", "provider_id", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.Role{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var roles []models.Role
	err := q.Preload("Scopes").
		Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).
		Find(&roles).Error
	return roles, total, err
}

func (s *RoleStore) Update(ctx context.Context, r models.Role, scopeIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Role
		if err := tx.Where("id = ?", r.ID).First(&existing).Error; err != nil {
			return translate(err, "role")
		}
		if err := tx.Model(&models.Role{}).Where("id = ?", r.ID).
			Update("provider_id", r.ProviderID).Error; err != nil {
			return err
		}
		return setRoleScopes(tx, r.ID, scopeIDs)
	})
}

func (s *RoleStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RoleScope{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Role{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFoundf("role")
		}
		return nil
	})
}

// setRoleScopes replaces the role's granted scopes. Scope ids must come
// from the seeded catalogue.
func setRoleScopes(tx *gorm.DB, roleID string, scopeIDs []string) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RoleScope{}).Error; err != nil {
		return err
	}
	for _, sid := range scopeIDs {
		var count int64
		if err := tx.Model(&models.Scope{}).Where("id = ?", sid).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.Unprocessablef("unknown scope %s", sid)
		}
		rs := models.RoleScope{RoleID: roleID, ScopeID: sid}
		if err := tx.Create(&rs).Error; err != nil {
			return translate(err, "role scope")
		}
	}
	return nil
}
