package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type UserStore struct{ DB *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{DB: db} }

// Get loads a user with roles and each role's granted scopes, which is the
// full input state the access resolver needs.
func (s *UserStore) Get(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).
		Preload("Roles").Preload("Roles.Scopes").
		Where("id = ?", id).First(&u).Error
	return u, translate(err, "user")
}

func (s *UserStore) List(ctx context.Context, pager Pager) ([]models.User, int64, error) {
	pager = pager.normalize("id", "email", "name", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.User{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Preload("Roles").
		Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).
		Find(&users).Error
	return users, total, err
}

// Update replaces the user's active flag and role assignments. Identity
// attributes (email, name, verified) are owned by the identity provider and
// are not editable here.
func (s *UserStore) Update(ctx context.Context, id string, active bool, roleIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			return translate(err, "user")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).
			Update("active", active).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, rid := range roleIDs {
			var count int64
			if err := tx.Model(&models.Role{}).Where("id = ?", rid).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return errors.NotFoundf("role %s", rid)
			}
			ur := models.UserRole{UserID: id, RoleID: rid}
			if err := tx.Create(&ur).Error; err != nil {
				return translate(err, "user role")
			}
		}
		return nil
	})
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFoundf("user")
		}
		return nil
	})
}
