package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/models"
)

type ScopeStore struct{ DB *gorm.DB }

func NewScopeStore(db *gorm.DB) *ScopeStore { return &ScopeStore{DB: db} }

func (s *ScopeStore) Get(ctx context.Context, id string) (models.Scope, error) {
	var scope models.Scope
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&scope).Error
	return scope, translate(err, "scope")
}

func (s *ScopeStore) List(ctx context.Context, pager Pager) ([]models.Scope, int64, error) {
	pager = pager.normalize("id")
	q := s.DB.WithContext(ctx).Model(&models.Scope{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var scopes []models.Scope
	err := q.Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).Find(&scopes).Error
	return scopes, total, err
}
