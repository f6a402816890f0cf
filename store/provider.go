package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type ProviderStore struct{ DB *gorm.DB }

func NewProviderStore(db *gorm.DB) *ProviderStore { return &ProviderStore{DB: db} }

func (s *ProviderStore) Create(ctx context.Context, p models.Provider) (models.Provider, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" || strings.TrimSpace(p.Name) == "" {
		return models.Provider{}, errors.Unprocessablef("provider id and name are required")
	}
	p.CreatedAt = time.Now().UTC()
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return models.Provider{}, translate(err, "provider")
	}
	return p, nil
}

func (s *ProviderStore) Get(ctx context.Context, id string) (models.Provider, error) {
	var p models.Provider
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, translate(err, "provider")
}

func (s *ProviderStore) List(ctx context.Context, pager Pager) ([]models.Provider, int64, error) {
	pager = pager.normalize("id", "name", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.Provider{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var providers []models.Provider
	err := q.Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).Find(&providers).Error
	return providers, total, err
}

func (s *ProviderStore) Update(ctx context.Context, p models.Provider) (models.Provider, error) {
	return p, s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Provider
		if err := tx.Where("id = ?", p.ID).First(&existing).Error; err != nil {
			return translate(err, "provider")
		}
		return tx.Model(&models.Provider{}).Where("id = ?", p.ID).
			Update("name", p.Name).Error
	})
}

func (s *ProviderStore) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Provider{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFoundf("provider")
	}
	return nil
}
