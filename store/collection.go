package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type CollectionStore struct{ DB *gorm.DB }

func NewCollectionStore(db *gorm.DB) *CollectionStore { return &CollectionStore{DB: db} }

// CollectionView is a collection together with its derived record count.
type CollectionView struct {
	models.Collection
	RecordCount int64 `json:"record_count"`
}

func (s *CollectionStore) Create(ctx context.Context, c models.Collection) (models.Collection, error) {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" || strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.ProviderID) == "" {
		return models.Collection{}, errors.Unprocessablef("collection id, name and provider_id are required")
	}
	c.CreatedAt = time.Now().UTC()
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return models.Collection{}, translate(err, "collection")
	}
	return c, nil
}

func (s *CollectionStore) Get(ctx context.Context, id string) (CollectionView, error) {
	var c models.Collection
	err := s.DB.WithContext(ctx).Preload("Projects").Where("id = ?", id).First(&c).Error
	if err != nil {
		return CollectionView{}, translate(err, "collection")
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Record{}).
		Where("collection_id = ?", id).Count(&count).Error; err != nil {
		return CollectionView{}, err
	}
	return CollectionView{Collection: c, RecordCount: count}, nil
}

// List returns a page of collections with record counts. A nil providerIDs
// slice means unrestricted; otherwise the result is filtered to those
// providers, which is how non-wildcard callers get a filtered rather than
// rejected listing.
func (s *CollectionStore) List(ctx context.Context, pager Pager, providerIDs []string) ([]CollectionView, int64, error) {
	pager = pager.normalize("id", "name", "provider_id", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.Collection{})
	if providerIDs != nil {
		q = q.Where("provider_id IN ?", providerIDs)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var collections []models.Collection
	if err := q.Preload("Projects").
		Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).
		Find(&collections).Error; err != nil {
		return nil, 0, err
	}
	views := make([]CollectionView, 0, len(collections))
	for _, c := range collections {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Record{}).
			Where("collection_id = ?", c.ID).Count(&count).Error; err != nil {
			return nil, 0, err
		}
		views = append(views, CollectionView{Collection: c, RecordCount: count})
	}
	return views, total, nil
}

func (s *CollectionStore) Update(ctx context.Context, c models.Collection) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Collection
		if err := tx.Where("id = ?", c.ID).First(&existing).Error; err != nil {
			return translate(err, "collection")
		}
		updates := map[string]interface{}{
			"name":        c.Name,
			"doi_key":     c.DOIKey,
			"provider_id": c.ProviderID,
		}
		return tx.Model(&models.Collection{}).Where("id = ?", c.ID).Updates(updates).Error
	})
}

func (s *CollectionStore) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Collection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFoundf("collection")
	}
	return nil
}
