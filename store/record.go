package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type RecordStore struct{ DB *gorm.DB }

func NewRecordStore(db *gorm.DB) *RecordStore { return &RecordStore{DB: db} }

func (s *RecordStore) Create(ctx context.Context, r models.Record) (models.Record, error) {
	if r.ID == "" {
		r.ID = models.NewID()
	}
	if strings.TrimSpace(r.CollectionID) == "" {
		return models.Record{}, errors.Unprocessablef("record collection_id is required")
	}
	r.CreatedAt = time.Now().UTC()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Collection{}).Where("id = ?", r.CollectionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.NotFoundf("collection")
		}
		return translate(tx.Create(&r).Error, "record")
	})
	if err != nil {
		return models.Record{}, err
	}
	return r, nil
}

func (s *RecordStore) Get(ctx context.Context, id string) (models.Record, error) {
	var r models.Record
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&r).Error
	return r, translate(err, "record")
}

// List pages records, restricted to collections owned by the given
// providers when providerIDs is non-nil.
func (s *RecordStore) List(ctx context.Context, pager Pager, providerIDs []string) ([]models.Record, int64, error) {
	pager = pager.normalize("id", "doi", "collection_id", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.Record{})
	if providerIDs != nil {
		q = q.Where("collection_id IN (?)",
			s.DB.Model(&models.Collection{}).Select("id").Where("provider_id IN ?", providerIDs))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.Record
	err := q.Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).Find(&records).Error
	return records, total, err
}

func (s *RecordStore) Update(ctx context.Context, r models.Record) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Record
		if err := tx.Where("id = ?", r.ID).First(&existing).Error; err != nil {
			return translate(err, "record")
		}
		// A DOI is write-once.
		if existing.DOI != nil && r.DOI != nil && *existing.DOI != *r.DOI {
			return errors.Unprocessablef("record DOI cannot be changed")
		}
		updates := map[string]interface{}{
			"doi":        r.DOI,
			"schema_uri": r.SchemaURI,
			"metadata":   r.Metadata,
		}
		if existing.DOI != nil {
			delete(updates, "doi")
		}
		return translate(tx.Model(&models.Record{}).Where("id = ?", r.ID).Updates(updates).Error, "record")
	})
}

func (s *RecordStore) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFoundf("record")
	}
	return nil
}

// DOITaken reports whether any record already carries the given DOI. This is
// an advisory check; the unique index on records.doi is the backstop.
func (s *RecordStore) DOITaken(ctx context.Context, doi string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Record{}).Where("doi = ?", doi).Count(&count).Error
	return count > 0, err
}

// CollectionProvider returns the provider owning a record's collection.
func (s *RecordStore) CollectionProvider(ctx context.Context, collectionID string) (string, error) {
	var c models.Collection
	err := s.DB.WithContext(ctx).Select("provider_id").Where("id = ?", collectionID).First(&c).Error
	if err != nil {
		return "", translate(err, "collection")
	}
	return c.ProviderID, nil
}
