package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type ProjectStore struct{ DB *gorm.DB }

func NewProjectStore(db *gorm.DB) *ProjectStore { return &ProjectStore{DB: db} }

func (s *ProjectStore) Create(ctx context.Context, p models.Project, collectionIDs []string) (models.Project, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" || strings.TrimSpace(p.Name) == "" {
		return models.Project{}, errors.Unprocessablef("project id and name are required")
	}
	p.CreatedAt = time.Now().UTC()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Collections").Create(&p).Error; err != nil {
			return translate(err, "project")
		}
		return setProjectCollections(tx, p.ID, collectionIDs)
	})
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).Preload("Collections").Where("id = ?", id).First(&p).Error
	return p, translate(err, "project")
}

func (s *ProjectStore) List(ctx context.Context, pager Pager) ([]models.Project, int64, error) {
	pager = pager.normalize("id", "name", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.Project{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []models.Project
	err := q.Preload("Collections").
		Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).
		Find(&projects).Error
	return projects, total, err
}

func (s *ProjectStore) Update(ctx context.Context, p models.Project, collectionIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Project
		if err := tx.Where("id = ?", p.ID).First(&existing).Error; err != nil {
			return translate(err, "project")
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", p.ID).
			Update("name", p.Name).Error; err != nil {
			return err
		}
		return setProjectCollections(tx, p.ID, collectionIDs)
	})
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectCollection{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFoundf("project")
		}
		return nil
	})
}

// setProjectCollections replaces the project's collection memberships,
// verifying each collection exists.
func setProjectCollections(tx *gorm.DB, projectID string, collectionIDs []string) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectCollection{}).Error; err != nil {
		return err
	}
	for _, cid := range collectionIDs {
		var count int64
		if err := tx.Model(&models.Collection{}).Where("id = ?", cid).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.NotFoundf("collection %s", cid)
		}
		pc := models.ProjectCollection{ProjectID: projectID, CollectionID: cid}
		if err := tx.Create(&pc).Error; err != nil {
			return translate(err, "project collection")
		}
	}
	return nil
}
