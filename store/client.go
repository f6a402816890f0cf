package store

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

type ClientStore struct{ DB *gorm.DB }

func NewClientStore(db *gorm.DB) *ClientStore { return &ClientStore{DB: db} }

// Create registers a client with its permitted-scope ceiling. The plaintext
// secret is hashed with bcrypt and never stored.
func (s *ClientStore) Create(ctx context.Context, c models.Client, secret string, scopeIDs []string) (models.Client, error) {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" || strings.TrimSpace(c.Name) == "" {
		return models.Client{}, errors.Unprocessablef("client id and name are required")
	}
	if secret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			return models.Client{}, err
		}
		c.SecretHash = string(hash)
	}
	c.CreatedAt = time.Now().UTC()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Scopes").Create(&c).Error; err != nil {
			return translate(err, "client")
		}
		return setClientScopes(tx, c.ID, scopeIDs)
	})
	if err != nil {
		return models.Client{}, err
	}
	return s.Get(ctx, c.ID)
}

func (s *ClientStore) Get(ctx context.Context, id string) (models.Client, error) {
	var c models.Client
	err := s.DB.WithContext(ctx).Preload("Scopes").Where("id = ?", id).First(&c).Error
	return c, translate(err, "client")
}

func (s *ClientStore) List(ctx context.Context, pager Pager, providerIDs []string) ([]models.Client, int64, error) {
	pager = pager.normalize("id", "name", "provider_id", "created_at")
	q := s.DB.WithContext(ctx).Model(&models.Client{})
	if providerIDs != nil {
		q = q.Where("provider_id IN ?", providerIDs)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clients []models.Client
	err := q.Preload("Scopes").
		Order(pager.Sort).Offset(pager.Skip).Limit(pager.Limit).
		Find(&clients).Error
	return clients, total, err
}

func (s *ClientStore) Update(ctx context.Context, c models.Client, secret string, scopeIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Client
		if err := tx.Where("id = ?", c.ID).First(&existing).Error; err != nil {
			return translate(err, "client")
		}
		updates := map[string]interface{}{
			"name":        c.Name,
			"provider_id": c.ProviderID,
		}
		if secret != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			updates["secret_hash"] = string(hash)
		}
		if err := tx.Model(&models.Client{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
			return err
		}
		return setClientScopes(tx, c.ID, scopeIDs)
	})
}

func (s *ClientStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&models.ClientScope{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Client{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFoundf("client")
		}
		return nil
	})
}

// VerifySecret checks a presented client secret against the stored hash.
func (s *ClientStore) VerifySecret(ctx context.Context, id, secret string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) != nil {
		return errors.ErrForbidden
	}
	return nil
}

// setClientScopes replaces the client's permitted-scope ceiling. Scope ids
// must come from the seeded catalogue.
func setClientScopes(tx *gorm.DB, clientID string, scopeIDs []string) error {
	if err := tx.Where("client_id = ?", clientID).Delete(&models.ClientScope{}).Error; err != nil {
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
		cs := models.ClientScope{ClientID: clientID, ScopeID: sid}
		if err := tx.Create(&cs).Error; err != nil {
			return translate(err, "client scope")
		}
	}
	return nil
}
