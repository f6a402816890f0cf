package store

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/models"
)

var testDB *gorm.DB

func getTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB != nil {
		return testDB
	}
	db, err := Open(getTestDSN())
	if err != nil {
		t.Fatal("failed to open test database:", err)
	}
	testDB = db
	return testDB
}

// newTestProvider creates a provider with a unique id for the calling test.
func newTestProvider(t *testing.T, db *gorm.DB) models.Provider {
	t.Helper()
	id := "prov-" + models.NewID()
	p, err := NewProviderStore(db).Create(context.Background(), models.Provider{
		ID:   id,
		Name: "Provider " + id,
	})
	if err != nil {
		t.Fatal("create test provider:", err)
	}
	return p
}

func newTestCollection(t *testing.T, db *gorm.DB, providerID string, doiKey *string) models.Collection {
	t.Helper()
	id := "coll-" + models.NewID()
	c, err := NewCollectionStore(db).Create(context.Background(), models.Collection{
		ID:         id,
		Name:       "Collection " + id,
		DOIKey:     doiKey,
		ProviderID: providerID,
	})
	if err != nil {
		t.Fatal("create test collection:", err)
	}
	return c
}
