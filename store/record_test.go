package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
)

func TestRecordCreateRequiresCollection(t *testing.T) {
	db := getTestDB(t)

	_, err := NewRecordStore(db).Create(context.Background(), models.Record{
		CollectionID: "coll-" + models.NewID(),
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found for missing collection, got %v", err)
	}
}

func TestRecordDOIUnique(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	provider := newTestProvider(t, db)
	coll := newTestCollection(t, db, provider.ID, nil)
	store := NewRecordStore(db)

	doi := "10.15493/TEST." + models.NewID()
	if _, err := store.Create(ctx, models.Record{CollectionID: coll.ID, DOI: &doi}); err != nil {
		t.Fatal(err)
	}

	_, err := store.Create(ctx, models.Record{CollectionID: coll.ID, DOI: &doi})
	if !errors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected conflict on duplicate DOI, got %v", err)
	}

	taken, err := store.DOITaken(ctx, doi)
	if err != nil {
		t.Fatal(err)
	}
	if !taken {
		t.Fatal("DOITaken should report the assigned DOI")
	}
	taken, err = store.DOITaken(ctx, "10.15493/TEST."+models.NewID())
	if err != nil {
		t.Fatal(err)
	}
	if taken {
		t.Fatal("DOITaken reported an unused DOI as taken")
	}
}

func TestRecordDOIWriteOnce(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	provider := newTestProvider(t, db)
	coll := newTestCollection(t, db, provider.ID, nil)
	store := NewRecordStore(db)

	doi := "10.15493/TEST." + models.NewID()
	r, err := store.Create(ctx, models.Record{CollectionID: coll.ID, DOI: &doi})
	if err != nil {
		t.Fatal(err)
	}

	changed := "10.15493/TEST." + models.NewID()
	err = store.Update(ctx, models.Record{ID: r.ID, DOI: &changed})
	if !errors.Is(err, errors.ErrUnprocessable) {
		t.Fatalf("expected unprocessable on DOI change, got %v", err)
	}

	// Updating other fields leaves the DOI in place.
	if err := store.Update(ctx, models.Record{
		ID:        r.ID,
		DOI:       &doi,
		SchemaURI: "https://odp.saeon.ac.za/schema/metadata/saeon/datacite4",
		Metadata:  json.RawMessage(`{"titles": []}`),
	}); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DOI == nil || *got.DOI != doi {
		t.Fatal("DOI lost on update")
	}
}

func TestRecordListByCollectionProvider(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	mine := newTestProvider(t, db)
	other := newTestProvider(t, db)
	myColl := newTestCollection(t, db, mine.ID, nil)
	otherColl := newTestCollection(t, db, other.ID, nil)
	store := NewRecordStore(db)

	visible, err := store.Create(ctx, models.Record{CollectionID: myColl.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, models.Record{CollectionID: otherColl.ID}); err != nil {
		t.Fatal(err)
	}

	records, total, err := store.List(ctx, Pager{Limit: 1000}, []string{mine.ID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(records) != 1 || records[0].ID != visible.ID {
		t.Fatalf("provider-filtered records = %v (total %d)", records, total)
	}

	providerID, err := store.CollectionProvider(ctx, myColl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if providerID != mine.ID {
		t.Fatalf("CollectionProvider = %s, want %s", providerID, mine.ID)
	}
}
