package tagging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

// stubValidator counts validations and can be set to fail.
type stubValidator struct {
	calls int
	fail  error
}

func (v *stubValidator) Validate(ctx context.Context, schemaURI string, payload json.RawMessage) error {
	v.calls++
	return v.fail
}

type fixture struct {
	db        *gorm.DB
	service   *Service
	validator *stubValidator
	tag       models.Tag
	userID    string
	userID2   string
}

func setup(t *testing.T, flag bool) fixture {
	t.Helper()
	db, err := store.Open(getTestDSN())
	if err != nil {
		t.Fatal("open test database:", err)
	}

	tag := models.Tag{
		ID:        "tag-" + models.NewID(),
		Type:      models.TagTypeCollection,
		Flag:      flag,
		SchemaURI: "https://odp.saeon.ac.za/schema/tag/test",
	}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}

	userID := "user-" + models.NewID()
	userID2 := "user-" + models.NewID()
	for _, id := range []string{userID, userID2} {
		u := models.User{ID: id, Email: id + "@example.org", Name: "Tester " + id, Active: true}
		if err := db.Create(&u).Error; err != nil {
			t.Fatal(err)
		}
	}

	v := &stubValidator{}
	return fixture{
		db:        db,
		service:   NewService(db, v),
		validator: v,
		tag:       tag,
		userID:    userID,
		userID2:   userID2,
	}
}

func (f fixture) auditRows(t *testing.T, resourceID string) []models.TagAudit {
	t.Helper()
	var rows []models.TagAudit
	if err := f.db.Where("_resource_id = ?", resourceID).Order("id").Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestApplyInsertUpdateNoop(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	resource := "coll-" + models.NewID()

	in := ApplyInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
		Data:       json.RawMessage(`{"comment": "first", "pass_": true}`),
	}

	view, err := f.service.Apply(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if view.TagID != f.tag.ID || view.UserID == nil || *view.UserID != f.userID {
		t.Fatalf("view = %+v", view)
	}
	firstStamp := view.Timestamp

	rows := f.auditRows(t, resource)
	if len(rows) != 1 || rows[0].Command != models.AuditInsert {
		t.Fatalf("audit after insert = %+v", rows)
	}

	// Same payload with reordered keys: structural no-op, no audit row.
	in.Data = json.RawMessage(`{"pass_": true, "comment": "first"}`)
	view, err = f.service.Apply(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if view.Timestamp.After(firstStamp) {
		t.Fatal("no-op apply bumped the timestamp")
	}
	if rows = f.auditRows(t, resource); len(rows) != 1 {
		t.Fatalf("no-op apply wrote an audit row: %+v", rows)
	}

	// Changed payload: update with second audit row.
	in.Data = json.RawMessage(`{"comment": "second", "pass_": false}`)
	view, err = f.service.Apply(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if view.Timestamp.Before(firstStamp) || view.Timestamp.Equal(firstStamp) {
		t.Fatal("update did not advance the timestamp")
	}
	rows = f.auditRows(t, resource)
	if len(rows) != 2 || rows[1].Command != models.AuditUpdate {
		t.Fatalf("audit after update = %+v", rows)
	}
	if rows[1].TagUserID == nil || *rows[1].TagUserID != f.userID {
		t.Fatal("audit snapshot missing instance user")
	}
}

func TestApplyFlagExclusive(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	resource := "coll-" + models.NewID()

	first := ApplyInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
		Data:       json.RawMessage(`{}`),
	}
	if _, err := f.service.Apply(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.UserID = f.userID2
	_, err := f.service.Apply(ctx, second)
	if !errors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected conflict for second flag holder, got %v", err)
	}

	// The original holder can still re-apply.
	if _, err := f.service.Apply(ctx, first); err != nil {
		t.Fatal("holder re-apply failed:", err)
	}

	// After the holder removes it, another user may set the flag.
	if err := f.service.Remove(ctx, RemoveInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Apply(ctx, second); err != nil {
		t.Fatalf("flag blocked after removal: %v", err)
	}
}

func TestApplyValidationFailureWritesNothing(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	resource := "coll-" + models.NewID()

	f.validator.fail = &errors.ValidationError{Report: map[string]interface{}{"valid": false}}
	_, err := f.service.Apply(ctx, ApplyInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
		Data:       json.RawMessage(`{"bad": true}`),
	})
	if !errors.Is(err, errors.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}

	var count int64
	if err := f.db.Model(&models.TagInstance{}).
		Where("resource_id = ?", resource).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatal("rejected payload left an instance behind")
	}
	if rows := f.auditRows(t, resource); len(rows) != 0 {
		t.Fatalf("rejected payload left audit rows: %+v", rows)
	}
}

func TestApplyUnknownTag(t *testing.T) {
	f := setup(t, false)

	_, err := f.service.Apply(context.Background(), ApplyInput{
		TagType:    models.TagTypeCollection,
		ResourceID: "coll-" + models.NewID(),
		TagID:      "tag-" + models.NewID(),
		UserID:     f.userID,
		ClientID:   "odp-ui",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveAuditsDelete(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	resource := "coll-" + models.NewID()

	if _, err := f.service.Apply(ctx, ApplyInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
		Data:       json.RawMessage(`{"comment": "x"}`),
	}); err != nil {
		t.Fatal(err)
	}

	rm := RemoveInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
	}
	if err := f.service.Remove(ctx, rm); err != nil {
		t.Fatal(err)
	}

	rows := f.auditRows(t, resource)
	if len(rows) != 2 {
		t.Fatalf("audit rows = %d, want insert + delete", len(rows))
	}
	del := rows[1]
	if del.Command != models.AuditDelete {
		t.Fatalf("command = %s", del.Command)
	}
	if len(del.Data) != 0 {
		t.Fatal("delete audit row must carry no payload")
	}
	if time.Since(del.Timestamp) > time.Minute {
		t.Fatal("delete audit timestamp not set")
	}

	if err := f.service.Remove(ctx, rm); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("double remove: expected not found, got %v", err)
	}
}

func TestInstancesIncludeUserName(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	resource := "coll-" + models.NewID()

	if _, err := f.service.Apply(ctx, ApplyInput{
		TagType:    models.TagTypeCollection,
		ResourceID: resource,
		TagID:      f.tag.ID,
		UserID:     f.userID,
		ClientID:   "odp-ui",
		Data:       json.RawMessage(`{"comment": "x"}`),
	}); err != nil {
		t.Fatal(err)
	}

	views, err := f.service.Instances(ctx, models.TagTypeCollection, resource)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("instances = %d, want 1", len(views))
	}
	if views[0].UserName == "" {
		t.Fatal("user name not joined into the view")
	}
}
