package schemas

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/odp-platform/odp/errors"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"comment": {"type": "string"},
		"pass_":   {"type": "boolean"}
	},
	"required": ["pass_"],
	"additionalProperties": false
}`

func newTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema", "tag", "record", "qc")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(testSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewCatalogue(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestValidateLocalSchema(t *testing.T) {
	c := newTestCatalogue(t)
	uri := "https://odp.saeon.ac.za/schema/tag/record/qc"

	err := c.Validate(context.Background(), uri, json.RawMessage(`{"pass_": true, "comment": "ok"}`))
	if err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}

func TestValidateFailureCarriesReport(t *testing.T) {
	c := newTestCatalogue(t)
	uri := "https://odp.saeon.ac.za/schema/tag/record/qc"

	err := c.Validate(context.Background(), uri, json.RawMessage(`{"comment": 7}`))
	if err == nil {
		t.Fatal("invalid payload accepted")
	}

	var verr *errors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	report, ok := verr.Report.(map[string]interface{})
	if !ok {
		t.Fatalf("report shape: %T", verr.Report)
	}
	if report["valid"] != false {
		t.Fatal("report must mark the payload invalid")
	}
	if errs, ok := report["errors"].([]map[string]string); !ok || len(errs) == 0 {
		t.Fatalf("report must list violations, got %v", report["errors"])
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	c := newTestCatalogue(t)

	err := c.Validate(context.Background(), "urn:no-such-schema", json.RawMessage(`{}`))
	if !errors.Is(err, errors.ErrUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
}

func TestValidateCachesDocument(t *testing.T) {
	c := newTestCatalogue(t)
	uri := "https://odp.saeon.ac.za/schema/tag/record/qc"
	ctx := context.Background()

	if err := c.Validate(ctx, uri, json.RawMessage(`{"pass_": false}`)); err != nil {
		t.Fatal(err)
	}

	// Remove the file; the compiled schema must still serve.
	if err := os.RemoveAll(c.dir); err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(ctx, uri, json.RawMessage(`{"pass_": true}`)); err != nil {
		t.Fatalf("cached schema not used: %v", err)
	}
}
