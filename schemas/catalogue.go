// Package schemas resolves schema URIs to JSON-schema validators.
//
// Schema documents are read from a local catalogue directory keyed by URI
// path, with an in-memory buntdb cache in front so repeated tag mutations do
// not re-read and re-compile the same document. Remote http(s) URIs are
// fetched once and cached with a TTL.
package schemas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/buntdb"
	"github.com/xeipuuv/gojsonschema"

	"github.com/odp-platform/odp/errors"
)

const remoteTTL = 15 * time.Minute

type Catalogue struct {
	dir    string
	client *http.Client

	cache *buntdb.DB

	mu       sync.Mutex
	compiled map[string]*gojsonschema.Schema
}

// NewCatalogue opens a catalogue over the given schema directory.
func NewCatalogue(dir string) (*Catalogue, error) {
	cache, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, err
	}
	return &Catalogue{
		dir:      dir,
		client:   &http.Client{Timeout: 30 * time.Second},
		cache:    cache,
		compiled: make(map[string]*gojsonschema.Schema),
	}, nil
}

// Close releases the document cache.
func (c *Catalogue) Close() error { return c.cache.Close() }

// Validate checks a payload against the schema identified by uri. A failed
// validation returns *errors.ValidationError whose report lists every
// violation with its field and description.
func (c *Catalogue) Validate(ctx context.Context, uri string, payload json.RawMessage) error {
	schema, err := c.resolve(ctx, uri)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.Unprocessablef("invalid payload: %v", err)
	}
	if result.Valid() {
		return nil
	}
	report := make([]map[string]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		report = append(report, map[string]string{
			"instanceLocation": e.Field(),
			"keyword":          e.Type(),
			"error":            e.Description(),
		})
	}
	return &errors.ValidationError{Report: map[string]interface{}{
		"valid":  false,
		"errors": report,
	}}
}

// resolve returns the compiled schema for a URI, compiling and caching on
// first use.
func (c *Catalogue) resolve(ctx context.Context, uri string) (*gojsonschema.Schema, error) {
	c.mu.Lock()
	if schema, ok := c.compiled[uri]; ok {
		c.mu.Unlock()
		return schema, nil
	}
	c.mu.Unlock()

	doc, err := c.document(ctx, uri)
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, errors.Unprocessablef("schema %s does not compile: %v", uri, err)
	}

	c.mu.Lock()
	c.compiled[uri] = schema
	c.mu.Unlock()
	return schema, nil
}

func (c *Catalogue) document(ctx context.Context, uri string) ([]byte, error) {
	var cached string
	err := c.cache.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(uri)
		if err != nil {
			return err
		}
		cached = v
		return nil
	})
	if err == nil {
		return []byte(cached), nil
	}
	if err != buntdb.ErrNotFound {
		return nil, err
	}

	doc, remote, err := c.load(ctx, uri)
	if err != nil {
		return nil, err
	}

	err = c.cache.Update(func(tx *buntdb.Tx) error {
		opts := &buntdb.SetOptions{}
		if remote {
			opts.Expires = true
			opts.TTL = remoteTTL
		}
		_, _, err := tx.Set(uri, string(doc), opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// load reads a schema document from the catalogue directory, or fetches it
// when the URI is a remote http(s) reference with no local copy.
func (c *Catalogue) load(ctx context.Context, uri string) ([]byte, bool, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, false, errors.Unprocessablef("invalid schema uri %s", uri)
	}

	rel := strings.TrimPrefix(u.Path, "/")
	if rel != "" && c.dir != "" {
		path := filepath.Join(c.dir, filepath.FromSlash(rel))
		if data, err := os.ReadFile(path); err == nil {
			return data, false, nil
		}
	}

	if u.Scheme == "http" || u.Scheme == "https" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, false, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, false, fmt.Errorf("fetch schema %s: %w", uri, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, false, errors.Unprocessablef("schema %s unavailable (%d)", uri, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}

	return nil, false, errors.Unprocessablef("unknown schema %s", uri)
}
