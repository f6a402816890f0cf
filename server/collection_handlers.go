package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/doi"
	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
	"github.com/odp-platform/odp/tagging"
)

type collectionRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DOIKey     *string `json:"doi_key"`
	ProviderID string  `json:"provider_id"`
}

type collectionResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	DOIKey      *string                `json:"doi_key"`
	ProviderID  string                 `json:"provider_id"`
	ProjectIDs  []string               `json:"project_ids"`
	RecordCount int64                  `json:"record_count"`
	Tags        []tagging.InstanceView `json:"tags"`
}

func (s *Server) collectionResponse(c *gin.Context, view store.CollectionView) (collectionResponse, error) {
	tags, err := s.Tags.Instances(c.Request.Context(), models.TagTypeCollection, view.ID)
	if err != nil {
		return collectionResponse{}, err
	}
	return collectionResponse{
		ID:          view.ID,
		Name:        view.Name,
		DOIKey:      view.DOIKey,
		ProviderID:  view.ProviderID,
		ProjectIDs:  view.ProjectIDs(),
		RecordCount: view.RecordCount,
		Tags:        tags,
	}, nil
}

func (s *Server) HandleListCollections(c *gin.Context) {
	auth := authorized(c)
	views, total, err := s.Collections.List(c.Request.Context(), parsePager(c), providerFilter(auth))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]collectionResponse, 0, len(views))
	for _, view := range views {
		resp, err := s.collectionResponse(c, view)
		if err != nil {
			writeError(c, err)
			return
		}
		items = append(items, resp)
	}
	c.JSON(http.StatusOK, store.Page{Items: items, Total: total})
}

func (s *Server) HandleGetCollection(c *gin.Context) {
	auth := authorized(c)
	view, err := s.Collections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, view.ProviderID) {
		return
	}
	resp, err := s.collectionResponse(c, view)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) HandleCreateCollection(c *gin.Context) {
	auth := authorized(c)
	var req collectionRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireProvider(c, auth, req.ProviderID) {
		return
	}
	created, err := s.Collections.Create(c.Request.Context(), models.Collection{
		ID:         req.ID,
		Name:       req.Name,
		DOIKey:     req.DOIKey,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) HandleUpdateCollection(c *gin.Context) {
	auth := authorized(c)
	var req collectionRequest
	if !bindJSON(c, &req) {
		return
	}
	// Both the current and the target provider must be within the grant, so
	// a limited caller can neither steal nor donate a collection.
	existing, err := s.Collections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, existing.ProviderID) {
		return
	}
	if !requireProvider(c, auth, req.ProviderID) {
		return
	}
	err = s.Collections.Update(c.Request.Context(), models.Collection{
		ID:         c.Param("id"),
		Name:       req.Name,
		DOIKey:     req.DOIKey,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleDeleteCollection(c *gin.Context) {
	auth := authorized(c)
	view, err := s.Collections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, view.ProviderID) {
		return
	}
	if err := s.Collections.Delete(c.Request.Context(), view.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type tagInstanceRequest struct {
	TagID string          `json:"tag_id"`
	Data  json.RawMessage `json:"data"`
}

func (s *Server) HandleTagCollection(c *gin.Context) {
	s.applyTag(c, models.TagTypeCollection, func(resourceID string) (string, error) {
		view, err := s.Collections.Get(c.Request.Context(), resourceID)
		if err != nil {
			return "", err
		}
		return view.ProviderID, nil
	})
}

func (s *Server) HandleUntagCollection(c *gin.Context) {
	s.removeTag(c, models.TagTypeCollection, func(resourceID string) (string, error) {
		view, err := s.Collections.Get(c.Request.Context(), resourceID)
		if err != nil {
			return "", err
		}
		return view.ProviderID, nil
	})
}

// applyTag runs the shared tag-upsert flow: resolve the resource and check
// its provider against the caller's grant, then hand over to the mutation
// protocol.
func (s *Server) applyTag(c *gin.Context, tagType models.TagType, provider func(string) (string, error)) {
	auth := authorized(c)
	var req tagInstanceRequest
	if !bindJSON(c, &req) {
		return
	}
	providerID, err := provider(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, providerID) {
		return
	}
	view, err := s.Tags.Apply(c.Request.Context(), tagging.ApplyInput{
		TagType:    tagType,
		ResourceID: c.Param("id"),
		TagID:      req.TagID,
		UserID:     auth.UserID,
		ClientID:   auth.ClientID,
		Data:       req.Data,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) removeTag(c *gin.Context, tagType models.TagType, provider func(string) (string, error)) {
	auth := authorized(c)
	providerID, err := provider(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, providerID) {
		return
	}
	err = s.Tags.Remove(c.Request.Context(), tagging.RemoveInput{
		TagType:    tagType,
		ResourceID: c.Param("id"),
		TagID:      c.Param("tagId"),
		UserID:     auth.UserID,
		ClientID:   auth.ClientID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleNewCollectionDOI returns a candidate DOI under the collection's DOI
// key. The candidate is advisory: nothing reserves it before a record is
// created with it.
func (s *Server) HandleNewCollectionDOI(c *gin.Context) {
	auth := authorized(c)
	view, err := s.Collections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, view.ProviderID) {
		return
	}
	if view.DOIKey == nil || *view.DOIKey == "" {
		writeError(c, errors.Unprocessablef("the collection does not have a DOI key"))
		return
	}
	candidate, err := doi.New(c.Request.Context(), s.Config.DOI.Prefix, *view.DOIKey, s.Records.DOITaken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}
