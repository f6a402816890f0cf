package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
	"github.com/odp-platform/odp/tagging"
)

type recordRequest struct {
	DOI          *string         `json:"doi"`
	CollectionID string          `json:"collection_id"`
	SchemaURI    string          `json:"schema_uri"`
	Metadata     json.RawMessage `json:"metadata"`
}

type recordResponse struct {
	models.Record
	Tags []tagging.InstanceView `json:"tags"`
}

func (s *Server) recordResponse(c *gin.Context, r models.Record) (recordResponse, error) {
	tags, err := s.Tags.Instances(c.Request.Context(), models.TagTypeRecord, r.ID)
	if err != nil {
		return recordResponse{}, err
	}
	return recordResponse{Record: r, Tags: tags}, nil
}

// recordProvider resolves a record's provider dimension, which is the
// provider owning its collection.
func (s *Server) recordProvider(c *gin.Context, recordID string) (string, error) {
	r, err := s.Records.Get(c.Request.Context(), recordID)
	if err != nil {
		return "", err
	}
	return s.Records.CollectionProvider(c.Request.Context(), r.CollectionID)
}

func (s *Server) HandleListRecords(c *gin.Context) {
	auth := authorized(c)
	records, total, err := s.Records.List(c.Request.Context(), parsePager(c), providerFilter(auth))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]recordResponse, 0, len(records))
	for _, r := range records {
		resp, err := s.recordResponse(c, r)
		if err != nil {
			writeError(c, err)
			return
		}
		items = append(items, resp)
	}
	c.JSON(http.StatusOK, store.Page{Items: items, Total: total})
}

func (s *Server) HandleGetRecord(c *gin.Context) {
	auth := authorized(c)
	r, err := s.Records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	providerID, err := s.Records.CollectionProvider(c.Request.Context(), r.CollectionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, providerID) {
		return
	}
	resp, err := s.recordResponse(c, r)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) HandleCreateRecord(c *gin.Context) {
	auth := authorized(c)
	var req recordRequest
	if !bindJSON(c, &req) {
		return
	}
	providerID, err := s.Records.CollectionProvider(c.Request.Context(), req.CollectionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, providerID) {
		return
	}
	r, err := s.Records.Create(c.Request.Context(), models.Record{
		DOI:          req.DOI,
		CollectionID: req.CollectionID,
		SchemaURI:    req.SchemaURI,
		Metadata:     req.Metadata,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) HandleUpdateRecord(c *gin.Context) {
	auth := authorized(c)
	var req recordRequest
	if !bindJSON(c, &req) {
		return
	}
	providerID, err := s.recordProvider(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, providerID) {
		return
	}
	err = s.Records.Update(c.Request.Context(), models.Record{
		ID:        c.Param("id"),
		DOI:       req.DOI,
		SchemaURI: req.SchemaURI,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleDeleteRecord(c *gin.Context) {
	auth := authorized(c)
	providerID, err := s.recordProvider(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireProvider(c, auth, providerID) {
		return
	}
	if err := s.Records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) HandleTagRecord(c *gin.Context) {
	s.applyTag(c, models.TagTypeRecord, func(resourceID string) (string, error) {
		return s.recordProvider(c, resourceID)
	})
}

func (s *Server) HandleUntagRecord(c *gin.Context) {
	s.removeTag(c, models.TagTypeRecord, func(resourceID string) (string, error) {
		return s.recordProvider(c, resourceID)
	})
}
