package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/store"
)

// writeError maps a taxonomy error to its status code and uniform
// {"detail": ...} body. Unrecognized errors are logged and surface as a
// plain 500.
func writeError(c *gin.Context, err error) {
	status := errors.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": errors.Detail(err)})
}

// parsePager reads list pagination parameters (sort, skip, limit).
func parsePager(c *gin.Context) store.Pager {
	skip, _ := strconv.Atoi(c.Query("skip"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return store.Pager{
		Sort:  c.Query("sort"),
		Skip:  skip,
		Limit: limit,
	}
}

// bindJSON decodes the request body, mapping malformed JSON to 422 in the
// uniform error shape.
func bindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return false
	}
	return true
}
