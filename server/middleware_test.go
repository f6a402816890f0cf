package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"

	"github.com/odp-platform/odp/access"
	"github.com/odp-platform/odp/errors"
	"github.com/odp-platform/odp/identity"
	"github.com/odp-platform/odp/models"
)

type fakeVerifier struct {
	id  identity.Identity
	err error
}

func (f fakeVerifier) Verify(ctx context.Context, raw string) (identity.Identity, error) {
	return f.id, f.err
}

type fakeResolver struct {
	access access.UserAccess
	err    error
}

func (f fakeResolver) Resolve(ctx context.Context, userID, clientID string) (access.UserAccess, error) {
	return f.access, f.err
}

// newGateRouter builds a minimal router exercising the authorization gate:
// a filtered list, a provider-checked get, and a wildcard-only admin route.
func newGateRouter(verifier TokenVerifier, resolver AccessResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{Verifier: verifier, Resolver: resolver}

	r := gin.New()
	v1 := r.Group("/v1", s.Authenticate())
	v1.GET("/things", s.RequireScope(models.ScopeCollectionRead), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"filter": providerFilter(authorized(c))})
	})
	v1.GET("/things/:id", s.RequireScope(models.ScopeCollectionRead), func(c *gin.Context) {
		auth := authorized(c)
		if !requireProvider(c, auth, c.Param("id")) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	v1.POST("/admin", s.RequireScope(models.ScopeProviderAdmin), func(c *gin.Context) {
		if !requireWildcard(c, authorized(c)) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func grant(scopes map[string]access.ProviderSet) access.UserAccess {
	return access.UserAccess{Scopes: scopes}
}

func TestAuthenticate(t *testing.T) {
	router := newGateRouter(
		fakeVerifier{id: identity.Identity{UserID: "u1", ClientID: "c1"}},
		fakeResolver{access: grant(nil)},
	)
	e := httpexpect.Default(t, httptest.NewServer(router).URL)

	t.Run("MissingHeader", func(t *testing.T) {
		e.GET("/v1/things").
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().ContainsKey("detail")
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		e.GET("/v1/things").
			WithHeader("Authorization", "Basic abc").
			Expect().
			Status(http.StatusUnauthorized)
	})

	t.Run("RejectedToken", func(t *testing.T) {
		bad := newGateRouter(fakeVerifier{err: errors.New("bad token")}, fakeResolver{})
		be := httpexpect.Default(t, httptest.NewServer(bad).URL)
		be.GET("/v1/things").
			WithHeader("Authorization", "Bearer nope").
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().HasValue("detail", "invalid access token")
	})
}

func TestRequireScope(t *testing.T) {
	id := identity.Identity{UserID: "u1", ClientID: "c1"}

	t.Run("ScopeAbsent", func(t *testing.T) {
		router := newGateRouter(fakeVerifier{id: id}, fakeResolver{access: grant(map[string]access.ProviderSet{
			string(models.ScopeRecordRead): access.Wildcard(),
		})})
		e := httpexpect.Default(t, httptest.NewServer(router).URL)
		e.GET("/v1/things").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().HasValue("detail", "forbidden")
	})

	t.Run("ResolverFailureIsForbiddenNotNotFound", func(t *testing.T) {
		router := newGateRouter(fakeVerifier{id: id}, fakeResolver{err: errors.NotFoundf("user")})
		e := httpexpect.Default(t, httptest.NewServer(router).URL)
		e.GET("/v1/things").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().HasValue("detail", "forbidden")
	})

	t.Run("WildcardGrant", func(t *testing.T) {
		router := newGateRouter(fakeVerifier{id: id}, fakeResolver{access: grant(map[string]access.ProviderSet{
			string(models.ScopeCollectionRead): access.Wildcard(),
			string(models.ScopeProviderAdmin):  access.Wildcard(),
		})})
		e := httpexpect.Default(t, httptest.NewServer(router).URL)

		// Wildcard listing is unrestricted: nil filter.
		e.GET("/v1/things").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusOK).
			JSON().Object().HasValue("filter", nil)

		e.GET("/v1/things/any-provider").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusOK)

		e.POST("/v1/admin").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusOK)
	})

	t.Run("LimitedGrant", func(t *testing.T) {
		router := newGateRouter(fakeVerifier{id: id}, fakeResolver{access: grant(map[string]access.ProviderSet{
			string(models.ScopeCollectionRead): access.Providers("saeon"),
			string(models.ScopeProviderAdmin):  access.Providers("saeon"),
		})})
		e := httpexpect.Default(t, httptest.NewServer(router).URL)

		// Listing is rewritten to a provider filter, not rejected.
		e.GET("/v1/things").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusOK).
			JSON().Object().Value("filter").Array().ConsistsOf("saeon")

		// Matching provider passes, any other is a plain 403.
		e.GET("/v1/things/saeon").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusOK)
		e.GET("/v1/things/other").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().HasValue("detail", "forbidden")

		// Provider-dimensionless operations need the wildcard.
		e.POST("/v1/admin").
			WithHeader("Authorization", "Bearer t").
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().HasValue("detail", "forbidden")
	})
}
