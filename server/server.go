// Package server exposes the platform API over HTTP: resource CRUD with
// scope/provider authorization, tag mutation endpoints and DOI allocation.
package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/odp-platform/odp/access"
	"github.com/odp-platform/odp/identity"
	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/schemas"
	"github.com/odp-platform/odp/store"
	"github.com/odp-platform/odp/tagging"
)

// TokenVerifier authenticates a bearer token to a (user, client) pair.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (identity.Identity, error)
}

// AccessResolver computes effective access for a (user, client) pair.
type AccessResolver interface {
	Resolve(ctx context.Context, userID, clientID string) (access.UserAccess, error)
}

// Server wires the stores and services behind the HTTP handlers.
type Server struct {
	Config   *AppConfig
	Verifier TokenVerifier
	Resolver AccessResolver

	Providers   *store.ProviderStore
	Collections *store.CollectionStore
	Projects    *store.ProjectStore
	Clients     *store.ClientStore
	Records     *store.RecordStore
	Roles       *store.RoleStore
	Scopes      *store.ScopeStore
	Users       *store.UserStore

	Tags *tagging.Service
}

// NewServer builds a fully wired server over one database handle.
func NewServer(ctx context.Context, cfg *AppConfig, db *gorm.DB) (*Server, error) {
	catalogue, err := schemas.NewCatalogue(cfg.Schemas.Dir)
	if err != nil {
		return nil, err
	}

	users := store.NewUserStore(db)
	clients := store.NewClientStore(db)

	return &Server{
		Config:   cfg,
		Verifier: identity.NewVerifier(ctx, identity.Config{
			JWTSecret:        cfg.Identity.JWTSecret,
			IntrospectionURL: cfg.Identity.IntrospectionURL,
			TokenURL:         cfg.Identity.TokenURL,
			ClientID:         cfg.Identity.ClientID,
			ClientSecret:     cfg.Identity.ClientSecret,
		}),
		Resolver:    access.NewService(users, clients),
		Providers:   store.NewProviderStore(db),
		Collections: store.NewCollectionStore(db),
		Projects:    store.NewProjectStore(db),
		Clients:     clients,
		Records:     store.NewRecordStore(db),
		Roles:       store.NewRoleStore(db),
		Scopes:      store.NewScopeStore(db),
		Users:       users,
		Tags:        tagging.NewService(db, catalogue),
	}, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	v1 := r.Group("/v1", s.Authenticate())

	v1.GET("/providers", s.RequireScope(models.ScopeProviderRead), s.HandleListProviders)
	v1.GET("/providers/:id", s.RequireScope(models.ScopeProviderRead), s.HandleGetProvider)
	v1.POST("/providers", s.RequireScope(models.ScopeProviderAdmin), s.HandleCreateProvider)
	v1.PUT("/providers/:id", s.RequireScope(models.ScopeProviderAdmin), s.HandleUpdateProvider)
	v1.DELETE("/providers/:id", s.RequireScope(models.ScopeProviderAdmin), s.HandleDeleteProvider)

	v1.GET("/collections", s.RequireScope(models.ScopeCollectionRead), s.HandleListCollections)
	v1.GET("/collections/:id", s.RequireScope(models.ScopeCollectionRead), s.HandleGetCollection)
	v1.POST("/collections", s.RequireScope(models.ScopeCollectionAdmin), s.HandleCreateCollection)
	v1.PUT("/collections/:id", s.RequireScope(models.ScopeCollectionAdmin), s.HandleUpdateCollection)
	v1.DELETE("/collections/:id", s.RequireScope(models.ScopeCollectionAdmin), s.HandleDeleteCollection)
	v1.POST("/collections/:id/tag", s.RequireScope(models.ScopeCollectionAdmin), s.HandleTagCollection)
	v1.DELETE("/collections/:id/tag/:tagId", s.RequireScope(models.ScopeCollectionAdmin), s.HandleUntagCollection)
	v1.GET("/collections/:id/doi/new", s.RequireScope(models.ScopeCollectionRead), s.HandleNewCollectionDOI)

	v1.GET("/projects", s.RequireScope(models.ScopeProjectRead), s.HandleListProjects)
	v1.GET("/projects/:id", s.RequireScope(models.ScopeProjectRead), s.HandleGetProject)
	v1.POST("/projects", s.RequireScope(models.ScopeProjectAdmin), s.HandleCreateProject)
	v1.PUT("/projects/:id", s.RequireScope(models.ScopeProjectAdmin), s.HandleUpdateProject)
	v1.DELETE("/projects/:id", s.RequireScope(models.ScopeProjectAdmin), s.HandleDeleteProject)

	v1.GET("/clients", s.RequireScope(models.ScopeClientRead), s.HandleListClients)
	v1.GET("/clients/:id", s.RequireScope(models.ScopeClientRead), s.HandleGetClient)
	v1.POST("/clients", s.RequireScope(models.ScopeClientAdmin), s.HandleCreateClient)
	v1.PUT("/clients/:id", s.RequireScope(models.ScopeClientAdmin), s.HandleUpdateClient)
	v1.DELETE("/clients/:id", s.RequireScope(models.ScopeClientAdmin), s.HandleDeleteClient)

	v1.GET("/records", s.RequireScope(models.ScopeRecordRead), s.HandleListRecords)
	v1.GET("/records/:id", s.RequireScope(models.ScopeRecordRead), s.HandleGetRecord)
	v1.POST("/records", s.RequireScope(models.ScopeRecordCreate), s.HandleCreateRecord)
	v1.PUT("/records/:id", s.RequireScope(models.ScopeRecordManage), s.HandleUpdateRecord)
	v1.DELETE("/records/:id", s.RequireScope(models.ScopeRecordManage), s.HandleDeleteRecord)
	v1.POST("/records/:id/tag", s.RequireScope(models.ScopeRecordTagQC), s.HandleTagRecord)
	v1.DELETE("/records/:id/tag/:tagId", s.RequireScope(models.ScopeRecordTagQC), s.HandleUntagRecord)

	v1.GET("/roles", s.RequireScope(models.ScopeRoleRead), s.HandleListRoles)
	v1.GET("/roles/:id", s.RequireScope(models.ScopeRoleRead), s.HandleGetRole)
	v1.POST("/roles", s.RequireScope(models.ScopeRoleAdmin), s.HandleCreateRole)
	v1.PUT("/roles/:id", s.RequireScope(models.ScopeRoleAdmin), s.HandleUpdateRole)
	v1.DELETE("/roles/:id", s.RequireScope(models.ScopeRoleAdmin), s.HandleDeleteRole)

	v1.GET("/scopes", s.RequireScope(models.ScopeScopeRead), s.HandleListScopes)
	v1.GET("/scopes/:id", s.RequireScope(models.ScopeScopeRead), s.HandleGetScope)

	v1.GET("/users", s.RequireScope(models.ScopeUserRead), s.HandleListUsers)
	v1.GET("/users/:id", s.RequireScope(models.ScopeUserRead), s.HandleGetUser)
	v1.PUT("/users/:id", s.RequireScope(models.ScopeUserAdmin), s.HandleUpdateUser)
	v1.DELETE("/users/:id", s.RequireScope(models.ScopeUserAdmin), s.HandleDeleteUser)

	return r
}
