package access

import (
	"context"

	"github.com/odp-platform/odp/models"
	"github.com/odp-platform/odp/store"
)

// Service resolves access from persisted role/scope/client state. Results
// are computed fresh on every call: role and scope assignments can change
// between requests and there is no invalidation mechanism, so nothing here
// is cached.
type Service struct {
	users   *store.UserStore
	clients *store.ClientStore
}

func NewService(users *store.UserStore, clients *store.ClientStore) *Service {
	return &Service{users: users, clients: clients}
}

// Resolve computes the effective access for a (user, client) pair. Missing
// user or client surfaces as NotFound. Inactive users resolve to empty
// access. Superusers bypass role resolution and receive wildcard access to
// the full scope catalogue.
func (s *Service) Resolve(ctx context.Context, userID, clientID string) (UserAccess, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return UserAccess{}, err
	}
	client, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return UserAccess{}, err
	}

	// A deactivated user keeps their identity but loses every grant.
	if !user.Active {
		return UserAccess{Scopes: map[string]ProviderSet{}}, nil
	}

	if user.Superuser {
		scopeIDs := make([]string, 0, len(models.ScopeCatalogue))
		for _, id := range models.ScopeCatalogue {
			scopeIDs = append(scopeIDs, string(id))
		}
		return WildcardAccess(scopeIDs), nil
	}

	roles := make([]RoleInput, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, RoleInput{
			ID:         r.ID,
			ProviderID: r.ProviderID,
			ScopeIDs:   r.ScopeIDs(),
		})
	}
	return Resolve(roles, ClientInput{
		ID:         client.ID,
		ProviderID: client.ProviderID,
		ScopeIDs:   client.ScopeIDs(),
	}), nil
}
