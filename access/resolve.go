package access

// RoleInput is the slice of role state the resolver needs: the optional
// provider binding and the granted scope ids.
type RoleInput struct {
	ID         string
	ProviderID *string
	ScopeIDs   []string
}

// ClientInput is the client's optional provider binding and its permitted
// scope ceiling.
type ClientInput struct {
	ID         string
	ProviderID *string
	ScopeIDs   []string
}

// Resolve computes the effective scope -> provider-set mapping for a user's
// roles working within a client.
//
// A scope is granted platform-wide ('*') when it is shared between a
// platform role (no provider) and a platform client (no provider). In every
// other combination the grant is limited to a provider: the role's provider
// when set, else the client's. A provider-bound role used with a client
// bound to a different provider contributes nothing. Wildcard grants
// dominate: once a scope is granted platform-wide, provider-limited grants
// of the same scope are discarded. Limited grants for a scope accumulate
// across roles as a set union. The result is independent of role order.
func Resolve(roles []RoleInput, client ClientInput) UserAccess {
	clientScopes := make(map[string]struct{}, len(client.ScopeIDs))
	for _, id := range client.ScopeIDs {
		clientScopes[id] = struct{}{}
	}

	scopes := make(map[string]ProviderSet)

	if client.ProviderID == nil {
		for _, role := range roles {
			if role.ProviderID != nil {
				continue
			}
			for _, scopeID := range role.ScopeIDs {
				if _, ok := clientScopes[scopeID]; ok {
					scopes[scopeID] = Wildcard()
				}
			}
		}
	}

	for _, role := range roles {
		if role.ProviderID == nil && client.ProviderID == nil {
			continue
		}
		if role.ProviderID != nil && client.ProviderID != nil && *role.ProviderID != *client.ProviderID {
			continue
		}
		grantProvider := client.ProviderID
		if role.ProviderID != nil {
			grantProvider = role.ProviderID
		}
		for _, scopeID := range role.ScopeIDs {
			if existing, ok := scopes[scopeID]; ok && existing.IsWildcard() {
				continue
			}
			if _, ok := clientScopes[scopeID]; !ok {
				continue
			}
			scopes[scopeID] = scopes[scopeID].add(*grantProvider)
		}
	}

	return UserAccess{Scopes: scopes}
}
