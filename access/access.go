// Package access computes the effective set of OAuth2 scopes, and the
// providers each scope applies to, for a (user, client) pair. Resolution is
// a pure function over explicit inputs so it can be tested without a
// database; the Service wires it to the stores and resolves fresh on every
// request.
package access

import (
	"encoding/json"
	"sort"
)

// ProviderSet is the applicability of a granted scope: either the wildcard
// (all providers, platform-wide) or a limited set of provider ids.
type ProviderSet struct {
	wildcard bool
	ids      map[string]struct{}
}

// Wildcard returns the all-providers set.
func Wildcard() ProviderSet {
	return ProviderSet{wildcard: true}
}

// Providers returns a set limited to the given provider ids.
func Providers(ids ...string) ProviderSet {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return ProviderSet{ids: set}
}

// IsWildcard reports whether the set covers all providers.
func (p ProviderSet) IsWildcard() bool { return p.wildcard }

// Contains reports whether the given provider is covered.
func (p ProviderSet) Contains(providerID string) bool {
	if p.wildcard {
		return true
	}
	_, ok := p.ids[providerID]
	return ok
}

// IDs returns the limited provider ids in sorted order, or nil for the
// wildcard set.
func (p ProviderSet) IDs() []string {
	if p.wildcard {
		return nil
	}
	ids := make([]string, 0, len(p.ids))
	for id := range p.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p ProviderSet) add(providerID string) ProviderSet {
	if p.wildcard {
		return p
	}
	if p.ids == nil {
		p.ids = make(map[string]struct{})
	}
	p.ids[providerID] = struct{}{}
	return p
}

// MarshalJSON renders the wildcard as "*" and a limited set as a sorted
// array, matching the wire form embedded in access tokens.
func (p ProviderSet) MarshalJSON() ([]byte, error) {
	if p.wildcard {
		return json.Marshal("*")
	}
	return json.Marshal(p.IDs())
}

// UnmarshalJSON accepts "*" or an array of provider ids.
func (p *ProviderSet) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil && s == "*" {
		*p = Wildcard()
		return nil
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*p = Providers(ids...)
	return nil
}

// UserAccess is the resolved scope -> provider-set mapping for one
// (user, client) pair.
type UserAccess struct {
	Scopes map[string]ProviderSet `json:"scopes"`
}

// Allows returns the provider applicability of a scope and whether the scope
// is granted at all.
func (a UserAccess) Allows(scopeID string) (ProviderSet, bool) {
	p, ok := a.Scopes[scopeID]
	return p, ok
}

// ScopeIDs returns the granted scope ids in sorted order.
func (a UserAccess) ScopeIDs() []string {
	ids := make([]string, 0, len(a.Scopes))
	for id := range a.Scopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WildcardAccess grants every listed scope with wildcard applicability.
// Used for superusers, which bypass role resolution entirely.
func WildcardAccess(scopeIDs []string) UserAccess {
	scopes := make(map[string]ProviderSet, len(scopeIDs))
	for _, id := range scopeIDs {
		scopes[id] = Wildcard()
	}
	return UserAccess{Scopes: scopes}
}
