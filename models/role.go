package models

import "time"

// Role bundles scopes for assignment to users. A role with a provider only
// grants its scopes within that provider's resources; a role without one is
// platform-wide.
type Role struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	ProviderID *string   `gorm:"column:provider_id;index" json:"provider_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`

	Scopes []Scope `gorm:"many2many:role_scopes;joinForeignKey:role_id;joinReferences:scope_id" json:"-"`
}

func (Role) TableName() string { return "roles" }

// RoleScope links a role to a granted scope.
type RoleScope struct {
	RoleID  string `gorm:"column:role_id;primaryKey"`
	ScopeID string `gorm:"column:scope_id;primaryKey"`
}

func (RoleScope) TableName() string { return "role_scopes" }

// UserRole links a user to an assigned role.
type UserRole struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	RoleID string `gorm:"column:role_id;primaryKey"`
}

func (UserRole) TableName() string { return "user_roles" }

// ScopeIDs returns the role's granted scope identifiers.
func (r Role) ScopeIDs() []string {
	ids := make([]string, 0, len(r.Scopes))
	for _, s := range r.Scopes {
		ids = append(ids, s.ID)
	}
	return ids
}
