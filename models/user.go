package models

import "time"

// User is a platform user account. Authentication is handled by the external
// identity provider; this row carries authorization state only.
type User struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;uniqueIndex" json:"email"`
	Name      string    `gorm:"column:name" json:"name"`
	Verified  bool      `gorm:"column:verified" json:"verified"`
	Active    bool      `gorm:"column:active" json:"active"`
	Superuser bool      `gorm:"column:superuser" json:"superuser"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	Roles []Role `gorm:"many2many:user_roles;joinForeignKey:user_id;joinReferences:role_id" json:"-"`
}

func (User) TableName() string { return "users" }

// RoleIDs returns the user's assigned role identifiers.
func (u User) RoleIDs() []string {
	ids := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}
