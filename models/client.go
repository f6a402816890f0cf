package models

import "time"

// Client is an OAuth2 client application. Its scope set is the ceiling of
// what any user of the client may ever be granted. A client with a provider
// is bound to that tenant; one without is a platform client.
type Client struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name" json:"name"`
	SecretHash string    `gorm:"column:secret_hash" json:"-"`
	ProviderID *string   `gorm:"column:provider_id;index" json:"provider_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`

	Scopes []Scope `gorm:"many2many:client_scopes;joinForeignKey:client_id;joinReferences:scope_id" json:"-"`
}

func (Client) TableName() string { return "clients" }

// ClientScope links a client to a permitted scope.
type ClientScope struct {
	ClientID string `gorm:"column:client_id;primaryKey"`
	ScopeID  string `gorm:"column:scope_id;primaryKey"`
}

func (ClientScope) TableName() string { return "client_scopes" }

// ScopeIDs returns the client's permitted scope identifiers.
func (c Client) ScopeIDs() []string {
	ids := make([]string, 0, len(c.Scopes))
	for _, s := range c.Scopes {
		ids = append(ids, s.ID)
	}
	return ids
}
