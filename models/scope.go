package models

// ScopeID is an OAuth2 scope identifier of the form domain.resource:action.
type ScopeID string

// Fixed scope catalogue. Scopes are created at bootstrap from this list and
// are immutable once referenced by roles or clients.
const (
	ScopeCatalogueRead ScopeID = "odp.catalogue:read"

	ScopeClientAdmin ScopeID = "odp.client:admin"
	ScopeClientRead  ScopeID = "odp.client:read"

	ScopeCollectionAdmin ScopeID = "odp.collection:admin"
	ScopeCollectionRead  ScopeID = "odp.collection:read"

	ScopeProjectAdmin ScopeID = "odp.project:admin"
	ScopeProjectRead  ScopeID = "odp.project:read"

	ScopeProviderAdmin ScopeID = "odp.provider:admin"
	ScopeProviderRead  ScopeID = "odp.provider:read"

	ScopeRecordCreate ScopeID = "odp.record:create"
	ScopeRecordManage ScopeID = "odp.record:manage"
	ScopeRecordRead   ScopeID = "odp.record:read"
	ScopeRecordTagQC  ScopeID = "odp.record_tag:qc"

	ScopeRoleAdmin ScopeID = "odp.role:admin"
	ScopeRoleRead  ScopeID = "odp.role:read"

	ScopeSchemaRead ScopeID = "odp.schema:read"
	ScopeScopeRead  ScopeID = "odp.scope:read"
	ScopeTagRead    ScopeID = "odp.tag:read"

	ScopeUserAdmin ScopeID = "odp.user:admin"
	ScopeUserRead  ScopeID = "odp.user:read"
)

// ScopeCatalogue lists every scope known to the platform, in catalogue order.
var ScopeCatalogue = []ScopeID{
	ScopeCatalogueRead,
	ScopeClientAdmin,
	ScopeClientRead,
	ScopeCollectionAdmin,
	ScopeCollectionRead,
	ScopeProjectAdmin,
	ScopeProjectRead,
	ScopeProviderAdmin,
	ScopeProviderRead,
	ScopeRecordCreate,
	ScopeRecordManage,
	ScopeRecordRead,
	ScopeRecordTagQC,
	ScopeRoleAdmin,
	ScopeRoleRead,
	ScopeSchemaRead,
	ScopeScopeRead,
	ScopeTagRead,
	ScopeUserAdmin,
	ScopeUserRead,
}

// Scope is the persisted form of a catalogue entry. The scope identifier is
// the primary key.
type Scope struct {
	ID string `gorm:"column:id;primaryKey" json:"id"`
}

func (Scope) TableName() string { return "scopes" }
