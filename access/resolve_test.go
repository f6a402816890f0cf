package access

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func strptr(s string) *string { return &s }

func TestResolve(t *testing.T) {
	Convey("Given a platform role used with a platform client", t, func() {
		roles := []RoleInput{{
			ID:       "admin",
			ScopeIDs: []string{"odp.collection:read", "odp.collection:admin"},
		}}
		client := ClientInput{
			ID:       "odp-ui",
			ScopeIDs: []string{"odp.collection:read", "odp.collection:admin"},
		}

		Convey("every shared scope is granted platform-wide", func() {
			a := Resolve(roles, client)
			So(a.ScopeIDs(), ShouldResemble, []string{"odp.collection:admin", "odp.collection:read"})
			ps, ok := a.Allows("odp.collection:read")
			So(ok, ShouldBeTrue)
			So(ps.IsWildcard(), ShouldBeTrue)
		})

		Convey("scopes outside the client ceiling are not granted", func() {
			client.ScopeIDs = []string{"odp.collection:read"}
			a := Resolve(roles, client)
			_, ok := a.Allows("odp.collection:admin")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a provider-bound role", t, func() {
		roles := []RoleInput{{
			ID:         "saeon-curator",
			ProviderID: strptr("saeon"),
			ScopeIDs:   []string{"odp.collection:read"},
		}}

		Convey("with a platform client the grant is limited to the role's provider", func() {
			a := Resolve(roles, ClientInput{ID: "odp-ui", ScopeIDs: []string{"odp.collection:read"}})
			ps, ok := a.Allows("odp.collection:read")
			So(ok, ShouldBeTrue)
			So(ps.IsWildcard(), ShouldBeFalse)
			So(ps.IDs(), ShouldResemble, []string{"saeon"})
		})

		Convey("with a client bound to the same provider the grant stands", func() {
			a := Resolve(roles, ClientInput{
				ID:         "saeon-client",
				ProviderID: strptr("saeon"),
				ScopeIDs:   []string{"odp.collection:read"},
			})
			ps, _ := a.Allows("odp.collection:read")
			So(ps.IDs(), ShouldResemble, []string{"saeon"})
		})

		Convey("with a client bound to a different provider the role contributes nothing", func() {
			a := Resolve(roles, ClientInput{
				ID:         "other-client",
				ProviderID: strptr("other"),
				ScopeIDs:   []string{"odp.collection:read"},
			})
			So(a.Scopes, ShouldBeEmpty)
		})
	})

	Convey("Given a platform role used with a provider-bound client", t, func() {
		roles := []RoleInput{{
			ID:       "curator",
			ScopeIDs: []string{"odp.collection:read"},
		}}
		a := Resolve(roles, ClientInput{
			ID:         "saeon-client",
			ProviderID: strptr("saeon"),
			ScopeIDs:   []string{"odp.collection:read"},
		})

		Convey("the grant is limited to the client's provider", func() {
			ps, ok := a.Allows("odp.collection:read")
			So(ok, ShouldBeTrue)
			So(ps.IDs(), ShouldResemble, []string{"saeon"})
		})
	})

	Convey("Given multiple roles granting the same scope", t, func() {
		limited := []RoleInput{
			{ID: "a", ProviderID: strptr("p1"), ScopeIDs: []string{"odp.record:read"}},
			{ID: "b", ProviderID: strptr("p2"), ScopeIDs: []string{"odp.record:read"}},
		}
		client := ClientInput{ID: "odp-ui", ScopeIDs: []string{"odp.record:read"}}

		Convey("limited grants accumulate as a set union", func() {
			a := Resolve(limited, client)
			ps, _ := a.Allows("odp.record:read")
			So(ps.IDs(), ShouldResemble, []string{"p1", "p2"})
		})

		Convey("a platform-wide grant dominates limited grants", func() {
			roles := append(limited, RoleInput{ID: "c", ScopeIDs: []string{"odp.record:read"}})
			a := Resolve(roles, client)
			ps, _ := a.Allows("odp.record:read")
			So(ps.IsWildcard(), ShouldBeTrue)
		})

		Convey("the result is independent of role order", func() {
			roles := []RoleInput{
				{ID: "c", ScopeIDs: []string{"odp.record:read"}},
				limited[1],
				limited[0],
			}
			forward := Resolve(append(limited, RoleInput{ID: "c", ScopeIDs: []string{"odp.record:read"}}), client)
			reversed := Resolve(roles, client)
			fp, _ := forward.Allows("odp.record:read")
			rp, _ := reversed.Allows("odp.record:read")
			So(fp.IsWildcard(), ShouldEqual, rp.IsWildcard())
			So(fp.IDs(), ShouldResemble, rp.IDs())
		})
	})

	Convey("Given no roles", t, func() {
		a := Resolve(nil, ClientInput{ID: "odp-ui", ScopeIDs: []string{"odp.record:read"}})
		So(a.Scopes, ShouldBeEmpty)
	})
}

func TestWildcardAccess(t *testing.T) {
	Convey("WildcardAccess grants every scope platform-wide", t, func() {
		a := WildcardAccess([]string{"odp.collection:read", "odp.user:admin"})
		So(a.ScopeIDs(), ShouldHaveLength, 2)
		for _, id := range a.ScopeIDs() {
			ps, ok := a.Allows(id)
			So(ok, ShouldBeTrue)
			So(ps.IsWildcard(), ShouldBeTrue)
		}
	})
}

func TestProviderSetJSON(t *testing.T) {
	Convey("The wildcard set round-trips as *", t, func() {
		b, err := json.Marshal(Wildcard())
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `"*"`)

		var ps ProviderSet
		So(json.Unmarshal(b, &ps), ShouldBeNil)
		So(ps.IsWildcard(), ShouldBeTrue)
	})

	Convey("A limited set round-trips as a sorted array", t, func() {
		b, err := json.Marshal(Providers("p2", "p1"))
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `["p1","p2"]`)

		var ps ProviderSet
		So(json.Unmarshal(b, &ps), ShouldBeNil)
		So(ps.Contains("p1"), ShouldBeTrue)
		So(ps.Contains("p3"), ShouldBeFalse)
	})
}
