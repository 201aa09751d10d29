package access

import (
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
)

// Resource is a kind of thing a permission applies to.
type Resource string

const (
	ResourceCategory  Resource = "category"
	ResourceFavorites Resource = "favorites"
	ResourceListing   Resource = "listing"
	ResourceProfile   Resource = "profile"
	ResourceProfiles  Resource = "profiles"
	ResourceReport    Resource = "report"
	ResourceReview    Resource = "review"
)

// Action is a CRUD verb.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Possession qualifies whether a permission covers only the principal's own
// instances or any instance.
type Possession string

const (
	Own Possession = "own"
	Any Possession = "any"
)

// Permission is a single grantable capability, e.g. updateOwn listing.
type Permission struct {
	Action     Action
	Possession Possession
	Resource   Resource
}

func (p Permission) String() string {
	return fmt.Sprintf("%s%s:%s", p.Action, p.Possession, p.Resource)
}

// RoleGrants declares the permissions of a role. Extends names roles whose
// permissions are inherited; they must be declared earlier.
type RoleGrants struct {
	Role        domain.Role
	Extends     []domain.Role
	Permissions []Permission
}

// GrantTable is an immutable role -> permission set mapping.
type GrantTable struct {
	roles map[domain.Role]map[Permission]struct{}
}

// NewGrantTable resolves inheritance and freezes the table.
func NewGrantTable(defs ...RoleGrants) (*GrantTable, error) {
	t := &GrantTable{roles: make(map[domain.Role]map[Permission]struct{}, len(defs))}
	for _, def := range defs {
		if _, dup := t.roles[def.Role]; dup {
			return nil, fmt.Errorf("role %q declared twice", def.Role)
		}
		set := make(map[Permission]struct{})
		for _, parent := range def.Extends {
			inherited, ok := t.roles[parent]
			if !ok {
				return nil, fmt.Errorf("role %q extends undeclared role %q", def.Role, parent)
			}
			for p := range inherited {
				set[p] = struct{}{}
			}
		}
		for _, p := range def.Permissions {
			if p.Possession != Own && p.Possession != Any {
				return nil, fmt.Errorf("role %q: invalid possession in %s", def.Role, p)
			}
			set[p] = struct{}{}
		}
		t.roles[def.Role] = set
	}
	return t, nil
}

// Allows reports whether role holds perm. A granted "any" permission also
// satisfies the matching "own" request. Unknown roles are denied.
func (t *GrantTable) Allows(role domain.Role, perm Permission) bool {
	set, ok := t.roles[role]
	if !ok {
		return false
	}
	if _, ok := set[perm]; ok {
		return true
	}
	if perm.Possession == Own {
		_, ok := set[Permission{Action: perm.Action, Possession: Any, Resource: perm.Resource}]
		return ok
	}
	return false
}

// Permissions returns the effective permissions of role in a stable order.
func (t *GrantTable) Permissions(role domain.Role) []Permission {
	set := t.roles[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Roles returns the declared roles in a stable order.
func (t *GrantTable) Roles() []domain.Role {
	out := make([]domain.Role, 0, len(t.roles))
	for r := range t.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func grant(a Action, p Possession, r Resource) Permission {
	return Permission{Action: a, Possession: p, Resource: r}
}

// DefaultGrants is the marketplace role table. Admin extends user.
func DefaultGrants() *GrantTable {
	t, err := NewGrantTable(
		RoleGrants{
			Role: domain.RoleUser,
			Permissions: []Permission{
				grant(ActionCreate, Own, ResourceFavorites),
				grant(ActionCreate, Own, ResourceListing),
				grant(ActionCreate, Own, ResourceReport),
				grant(ActionCreate, Own, ResourceReview),
				grant(ActionRead, Own, ResourceFavorites),
				grant(ActionRead, Own, ResourceListing),
				grant(ActionRead, Own, ResourceProfile),
				grant(ActionRead, Any, ResourceCategory),
				grant(ActionRead, Any, ResourceFavorites),
				grant(ActionRead, Any, ResourceListing),
				grant(ActionRead, Any, ResourceProfile),
				grant(ActionUpdate, Own, ResourceListing),
				grant(ActionUpdate, Own, ResourceProfile),
				grant(ActionDelete, Own, ResourceFavorites),
				grant(ActionDelete, Own, ResourceListing),
			},
		},
		RoleGrants{
			Role:    domain.RoleAdmin,
			Extends: []domain.Role{domain.RoleUser},
			Permissions: []Permission{
				grant(ActionCreate, Any, ResourceCategory),
				grant(ActionRead, Any, ResourceProfiles),
				grant(ActionRead, Any, ResourceReport),
				grant(ActionUpdate, Any, ResourceCategory),
				grant(ActionUpdate, Any, ResourceListing),
				grant(ActionUpdate, Any, ResourceProfile),
				grant(ActionUpdate, Any, ResourceReport),
				grant(ActionDelete, Any, ResourceCategory),
				grant(ActionDelete, Any, ResourceFavorites),
				grant(ActionDelete, Any, ResourceListing),
				grant(ActionDelete, Any, ResourceProfile),
				grant(ActionDelete, Any, ResourceReport),
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}
