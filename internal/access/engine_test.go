package access

import (
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userPrincipal(id string, listings ...string) *domain.Principal {
	return domain.NewPrincipal(&domain.User{ID: id, Role: domain.RoleUser, Listings: listings}, "tok")
}

func adminPrincipal(id string) *domain.Principal {
	return domain.NewPrincipal(&domain.User{ID: id, Role: domain.RoleAdmin}, "tok")
}

func TestAdminExtendsUser(t *testing.T) {
	table := DefaultGrants()
	for _, perm := range table.Permissions(domain.RoleUser) {
		assert.True(t, table.Allows(domain.RoleAdmin, perm), "admin should hold %s", perm)
	}
	assert.Greater(t, len(table.Permissions(domain.RoleAdmin)), len(table.Permissions(domain.RoleUser)))
}

func TestGrantTable_AnyImpliesOwn(t *testing.T) {
	table := DefaultGrants()
	assert.True(t, table.Allows(domain.RoleAdmin, Permission{ActionUpdate, Own, ResourceCategory}))
	assert.False(t, table.Allows(domain.RoleUser, Permission{ActionUpdate, Any, ResourceListing}))
	assert.False(t, table.Allows(domain.Role("guest"), Permission{ActionRead, Any, ResourceListing}))
}

func TestNewGrantTable_Errors(t *testing.T) {
	_, err := NewGrantTable(RoleGrants{Role: domain.RoleAdmin, Extends: []domain.Role{domain.RoleUser}})
	assert.Error(t, err)

	_, err = NewGrantTable(RoleGrants{Role: domain.RoleUser}, RoleGrants{Role: domain.RoleUser})
	assert.Error(t, err)

	_, err = NewGrantTable(RoleGrants{Role: domain.RoleUser, Permissions: []Permission{{ActionRead, "some", ResourceListing}}})
	assert.Error(t, err)
}

func TestAuthorize_UserOwnershipOnListing(t *testing.T) {
	// A table that grants users "any" on listings must not let ownership slide.
	permissive, err := NewGrantTable(RoleGrants{Role: domain.RoleUser, Permissions: []Permission{
		{ActionUpdate, Any, ResourceListing},
		{ActionDelete, Any, ResourceListing},
	}})
	require.NoError(t, err)

	for name, table := range map[string]*GrantTable{"default": DefaultGrants(), "permissive": permissive} {
		engine := NewEngine(table, logger.NewNop())
		p := userPrincipal("u1", "l1", "l2")
		for _, action := range []Action{ActionUpdate, ActionDelete} {
			assert.NoError(t, engine.Authorize(p, action, ResourceListing, &Target{ID: "l1"}), name)
			err := engine.Authorize(p, action, ResourceListing, &Target{ID: "l9"})
			assert.ErrorIs(t, err, domain.ErrForbidden, name)
			assert.Equal(t, domain.ForbiddenMessage, err.Error())
			assert.ErrorIs(t, engine.Authorize(p, action, ResourceListing, nil), domain.ErrForbidden, name)
		}
	}
}

func TestAuthorize_UserProfileAndFavorites(t *testing.T) {
	engine := NewEngine(DefaultGrants(), logger.NewNop())
	p := userPrincipal("u1")

	assert.NoError(t, engine.Authorize(p, ActionUpdate, ResourceProfile, &Target{ID: "u1"}))
	assert.ErrorIs(t, engine.Authorize(p, ActionUpdate, ResourceProfile, &Target{ID: "u2"}), domain.ErrForbidden)
	// Owning the profile is not enough: users hold no delete grant on profiles.
	assert.ErrorIs(t, engine.Authorize(p, ActionDelete, ResourceProfile, &Target{ID: "u1"}), domain.ErrForbidden)

	assert.NoError(t, engine.Authorize(p, ActionDelete, ResourceFavorites, &Target{ID: "l1", OwnerID: "u1"}))
	assert.ErrorIs(t, engine.Authorize(p, ActionDelete, ResourceFavorites, &Target{ID: "l1", OwnerID: "u2"}), domain.ErrForbidden)
	assert.NoError(t, engine.Authorize(p, ActionCreate, ResourceFavorites, &Target{OwnerID: "u1"}))
}

func TestAuthorize_UserTableOnly(t *testing.T) {
	engine := NewEngine(DefaultGrants(), logger.NewNop())
	p := userPrincipal("u1")

	assert.NoError(t, engine.Authorize(p, ActionRead, ResourceListing, &Target{ID: "l5"}))
	assert.NoError(t, engine.Authorize(p, ActionRead, ResourceCategory, nil))
	assert.NoError(t, engine.Authorize(p, ActionCreate, ResourceListing, &Target{OwnerID: "u1"}))
	assert.ErrorIs(t, engine.Authorize(p, ActionCreate, ResourceListing, nil), domain.ErrForbidden)
	assert.ErrorIs(t, engine.Authorize(p, ActionCreate, ResourceCategory, nil), domain.ErrForbidden)
	assert.ErrorIs(t, engine.Authorize(p, ActionRead, ResourceReport, nil), domain.ErrForbidden)
	assert.ErrorIs(t, engine.Authorize(p, ActionRead, ResourceProfiles, nil), domain.ErrForbidden)
	assert.ErrorIs(t, engine.Authorize(p, ActionRead, Resource("unknown"), nil), domain.ErrForbidden)
}

func TestAuthorize_AdminUsesTableWithoutOwnership(t *testing.T) {
	table := DefaultGrants()
	engine := NewEngine(table, logger.NewNop())
	admin := adminPrincipal("a1")

	for _, perm := range table.Permissions(domain.RoleAdmin) {
		target := &Target{ID: "someone-elses", OwnerID: "someone-else"}
		assert.NoError(t, engine.Authorize(admin, perm.Action, perm.Resource, target), "admin %s", perm)
	}
	assert.ErrorIs(t, engine.Authorize(admin, ActionCreate, ResourceProfiles, nil), domain.ErrForbidden)
}

func TestAuthorize_NilPrincipal(t *testing.T) {
	engine := NewEngine(DefaultGrants(), logger.NewNop())
	err := engine.Authorize(nil, ActionRead, ResourceListing, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.False(t, engine.Can(nil, ActionRead, ResourceListing, nil))
}
