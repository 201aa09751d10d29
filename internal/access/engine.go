package access

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Target identifies the resource instance an action applies to.
// ID is the instance itself; OwnerID is the user the instance belongs to when
// that is not derivable from ID (a favorites set is owned by a user).
type Target struct {
	ID      string
	OwnerID string
}

// Engine decides whether a principal may perform an action.
type Engine struct {
	grants *GrantTable
	logger *logger.Logger
}

func NewEngine(grants *GrantTable, log *logger.Logger) *Engine {
	return &Engine{grants: grants, logger: log.Named("AccessEngine")}
}

// ownershipQualified reports whether role=user must own the target.
func ownershipQualified(action Action, resource Resource) bool {
	if action != ActionUpdate && action != ActionDelete {
		return false
	}
	switch resource {
	case ResourceListing, ResourceProfile, ResourceFavorites:
		return true
	}
	return false
}

// Authorize returns nil when p may perform action on resource, and
// domain.ErrPermissionDenied otherwise.
//
// For role=user, update and delete on listings, profiles and favorites first
// require ownership of target; a mismatch is final whatever the table says.
// Other user requests need an "any" grant, or an "own" grant plus ownership.
// Admins are checked against the table only and are never narrowed by ownership.
func (e *Engine) Authorize(p *domain.Principal, action Action, resource Resource, target *Target) error {
	if p == nil {
		return domain.NewError(domain.ErrUnauthenticated, "Authentication required.")
	}

	anyPerm := Permission{Action: action, Possession: Any, Resource: resource}
	ownPerm := Permission{Action: action, Possession: Own, Resource: resource}

	switch {
	case p.Role == domain.RoleAdmin:
		if e.grants.Allows(p.Role, anyPerm) || e.grants.Allows(p.Role, ownPerm) {
			return nil
		}
	case p.Role == domain.RoleUser && ownershipQualified(action, resource):
		if !ownsStrict(p, resource, target) {
			e.logger.Info("Ownership check failed",
				zap.String("principal_id", p.ID),
				zap.String("action", string(action)),
				zap.String("resource", string(resource)),
				zap.String("target_id", targetID(target)))
			return domain.ErrPermissionDenied
		}
		if e.grants.Allows(p.Role, ownPerm) {
			return nil
		}
	default:
		if e.grants.Allows(p.Role, anyPerm) {
			return nil
		}
		if owns(p, resource, target) && e.grants.Allows(p.Role, ownPerm) {
			return nil
		}
	}

	e.logger.Info("Permission denied by grant table",
		zap.String("principal_id", p.ID),
		zap.String("role", string(p.Role)),
		zap.String("action", string(action)),
		zap.String("resource", string(resource)),
		zap.String("target_id", targetID(target)))
	return domain.ErrPermissionDenied
}

// Can is Authorize as a boolean.
func (e *Engine) Can(p *domain.Principal, action Action, resource Resource, target *Target) bool {
	return e.Authorize(p, action, resource, target) == nil
}

// ownsStrict is the ownership rule for mutations: listings must be in the
// principal's owned set, profiles must be the principal's own, favorites must
// belong to the principal.
func ownsStrict(p *domain.Principal, resource Resource, target *Target) bool {
	if target == nil {
		return false
	}
	switch resource {
	case ResourceListing:
		return p.OwnsListing(target.ID)
	case ResourceProfile:
		return p.OwnsProfile(target.ID)
	default:
		return target.OwnerID != "" && target.OwnerID == p.ID
	}
}

// owns also accepts an explicit owner, which is how not-yet-created
// instances (a new listing, a new review) are attributed.
func owns(p *domain.Principal, resource Resource, target *Target) bool {
	if ownsStrict(p, resource, target) {
		return true
	}
	return target != nil && target.OwnerID != "" && target.OwnerID == p.ID
}

func targetID(t *Target) string {
	if t == nil {
		return ""
	}
	return t.ID
}
