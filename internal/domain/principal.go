package domain

// Principal is the authenticated actor of a request. It is derived from the
// stored user on every request and never persisted on its own.
type Principal struct {
	ID              string
	Role            Role
	OwnedListingIDs map[string]struct{}
	// Token is the credential the request was authenticated with.
	Token string
}

// NewPrincipal derives a principal from a user and the token that resolved it.
func NewPrincipal(u *User, token string) *Principal {
	owned := make(map[string]struct{}, len(u.Listings))
	for _, id := range u.Listings {
		owned[id] = struct{}{}
	}
	return &Principal{ID: u.ID, Role: u.Role, OwnedListingIDs: owned, Token: token}
}

func (p *Principal) OwnsListing(listingID string) bool {
	_, ok := p.OwnedListingIDs[listingID]
	return ok
}

func (p *Principal) OwnsProfile(userID string) bool {
	return userID != "" && p.ID == userID
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// OwnedListings returns the owned listing IDs in a stable order.
func (p *Principal) OwnedListings() []string {
	return sortedKeys(p.OwnedListingIDs)
}
