package domain

import (
	"time"
)

// Condition describes the state of the item on sale.
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like new"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
)

// IsValid checks if the Condition is one of the defined constants.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Photos holds the cover image and the gallery of a listing.
type Photos struct {
	Cover  string
	Photos []string
}

// Location is a GeoJSON point with address hints.
type Location struct {
	Type        string
	Coordinates []float64
	City        string
	CountryCode string
	PostalCode  string
}

// Listing is an item offered for sale.
// Favorites and Views are durable aggregates maintained by the counter
// reconciler; CounterMarks records the newest bucket applied per counter.
type Listing struct {
	ID           string
	PostedBy     string
	Title        string
	Description  string
	Category     string
	Price        float64
	Currency     string
	Photos       Photos
	Condition    Condition
	Location     *Location
	IsSold       bool
	Favorites    int64
	Views        int64
	CounterMarks map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewListing creates a listing owned by postedBy.
func NewListing(postedBy, title, description, category string, price float64, currency string) *Listing {
	now := time.Now().UTC()
	return &Listing{
		PostedBy:    postedBy,
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ListingUpdate lists the listing fields a client may change. Nil means unchanged.
type ListingUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Currency    *string
	Photos      *Photos
	Condition   *Condition
	Location    *Location
	IsSold      *bool
}

// IsEmpty reports whether the update changes nothing.
func (u ListingUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Price == nil &&
		u.Currency == nil && u.Photos == nil && u.Condition == nil && u.Location == nil && u.IsSold == nil
}

// ListingFilter holds parameters for querying listings.
type ListingFilter struct {
	IDs      []string
	Category string
	PostedBy string
	Skip     int64
	Limit    int64
}
