package mongodb

import (
	"sort"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Avatar    string             `bson:"avatar"`
	Bio       string             `bson:"bio,omitempty"`
	Role      string             `bson:"role"`
	// Favorites is a set: presence of a listing ID key means favorited.
	Favorites map[string]bool `bson:"favorites"`
	Listings  []string        `bson:"listings"`
	Reviews   []string        `bson:"reviews"`
	Tokens    []string        `bson:"tokens"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

type photosDocument struct {
	Cover  string   `bson:"cover,omitempty"`
	Photos []string `bson:"photos"`
}

type locationDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
	City        string    `bson:"city,omitempty"`
	CountryCode string    `bson:"countryCode,omitempty"`
	PostalCode  string    `bson:"postalCode,omitempty"`
}

type listingDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PostedBy     string             `bson:"postedBy"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description,omitempty"`
	Category     string             `bson:"category"`
	Price        float64            `bson:"price"`
	Currency     string             `bson:"currency,omitempty"`
	Photos       photosDocument     `bson:"photos"`
	Condition    string             `bson:"condition,omitempty"`
	Location     *locationDocument  `bson:"location,omitempty"`
	IsSold       bool               `bson:"isSold"`
	Favorites    int64              `bson:"favorites"`
	Views        int64              `bson:"views"`
	CounterMarks map[string]string  `bson:"counterMarks,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type categoryDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Parent    string             `bson:"parent"`
	Path      string             `bson:"category"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type choicesDocument struct {
	Polite         int `bson:"polite"`
	ShowedUpOnTime int `bson:"showedUpOnTime"`
	FairPrices     int `bson:"fairPrices"`
	QuickResponses int `bson:"quickResponses"`
	Trustworthy    int `bson:"trustworthy"`
	Helpful        int `bson:"helpful"`
}

type reviewDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Rating       int                `bson:"rating"`
	Choices      choicesDocument    `bson:"choices"`
	ListingID    string             `bson:"listingId"`
	Message      string             `bson:"message,omitempty"`
	ReviewedUser string             `bson:"reviewedUser"`
	ReviewedBy   string             `bson:"reviewedBy"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type reportDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Reporter        string             `bson:"reporter"`
	ReportedListing string             `bson:"reportedListing,omitempty"`
	ReportedUser    string             `bson:"reportedUser,omitempty"`
	Subject         int                `bson:"subject"`
	Message         string             `bson:"message,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

// objectID parses a hex id. Malformed ids cannot match any document, so
// callers treat ok == false as not found.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func fromDomainUser(u *domain.User) *userDocument {
	favorites := make(map[string]bool, len(u.Favorites))
	for _, id := range u.Favorites {
		favorites[id] = true
	}
	return &userDocument{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.Password,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Role:      string(u.Role),
		Favorites: favorites,
		Listings:  emptyIfNil(u.Listings),
		Reviews:   emptyIfNil(u.Reviews),
		Tokens:    emptyIfNil(u.Tokens),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d *userDocument) toDomain() *domain.User {
	favorites := make([]string, 0, len(d.Favorites))
	for id, on := range d.Favorites {
		if on {
			favorites = append(favorites, id)
		}
	}
	sort.Strings(favorites)
	return &domain.User{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Password:  d.Password,
		Avatar:    d.Avatar,
		Bio:       d.Bio,
		Role:      domain.Role(d.Role),
		Favorites: favorites,
		Listings:  d.Listings,
		Reviews:   d.Reviews,
		Tokens:    d.Tokens,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromDomainLocation(l *domain.Location) *locationDocument {
	if l == nil {
		return nil
	}
	typ := l.Type
	if typ == "" {
		typ = "Point"
	}
	return &locationDocument{
		Type:        typ,
		Coordinates: l.Coordinates,
		City:        l.City,
		CountryCode: l.CountryCode,
		PostalCode:  l.PostalCode,
	}
}

func fromDomainListing(l *domain.Listing) *listingDocument {
	return &listingDocument{
		PostedBy:     l.PostedBy,
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		Price:        l.Price,
		Currency:     l.Currency,
		Photos:       photosDocument{Cover: l.Photos.Cover, Photos: emptyIfNil(l.Photos.Photos)},
		Condition:    string(l.Condition),
		Location:     fromDomainLocation(l.Location),
		IsSold:       l.IsSold,
		Favorites:    l.Favorites,
		Views:        l.Views,
		CounterMarks: l.CounterMarks,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (d *listingDocument) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:           d.ID.Hex(),
		PostedBy:     d.PostedBy,
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Price:        d.Price,
		Currency:     d.Currency,
		Photos:       domain.Photos{Cover: d.Photos.Cover, Photos: d.Photos.Photos},
		Condition:    domain.Condition(d.Condition),
		IsSold:       d.IsSold,
		Favorites:    d.Favorites,
		Views:        d.Views,
		CounterMarks: d.CounterMarks,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Location != nil {
		l.Location = &domain.Location{
			Type:        d.Location.Type,
			Coordinates: d.Location.Coordinates,
			City:        d.Location.City,
			CountryCode: d.Location.CountryCode,
			PostalCode:  d.Location.PostalCode,
		}
	}
	return l
}

func (d *categoryDocument) toDomain() *domain.Category {
	return &domain.Category{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Parent:    d.Parent,
		Path:      d.Path,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromDomainReview(r *domain.Review) *reviewDocument {
	c := r.Choices
	return &reviewDocument{
		Rating: r.Rating,
		Choices: choicesDocument{
			Polite:         c.Polite,
			ShowedUpOnTime: c.ShowedUpOnTime,
			FairPrices:     c.FairPrices,
			QuickResponses: c.QuickResponses,
			Trustworthy:    c.Trustworthy,
			Helpful:        c.Helpful,
		},
		ListingID:    r.ListingID,
		Message:      r.Message,
		ReviewedUser: r.ReviewedUser,
		ReviewedBy:   r.ReviewedBy,
		CreatedAt:    r.CreatedAt,
	}
}

func (d *reviewDocument) toDomain() *domain.Review {
	c := d.Choices
	return &domain.Review{
		ID:     d.ID.Hex(),
		Rating: d.Rating,
		Choices: domain.ReviewChoices{
			Polite:         c.Polite,
			ShowedUpOnTime: c.ShowedUpOnTime,
			FairPrices:     c.FairPrices,
			QuickResponses: c.QuickResponses,
			Trustworthy:    c.Trustworthy,
			Helpful:        c.Helpful,
		},
		ListingID:    d.ListingID,
		Message:      d.Message,
		ReviewedUser: d.ReviewedUser,
		ReviewedBy:   d.ReviewedBy,
		CreatedAt:    d.CreatedAt,
	}
}

func (d *reportDocument) toDomain() *domain.Report {
	return &domain.Report{
		ID:              d.ID.Hex(),
		Reporter:        d.Reporter,
		ReportedListing: d.ReportedListing,
		ReportedUser:    d.ReportedUser,
		Subject:         d.Subject,
		Message:         d.Message,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func objectIDOf(v interface{}) (string, bool) {
	oid, ok := v.(primitive.ObjectID)
	if !ok {
		return "", false
	}
	return oid.Hex(), true
}
