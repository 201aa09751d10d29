package handler

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
)

// userView is a user as returned to clients. Password and tokens never leave
// the service; Email is dropped from public profiles.
type userView struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email,omitempty"`
	Avatar    string   `json:"avatar"`
	Bio       string   `json:"bio"`
	Role      string   `json:"role"`
	Favorites []string `json:"favorites"`
	Listings  []string `json:"listings"`
	Reviews   []string `json:"reviews"`
}

func newUserView(u *domain.User, withEmail bool) userView {
	v := userView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Role:      string(u.Role),
		Favorites: nonNil(u.Favorites),
		Listings:  nonNil(u.Listings),
		Reviews:   nonNil(u.Reviews),
	}
	if withEmail {
		v.Email = u.Email
	}
	return v
}

type locationView struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	City        string    `json:"city,omitempty"`
	CountryCode string    `json:"countryCode,omitempty"`
	PostalCode  string    `json:"postalCode,omitempty"`
}

type photosView struct {
	Cover  string   `json:"cover"`
	Photos []string `json:"photos"`
}

type listingView struct {
	ID          string        `json:"id"`
	PostedBy    string        `json:"postedBy"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Currency    string        `json:"currency"`
	Photos      photosView    `json:"photos"`
	Condition   string        `json:"condition,omitempty"`
	Location    *locationView `json:"location,omitempty"`
	IsSold      bool          `json:"isSold"`
	Favorites   int64         `json:"favorites"`
	Views       int64         `json:"views"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func newListingView(l *domain.Listing) listingView {
	v := listingView{
		ID:          l.ID,
		PostedBy:    l.PostedBy,
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		Price:       l.Price,
		Currency:    l.Currency,
		Photos:      photosView{Cover: l.Photos.Cover, Photos: nonNil(l.Photos.Photos)},
		Condition:   string(l.Condition),
		IsSold:      l.IsSold,
		Favorites:   l.Favorites,
		Views:       l.Views,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Location != nil {
		v.Location = &locationView{
			Type:        l.Location.Type,
			Coordinates: l.Location.Coordinates,
			City:        l.Location.City,
			CountryCode: l.Location.CountryCode,
			PostalCode:  l.Location.PostalCode,
		}
	}
	return v
}

func newListingViews(ls []*domain.Listing) []listingView {
	out := make([]listingView, 0, len(ls))
	for _, l := range ls {
		out = append(out, newListingView(l))
	}
	return out
}

type categoryView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
	Path   string `json:"category"`
}

func newCategoryView(c *domain.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Parent: c.Parent, Path: c.Path}
}

func newCategoryViews(cs []*domain.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCategoryView(c))
	}
	return out
}

type categoryTreeView struct {
	categoryView
	Subcategories []categoryView `json:"subcategories"`
}

type choicesView struct {
	Polite         int `json:"polite"`
	ShowedUpOnTime int `json:"showedUpOnTime"`
	FairPrices     int `json:"fairPrices"`
	QuickResponses int `json:"quickResponses"`
	Trustworthy    int `json:"trustworthy"`
	Helpful        int `json:"helpful"`
}

type reviewView struct {
	ID           string      `json:"id"`
	Rating       int         `json:"rating"`
	Choices      choicesView `json:"choices"`
	ListingID    string      `json:"listing"`
	Message      string      `json:"message"`
	ReviewedUser string      `json:"reviewedUser"`
	ReviewedBy   string      `json:"reviewedBy"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func newReviewView(r *domain.Review) reviewView {
	return reviewView{
		ID:     r.ID,
		Rating: r.Rating,
		Choices: choicesView{
			Polite:         r.Choices.Polite,
			ShowedUpOnTime: r.Choices.ShowedUpOnTime,
			FairPrices:     r.Choices.FairPrices,
			QuickResponses: r.Choices.QuickResponses,
			Trustworthy:    r.Choices.Trustworthy,
			Helpful:        r.Choices.Helpful,
		},
		ListingID:    r.ListingID,
		Message:      r.Message,
		ReviewedUser: r.ReviewedUser,
		ReviewedBy:   r.ReviewedBy,
		CreatedAt:    r.CreatedAt,
	}
}

func newReviewViews(rs []*domain.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newReviewView(r))
	}
	return out
}

type reportView struct {
	ID              string    `json:"id"`
	Reporter        string    `json:"reporter"`
	ReportedListing string    `json:"reportedListing,omitempty"`
	ReportedUser    string    `json:"reportedUser,omitempty"`
	Subject         int       `json:"subject"`
	SubjectText     string    `json:"subjectText"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func newReportView(r *domain.Report) reportView {
	return reportView{
		ID:              r.ID,
		Reporter:        r.Reporter,
		ReportedListing: r.ReportedListing,
		ReportedUser:    r.ReportedUser,
		Subject:         r.Subject,
		SubjectText:     r.SubjectText(),
		Message:         r.Message,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type subjectView struct {
	ID       int           `json:"id"`
	Subject  string        `json:"subject"`
	Children []subjectView `json:"children,omitempty"`
}

func newSubjectViews(ss []domain.Subject) []subjectView {
	out := make([]subjectView, 0, len(ss))
	for _, s := range ss {
		out = append(out, subjectView{ID: s.ID, Subject: s.Subject, Children: newSubjectViews(s.Children)})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
