package domain

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the Role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

const DefaultAvatar = "https://gravatar.com/avatar"

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Avatar    string
	Bio       string
	Role      Role
	Favorites []string
	Listings  []string
	Reviews   []string
	Tokens    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser normalises registration data into a user with the default role.
func NewUser(firstName, lastName, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		FirstName: CapitalizeWords(firstName),
		LastName:  CapitalizeWords(lastName),
		Email:     NormalizeEmail(email),
		Password:  passwordHash,
		Avatar:    DefaultAvatar,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasFavorite reports whether listingID is in the user's favorites.
func (u *User) HasFavorite(listingID string) bool {
	for _, id := range u.Favorites {
		if id == listingID {
			return true
		}
	}
	return false
}

// UserUpdate lists the profile fields a client may change. Nil means unchanged.
// Role is deliberately absent.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Avatar    *string
	Bio       *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.Password == nil && u.Avatar == nil && u.Bio == nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CapitalizeWords upper-cases the first letter of every word.
func CapitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidatePassword enforces the password policy: at least 8 characters with a
// digit, a lower-case and an upper-case letter, and not containing "password".
func ValidatePassword(pw string) error {
	var digit, lower, upper bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	if len([]rune(pw)) < 8 || !digit || !lower || !upper {
		return NewError(ErrInvalidInput, "Password must be at least 8 characters and contain a digit, a lower-case and an upper-case letter.")
	}
	if strings.Contains(strings.ToLower(pw), "password") {
		return NewError(ErrInvalidInput, `Password cannot contain "password".`)
	}
	return nil
}
