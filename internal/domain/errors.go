package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every expected failure wraps exactly one of them; the HTTP
// layer derives the status code from the kind.
var (
	// ErrUnauthenticated means no usable credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredential means the credential could not be resolved to an active session.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden means the principal may not perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a domain precondition on existing state was violated.
	ErrConflict = errors.New("conflict")
	// ErrNotFound means the target entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidInput means the request data failed validation.
	ErrInvalidInput = errors.New("invalid input data")
)

// ForbiddenMessage is the client-facing text for every authorization failure.
const ForbiddenMessage = "You do not have permission to perform this action."

// Error is an expected failure carrying a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrAlreadyFavorited     = &Error{Kind: ErrConflict, Message: "The listing is already in your favorites."}
	ErrNotFavorited         = &Error{Kind: ErrConflict, Message: "The listing is not in your favorites."}
	ErrEmailTaken           = &Error{Kind: ErrConflict, Message: "The email address is already in use."}
	ErrInvalidLogin         = &Error{Kind: ErrInvalidCredential, Message: "Invalid credentials."}
	ErrMissingAuthHeader    = &Error{Kind: ErrUnauthenticated, Message: "Authorization header not found."}
	ErrInvalidAuthHeader    = &Error{Kind: ErrUnauthenticated, Message: "Invalid authorization header type."}
	ErrInvalidToken         = &Error{Kind: ErrInvalidCredential, Message: "Invalid authorization token."}
	ErrPermissionDenied     = &Error{Kind: ErrForbidden, Message: ForbiddenMessage}
	ErrListingNotFound      = &Error{Kind: ErrNotFound, Message: "The listing not found."}
	ErrUserNotFound         = &Error{Kind: ErrNotFound, Message: "The user not found."}
	ErrCategoryNotFound     = &Error{Kind: ErrNotFound, Message: "The category not found."}
	ErrReportNotFound       = &Error{Kind: ErrNotFound, Message: "The report not found."}
	ErrReviewNotFound       = &Error{Kind: ErrNotFound, Message: "The review not found."}
	ErrInvalidSubject       = &Error{Kind: ErrInvalidInput, Message: "Invalid report subject."}
	ErrSelfReview           = &Error{Kind: ErrInvalidInput, Message: "You cannot review yourself."}
	ErrReportTooManyTargets = &Error{Kind: ErrInvalidInput, Message: "You can only report one entity at a time."}
	ErrReportNoTarget       = &Error{Kind: ErrInvalidInput, Message: "You need to provide the id of the listing or user you are reporting."}
)
