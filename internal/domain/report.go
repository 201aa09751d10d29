package domain

import (
	"time"
)

// ReportTarget says what kind of entity a report is about.
type ReportTarget string

const (
	ReportTargetListing ReportTarget = "listing"
	ReportTargetUser    ReportTarget = "user"
)

// IsValid checks if the ReportTarget is one of the defined constants.
func (t ReportTarget) IsValid() bool {
	return t == ReportTargetListing || t == ReportTargetUser
}

// Report flags a listing or a user for moderation. Exactly one of
// ReportedListing and ReportedUser is set.
type Report struct {
	ID              string
	Reporter        string
	ReportedListing string
	ReportedUser    string
	Subject         int
	Message         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReport validates the target and subject of a report.
func NewReport(reporter, reportedListing, reportedUser string, subject int, message string) (*Report, error) {
	switch {
	case reportedListing == "" && reportedUser == "":
		return nil, ErrReportNoTarget
	case reportedListing != "" && reportedUser != "":
		return nil, ErrReportTooManyTargets
	}
	r := &Report{
		Reporter:        reporter,
		ReportedListing: reportedListing,
		ReportedUser:    reportedUser,
		Subject:         subject,
		Message:         message,
	}
	if _, ok := FindSubject(SubjectsFor(r.Target()), subject); !ok {
		return nil, ErrInvalidSubject
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	return r, nil
}

// Target returns the kind of entity being reported.
func (r *Report) Target() ReportTarget {
	if r.ReportedListing != "" {
		return ReportTargetListing
	}
	return ReportTargetUser
}

// SubjectText resolves the numeric subject to its label.
func (r *Report) SubjectText() string {
	s, _ := FindSubject(SubjectsFor(r.Target()), r.Subject)
	return s
}

// ReportUpdate lists the report fields an admin may change.
type ReportUpdate struct {
	Subject *int
	Message *string
}

// ReportFilter holds parameters for listing reports.
type ReportFilter struct {
	Target       ReportTarget
	Subject      *int
	PostedWithin time.Duration
	SortBy       string
	Descending   bool
	Skip         int64
	Limit        int64
}

// PostedWithinDuration maps the accepted "postedWithin" values to durations.
// Any other non-empty value falls back to 30 days.
func PostedWithinDuration(v string) time.Duration {
	switch v {
	case "":
		return 0
	case "24h":
		return 24 * time.Hour
	case "7d":
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}
