package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const maxReportPageSize = 100

// ReportUsecase files and moderates reports against listings and users.
type ReportUsecase struct {
	reports  domain.ReportRepository
	users    domain.UserRepository
	listings domain.ListingRepository
	authz    Authorizer
	events   EventPublisher
	logger   *logger.Logger
}

func NewReportUsecase(reports domain.ReportRepository, users domain.UserRepository, listings domain.ListingRepository,
	authz Authorizer, events EventPublisher, log *logger.Logger) *ReportUsecase {
	return &ReportUsecase{
		reports:  reports,
		users:    users,
		listings: listings,
		authz:    authz,
		events:   events,
		logger:   log.Named("ReportUsecase"),
	}
}

// Subjects returns the subject tree for a report target.
func (uc *ReportUsecase) Subjects(target domain.ReportTarget) []domain.Subject {
	if target == domain.ReportTargetListing {
		return domain.ListingSubjects()
	}
	return domain.UserSubjects()
}

type CreateReportInput struct {
	ReportedListing string
	ReportedUser    string
	Subject         int
	Message         string
}

// Create files a report. Exactly one target must be given and it must exist.
func (uc *ReportUsecase) Create(ctx context.Context, p *domain.Principal, in CreateReportInput) (*domain.Report, error) {
	if err := uc.authz.Authorize(p, access.ActionCreate, access.ResourceReport, &access.Target{OwnerID: p.ID}); err != nil {
		return nil, err
	}
	report, err := domain.NewReport(p.ID, in.ReportedListing, in.ReportedUser, in.Subject, in.Message)
	if err != nil {
		return nil, err
	}
	if err := uc.checkTarget(ctx, report); err != nil {
		return nil, err
	}

	if err := uc.reports.Create(ctx, report); err != nil {
		uc.logger.Error("Failed to save report", zap.Error(err))
		return nil, err
	}

	eventData := map[string]interface{}{
		"report_id":        report.ID,
		"reporter":         report.Reporter,
		"reported_listing": report.ReportedListing,
		"reported_user":    report.ReportedUser,
		"subject":          report.Subject,
		"created_at":       report.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.events.Publish(ctx, SubjectReportCreated, eventData); err != nil {
		uc.logger.Warn("Failed to publish report.created event", zap.Error(err), zap.String("report_id", report.ID))
	}
	uc.logger.Info("Report created", zap.String("report_id", report.ID), zap.String("target", string(report.Target())))
	return report, nil
}

func (uc *ReportUsecase) checkTarget(ctx context.Context, r *domain.Report) error {
	if r.Target() == domain.ReportTargetListing {
		exists, err := uc.listings.Exists(ctx, r.ReportedListing)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewError(domain.ErrNotFound, "Invalid listing id!")
		}
		return nil
	}
	_, err := uc.users.FindByID(ctx, r.ReportedUser)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.ErrNotFound, "Invalid user id!")
	}
	return err
}

// List returns reports about one kind of target.
func (uc *ReportUsecase) List(ctx context.Context, p *domain.Principal, filter domain.ReportFilter) ([]*domain.Report, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceReport, nil); err != nil {
		return nil, err
	}
	if !filter.Target.IsValid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "Invalid report target.")
	}
	if filter.Subject != nil {
		if _, ok := domain.FindSubject(domain.SubjectsFor(filter.Target), *filter.Subject); !ok {
			return nil, domain.ErrInvalidSubject
		}
	}
	if filter.Limit <= 0 || filter.Limit > maxReportPageSize {
		filter.Limit = maxReportPageSize
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	return uc.reports.List(ctx, filter)
}

func (uc *ReportUsecase) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Report, error) {
	if err := uc.authz.Authorize(p, access.ActionRead, access.ResourceReport, &access.Target{ID: id}); err != nil {
		return nil, err
	}
	return uc.reports.FindByID(ctx, id)
}

// Update changes the subject or message of a report. A new subject must
// belong to the report's target tree.
func (uc *ReportUsecase) Update(ctx context.Context, p *domain.Principal, id string, update domain.ReportUpdate) (*domain.Report, error) {
	if err := uc.authz.Authorize(p, access.ActionUpdate, access.ResourceReport, &access.Target{ID: id}); err != nil {
		return nil, err
	}
	if update.Subject == nil && update.Message == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "You need to provide the fields to be updated!")
	}
	if update.Subject != nil {
		current, err := uc.reports.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, ok := domain.FindSubject(domain.SubjectsFor(current.Target()), *update.Subject); !ok {
			return nil, domain.ErrInvalidSubject
		}
	}
	report, err := uc.reports.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Report updated", zap.String("report_id", id), zap.String("by", p.ID))
	return report, nil
}

func (uc *ReportUsecase) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := uc.authz.Authorize(p, access.ActionDelete, access.ResourceReport, &access.Target{ID: id}); err != nil {
		return err
	}
	if err := uc.reports.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("Report deleted", zap.String("report_id", id), zap.String("by", p.ID))
	return nil
}
