package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrIncompleteConfig is returned when SMTP settings are missing.
var ErrIncompleteConfig = errors.New("SMTP configuration is incomplete")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends transactional emails over SMTP.
type Mailer struct {
	dialer dialer
	from   string
	logger *logger.Logger
}

func NewMailer(cfg *config.Config, log *logger.Logger) (*Mailer, error) {
	if !cfg.SMTPEnabled() {
		return nil, ErrIncompleteConfig
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
		logger: log.Named("Mailer"),
	}, nil
}

// ListingCreated tells the poster their listing is live.
func (m *Mailer) ListingCreated(ctx context.Context, toEmail, firstName, listingTitle string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Your listing is live")
	msg.SetBody("text/plain", fmt.Sprintf("Hi %s,\n\nYour listing '%s' has been created successfully.\n", firstName, listingTitle))

	// gomail has no context support; honour cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send listing created email", zap.String("to", toEmail), zap.Error(err))
		return fmt.Errorf("send listing created email: %w", err)
	}
	m.logger.Info("Listing created email sent", zap.String("to", toEmail))
	return nil
}
