package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestNewMailer_IncompleteConfig(t *testing.T) {
	_, err := NewMailer(&config.Config{SMTPHost: "smtp.example.com"}, logger.NewNop())
	assert.ErrorIs(t, err, ErrIncompleteConfig)
}

func TestListingCreated(t *testing.T) {
	d := &fakeDialer{}
	m := &Mailer{dialer: d, from: "noreply@example.com", logger: logger.NewNop()}

	require.NoError(t, m.ListingCreated(context.Background(), "jane@example.com", "Jane", "Road bike"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"jane@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"noreply@example.com"}, d.sent[0].GetHeader("From"))

	d.err = errors.New("connection refused")
	assert.Error(t, m.ListingCreated(context.Background(), "jane@example.com", "Jane", "Road bike"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.ListingCreated(ctx, "jane@example.com", "Jane", "Road bike"), context.Canceled)
}
