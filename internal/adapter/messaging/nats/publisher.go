package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("marketplace-service/nats-publisher")

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Subject    string      `json:"subject"`
	Source     string      `json:"source"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

type Publisher struct {
	conn    *nats.Conn
	source  string
	logger  *logger.Logger
	timeNow func() time.Time
}

func NewPublisher(url string, log *logger.Logger, appName string) (*Publisher, error) {
	log.Info("Connecting to NATS", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS connect failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{
		conn:    conn,
		source:  appName,
		logger:  log.Named("NATSPublisher"),
		timeNow: time.Now,
	}, nil
}

// Publish sends data on subject inside an Envelope, carrying the trace
// context in the message headers.
func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("NATS.Publish.%s", subject))
	defer span.End()

	msg, err := p.newMsg(ctx, subject, data)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.Error("Event publish failed", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("Event published", zap.String("subject", subject), zap.Int("data_size_bytes", len(msg.Data)))
	return nil
}

func (p *Publisher) newMsg(ctx context.Context, subject string, data interface{}) (*nats.Msg, error) {
	body, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Subject:    subject,
		Source:     p.source,
		OccurredAt: p.timeNow().UTC(),
		Data:       data,
	})
	if err != nil {
		p.logger.Error("Event encoding failed", zap.String("subject", subject), zap.Error(err))
		return nil, fmt.Errorf("encode %s event: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = body
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))
	return msg, nil
}

// HeaderCarrier adapts nats.Header to the otel propagation carrier.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Error("NATS drain failed", zap.Error(err))
	}
	p.conn.Close()
	p.logger.Info("NATS connection drained and closed")
}
