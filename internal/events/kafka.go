package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives completed payments when no topic is configured.
const DefaultTopic = "register.payments"

// DefaultWriteTimeout bounds one publish, so an unreachable broker cannot
// hold up the payment completion response.
const DefaultWriteTimeout = 2 * time.Second

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer for a comma separated broker list.
func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// KafkaPublisher writes every completed payment to Kafka, keyed by session.
type KafkaPublisher struct {
	writer  MessageWriter
	logger  zerolog.Logger
	timeout time.Duration
}

// PublisherOption configures a KafkaPublisher.
type PublisherOption func(*KafkaPublisher)

// WithWriteTimeout overrides DefaultWriteTimeout. Non-positive values are
// ignored.
func WithWriteTimeout(d time.Duration) PublisherOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewKafkaPublisher(writer MessageWriter, logger zerolog.Logger, opts ...PublisherOption) *KafkaPublisher {
	p := &KafkaPublisher{writer: writer, logger: logger, timeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaPublisher) PaymentCompleted(ctx context.Context, r session.Receipt) {
	value, err := json.Marshal(r)
	if err != nil {
		p.logger.Error().Err(err).Msg("marshal receipt")
		return
	}

	msg := kafka.Message{
		Key:   []byte(r.SessionID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(enum.EventPaymentCompleted)},
			{Key: "outlet_id", Value: []byte(r.OutletID.String())},
		},
		Time: r.CompletedAt,
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("session_id", r.SessionID.String()).Msg("publish receipt to kafka")
		return
	}
	p.logger.Debug().Str("session_id", r.SessionID.String()).Msg("receipt published")
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
