package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/order"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	outletID  uuid.UUID
	eventType string
	payload   any
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) Publish(outletID uuid.UUID, eventType string, payload any) error {
	f.events = append(f.events, published{outletID, eventType, payload})
	return f.err
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeRecorder struct {
	method string
	total  float64
}

func (r *fakeRecorder) PaymentCompleted(method string, total float64) {
	r.method, r.total = method, total
}

func sampleReceipt() session.Receipt {
	return session.Receipt{
		SessionID:      uuid.New(),
		OutletID:       uuid.New(),
		Order:          order.Summary{Total: decimal.NewFromInt(55000)},
		Method:         enum.PaymentMethodCash,
		AmountReceived: decimal.NewFromInt(60000),
		ChangeDue:      decimal.NewFromInt(5000),
		CompletedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestBroadcaster(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBroadcaster(pub, zerolog.Nop())
	outlet := uuid.New()
	sid := uuid.New()

	b.SessionUpdated(outlet, session.Snapshot{ID: sid})
	b.SessionClosed(outlet, sid)
	b.PreOrderStatus(outlet, "po-1", enum.PreOrderStatusPreparing)
	r := sampleReceipt()
	b.PaymentCompleted(context.Background(), r)

	require.Len(t, pub.events, 4)
	assert.Equal(t, enum.EventSessionUpdated, pub.events[0].eventType)
	assert.Equal(t, enum.EventSessionClosed, pub.events[1].eventType)
	assert.Equal(t, enum.EventPreOrderStatus, pub.events[2].eventType)
	assert.Equal(t, preOrderStatus{OrderID: "po-1", Status: enum.PreOrderStatusPreparing}, pub.events[2].payload)
	assert.Equal(t, enum.EventPaymentCompleted, pub.events[3].eventType)
	assert.Equal(t, r.OutletID, pub.events[3].outletID, "receipts go to the receipt's outlet")
}

func TestBroadcaster_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("closed")}
	b := NewBroadcaster(pub, zerolog.Nop())
	assert.NotPanics(t, func() { b.SessionClosed(uuid.New(), uuid.New()) })
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, zerolog.Nop())
	r := sampleReceipt()

	p.PaymentCompleted(context.Background(), r)

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, r.SessionID.String(), string(msg.Key))
	assert.Equal(t, r.CompletedAt, msg.Time)

	var got session.Receipt
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.True(t, got.ChangeDue.Equal(r.ChangeDue))
	assert.Equal(t, r.Method, got.Method)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteErrorIsLogged(t *testing.T) {
	w := &fakeWriter{err: errors.New("no brokers")}
	p := NewKafkaPublisher(w, zerolog.Nop())
	assert.NotPanics(t, func() { p.PaymentCompleted(context.Background(), sampleReceipt()) })
}

// stalledWriter behaves like a writer whose brokers never answer.
type stalledWriter struct{}

func (stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledWriter) Close() error { return nil }

func TestKafkaPublisher_WriteIsBounded(t *testing.T) {
	p := NewKafkaPublisher(stalledWriter{}, zerolog.Nop(), WithWriteTimeout(20*time.Millisecond))

	returned := make(chan struct{})
	go func() {
		p.PaymentCompleted(context.Background(), sampleReceipt())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("publish did not give up on a stalled broker")
	}
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(" b1:9092, b2:9092,", "")
	assert.Equal(t, DefaultTopic, w.Topic)
	assert.Contains(t, w.Addr.String(), "b1:9092")
	assert.Contains(t, w.Addr.String(), "b2:9092")
}

func TestMetricsHook(t *testing.T) {
	rec := &fakeRecorder{}
	NewMetricsHook(rec).PaymentCompleted(context.Background(), sampleReceipt())
	assert.Equal(t, enum.PaymentMethodCash, rec.method)
	assert.Equal(t, 55000.0, rec.total)
}
