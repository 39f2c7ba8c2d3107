// Package events fans register activity out to other screens of the outlet,
// to Kafka and to metrics.
package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/rs/zerolog"
)

// Publisher delivers an event to every screen of an outlet.
// Satisfied by *ws.Hub.
type Publisher interface {
	Publish(outletID uuid.UUID, eventType string, payload any) error
}

// Broadcaster is a session.Notifier, session.CompletionHook and
// preorder.Notifier that pushes everything to the outlet feed.
type Broadcaster struct {
	pub    Publisher
	logger zerolog.Logger
}

func NewBroadcaster(pub Publisher, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{pub: pub, logger: logger}
}

func (b *Broadcaster) SessionUpdated(outletID uuid.UUID, snap session.Snapshot) {
	b.publish(outletID, enum.EventSessionUpdated, snap)
}

func (b *Broadcaster) SessionClosed(outletID, sessionID uuid.UUID) {
	b.publish(outletID, enum.EventSessionClosed, map[string]uuid.UUID{"id": sessionID})
}

func (b *Broadcaster) PaymentCompleted(_ context.Context, r session.Receipt) {
	b.publish(r.OutletID, enum.EventPaymentCompleted, r)
}

type preOrderStatus struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (b *Broadcaster) PreOrderStatus(outletID uuid.UUID, orderID, status string) {
	b.publish(outletID, enum.EventPreOrderStatus, preOrderStatus{OrderID: orderID, Status: status})
}

func (b *Broadcaster) publish(outletID uuid.UUID, eventType string, payload any) {
	if err := b.pub.Publish(outletID, eventType, payload); err != nil {
		b.logger.Error().Err(err).Str("type", eventType).Msg("publish outlet event")
	}
}
