package enum

// ── Group A: State machines ──

const (
	PaymentStateMethodSelection = "METHOD_SELECTION"
	PaymentStateAmountEntry     = "AMOUNT_ENTRY"
	PaymentStateReady           = "READY_TO_COMPLETE"
	PaymentStateCompleted       = "COMPLETED"
)

// Pre-order statuses as reported by the ordering backend.
const (
	PreOrderStatusDraft     = "DRAFT"
	PreOrderStatusPreparing = "PREPARING"
	PreOrderStatusCompleted = "COMPLETED"
	PreOrderStatusCancelled = "CANCELLED"
)

// ── Group B: Configurable labels ──

const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
	PaymentMethodQR   = "QR"
)

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)

// ── Group C: Event types pushed over the outlet feed ──

const (
	EventSessionUpdated   = "session.updated"
	EventSessionClosed    = "session.closed"
	EventPaymentCompleted = "payment.completed"
	EventPreOrderStatus   = "preorder.status"
)

// IsPaymentMethod reports whether m is a supported payment method.
func IsPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodQR:
		return true
	}
	return false
}

// IsTerminalPreOrderStatus reports whether polling can stop at status s.
func IsTerminalPreOrderStatus(s string) bool {
	switch s {
	case PreOrderStatusPreparing, PreOrderStatusCompleted, PreOrderStatusCancelled:
		return true
	}
	return false
}
