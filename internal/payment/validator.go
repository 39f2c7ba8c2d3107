// Package payment implements the payment dialog of a POS session: method
// selection, cash amount entry on a numeric keypad and the completion guard.
package payment

import (
	"errors"
	"strings"

	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/money"
	"github.com/shopspring/decimal"
)

// Errors returned by the validator.
var (
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrNoMethod        = errors.New("no payment method selected")
	ErrNotCash         = errors.New("amount entry is only available for cash payments")
	ErrInvalidKey      = errors.New("invalid keypad key")
	ErrGuardFailed     = errors.New("amount received is less than order total")
	ErrMalformedAmount = errors.New("amount received is not a valid number")
	ErrCompleted       = errors.New("payment already completed")
)

// Keypad keys besides the digits.
const (
	KeyDecimal    = "."
	KeyDoubleZero = "00"
	KeyBackspace  = "backspace"
)

// DefaultQuickAddAmounts are the quick-add buttons shown under the keypad.
var DefaultQuickAddAmounts = []decimal.Decimal{
	decimal.NewFromInt(10000),
	decimal.NewFromInt(20000),
	decimal.NewFromInt(50000),
}

// TotalSource exposes the live order total. Satisfied by *order.Accumulator.
type TotalSource interface {
	Total() decimal.Decimal
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrictAmounts makes a malformed cash amount block completion with
// ErrMalformedAmount instead of silently counting as zero.
func WithStrictAmounts(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

// WithQuickAddAmounts overrides DefaultQuickAddAmounts.
func WithQuickAddAmounts(amounts []decimal.Decimal) Option {
	return func(v *Validator) { v.quickAdds = amounts }
}

// WithOnComplete registers the notification fired once the payment reaches
// COMPLETED.
func WithOnComplete(fn func()) Option {
	return func(v *Validator) { v.onComplete = fn }
}

// Snapshot is a read-only view of the payment dialog.
type Snapshot struct {
	State          string            `json:"state"`
	Method         string            `json:"method,omitempty"`
	AmountInput    string            `json:"amount_input"`
	AmountReceived decimal.Decimal   `json:"amount_received"`
	AmountValid    bool              `json:"amount_valid"`
	Total          decimal.Decimal   `json:"total"`
	ChangeDue      decimal.Decimal   `json:"change_due"`
	CanComplete    bool              `json:"can_complete"`
	QuickAdd       []decimal.Decimal `json:"quick_add"`
}

// Validator is the payment state machine:
//
//	METHOD_SELECTION -> AMOUNT_ENTRY (cash only) -> READY_TO_COMPLETE -> COMPLETED
//
// It reads the order total on every evaluation, so order changes made while
// the dialog is open are reflected immediately. Not safe for concurrent use.
type Validator struct {
	totals     TotalSource
	strict     bool
	quickAdds  []decimal.Decimal
	onComplete func()

	method    string
	amount    string
	completed bool
}

// New creates a Validator in METHOD_SELECTION.
func New(totals TotalSource, opts ...Option) *Validator {
	v := &Validator{
		totals:    totals,
		quickAdds: DefaultQuickAddAmounts,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SelectMethod makes m the single active payment method.
// The cash buffer survives switching methods.
func (v *Validator) SelectMethod(m string) error {
	if v.completed {
		return ErrCompleted
	}
	if !enum.IsPaymentMethod(m) {
		return ErrInvalidMethod
	}
	v.method = m
	return nil
}

// Method returns the selected method, or "" if none.
func (v *Validator) Method() string { return v.method }

// State derives the current state of the machine.
func (v *Validator) State() string {
	switch {
	case v.completed:
		return enum.PaymentStateCompleted
	case v.method == "":
		return enum.PaymentStateMethodSelection
	case v.CanComplete():
		return enum.PaymentStateReady
	default:
		return enum.PaymentStateAmountEntry
	}
}

// PressKey applies one keypad key: "0"-"9", "00", "." or "backspace".
func (v *Validator) PressKey(key string) error {
	switch key {
	case KeyBackspace:
		return v.Backspace()
	case KeyDecimal:
		return v.PressDecimal()
	case KeyDoubleZero:
		if err := v.PressDigit('0'); err != nil {
			return err
		}
		return v.PressDigit('0')
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return v.PressDigit(rune(key[0]))
	}
	return ErrInvalidKey
}

// PressDigit appends d to the cash amount.
func (v *Validator) PressDigit(d rune) error {
	if err := v.checkAmountEntry(); err != nil {
		return err
	}
	if d < '0' || d > '9' {
		return ErrInvalidKey
	}
	v.amount += string(d)
	return nil
}

// PressDecimal appends a decimal point unless the amount already has one.
func (v *Validator) PressDecimal() error {
	if err := v.checkAmountEntry(); err != nil {
		return err
	}
	if strings.Contains(v.amount, ".") {
		return nil
	}
	if v.amount == "" {
		v.amount = "0"
	}
	v.amount += "."
	return nil
}

// Backspace removes the last character of the cash amount.
func (v *Validator) Backspace() error {
	if err := v.checkAmountEntry(); err != nil {
		return err
	}
	if v.amount != "" {
		v.amount = v.amount[:len(v.amount)-1]
	}
	return nil
}

// QuickAdd adds increment to the current numeric amount.
// A malformed amount counts as zero, so quick-add also repairs it.
func (v *Validator) QuickAdd(increment decimal.Decimal) error {
	if err := v.checkAmountEntry(); err != nil {
		return err
	}
	v.amount = money.LenientAmount(v.amount).Add(increment).String()
	return nil
}

// SetAmount replaces the cash amount with free text as typed.
func (v *Validator) SetAmount(s string) error {
	if err := v.checkAmountEntry(); err != nil {
		return err
	}
	v.amount = s
	return nil
}

// AmountInput returns the raw cash amount text.
func (v *Validator) AmountInput() string { return v.amount }

// AmountValid reports whether the cash amount parses as a non-negative number.
// An empty amount is valid (zero).
func (v *Validator) AmountValid() bool {
	_, err := money.ParseAmount(v.amount)
	return err == nil
}

// AmountReceived returns the parsed cash amount; malformed input is zero.
func (v *Validator) AmountReceived() decimal.Decimal {
	if v.method != enum.PaymentMethodCash {
		return decimal.Zero
	}
	return money.LenientAmount(v.amount)
}

// ChangeDue returns max(0, amountReceived - total).
func (v *Validator) ChangeDue() decimal.Decimal {
	change := v.AmountReceived().Sub(v.totals.Total())
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// CanComplete evaluates the completion guard. Card and QR always pass; cash
// needs amountReceived >= total (and a well-formed amount in strict mode).
func (v *Validator) CanComplete() bool {
	return v.guard() == nil
}

// Complete moves the payment to COMPLETED and fires the completion callback.
func (v *Validator) Complete() error {
	if err := v.guard(); err != nil {
		return err
	}
	v.completed = true
	if v.onComplete != nil {
		v.onComplete()
	}
	return nil
}

// Reset discards the dialog state, as when the payment dialog is closed.
func (v *Validator) Reset() {
	v.method = ""
	v.amount = ""
	v.completed = false
}

// QuickAddAmounts returns the configured quick-add increments.
func (v *Validator) QuickAddAmounts() []decimal.Decimal {
	return append([]decimal.Decimal{}, v.quickAdds...)
}

// Snapshot returns the current view of the dialog.
func (v *Validator) Snapshot() Snapshot {
	return Snapshot{
		State:          v.State(),
		Method:         v.method,
		AmountInput:    v.amount,
		AmountReceived: v.AmountReceived(),
		AmountValid:    v.AmountValid(),
		Total:          v.totals.Total(),
		ChangeDue:      v.ChangeDue(),
		CanComplete:    v.CanComplete(),
		QuickAdd:       v.QuickAddAmounts(),
	}
}

func (v *Validator) guard() error {
	if v.completed {
		return ErrCompleted
	}
	switch v.method {
	case "":
		return ErrNoMethod
	case enum.PaymentMethodCard, enum.PaymentMethodQR:
		return nil
	}
	if v.strict && !v.AmountValid() {
		return ErrMalformedAmount
	}
	if v.AmountReceived().LessThan(v.totals.Total()) {
		return ErrGuardFailed
	}
	return nil
}

func (v *Validator) checkAmountEntry() error {
	if v.completed {
		return ErrCompleted
	}
	if v.method != enum.PaymentMethodCash {
		return ErrNotCash
	}
	return nil
}
