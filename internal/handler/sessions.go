package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/customization"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/middleware"
	"github.com/kiwari-pos/register/internal/money"
	"github.com/kiwari-pos/register/internal/order"
	"github.com/kiwari-pos/register/internal/payment"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/rs/zerolog"
)

// SessionHandler exposes POS sessions: the order being built, the
// customization dialog and the payment dialog.
type SessionHandler struct {
	sessions *session.Manager
	products catalog.Provider
	suffix   string
	logger   zerolog.Logger
}

// NewSessionHandler creates a SessionHandler. Amounts in responses are also
// rendered for display with the given currency suffix.
func NewSessionHandler(sessions *session.Manager, products catalog.Provider, currencySuffix string, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		products: products,
		suffix:   currencySuffix,
		logger:   logger,
	}
}

// RegisterRoutes is expected to be mounted at /outlets/{oid}/sessions.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", h.Get)
		// Closing a session voids its unpaid order.
		r.With(middleware.RequireRole(enum.UserRoleOwner, enum.UserRoleManager)).Delete("/", h.Delete)

		r.Put("/table", h.SetTable)
		r.Post("/order/clear", h.ClearOrder)

		r.Post("/customization", h.OpenCustomization)
		r.Delete("/customization", h.DiscardCustomization)
		r.Post("/customization/modifiers/{mid}/toggle", h.ToggleModifier)
		r.Put("/customization/quantity", h.SetQuantity)
		r.Put("/customization/notes", h.SetNotes)
		r.Post("/customization/confirm", h.ConfirmCustomization)

		r.Put("/payment/method", h.SelectMethod)
		r.Post("/payment/keypad", h.PressKey)
		r.Post("/payment/quick-add", h.QuickAdd)
		r.Put("/payment/amount", h.SetAmount)
		r.Post("/payment/complete", h.CompletePayment)
		r.Delete("/payment", h.ClosePayment)
	})
}

// --- Request / Response types ---

type setTableRequest struct {
	TableID int    `json:"table_id"`
	Label   string `json:"label"`
}

type openCustomizationRequest struct {
	ProductID int64 `json:"product_id"`
}

// quantityRequest sets an absolute quantity, or steps it by delta.
type quantityRequest struct {
	Quantity *int `json:"quantity"`
	Delta    int  `json:"delta"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type methodRequest struct {
	Method string `json:"method"`
}

type keypadRequest struct {
	Key string `json:"key"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type displayAmounts struct {
	Subtotal       string `json:"subtotal"`
	Tax            string `json:"tax"`
	Total          string `json:"total"`
	AmountReceived string `json:"amount_received"`
	ChangeDue      string `json:"change_due"`
}

type sessionResponse struct {
	session.Snapshot
	Display displayAmounts `json:"display"`
}

type tableResponse struct {
	sessionResponse
	TableBound bool `json:"table_bound"`
}

type confirmResponse struct {
	Item    order.LineItem  `json:"item"`
	Session sessionResponse `json:"session"`
}

type completeResponse struct {
	Receipt session.Receipt `json:"receipt"`
	Session sessionResponse `json:"session"`
}

func (h *SessionHandler) toResponse(snap session.Snapshot) sessionResponse {
	return sessionResponse{
		Snapshot: snap,
		Display: displayAmounts{
			Subtotal:       money.Format(snap.Order.Subtotal, h.suffix),
			Tax:            money.Format(snap.Order.Tax, h.suffix),
			Total:          money.Format(snap.Order.Total, h.suffix),
			AmountReceived: money.Format(snap.Payment.AmountReceived, h.suffix),
			ChangeDue:      money.Format(snap.Payment.ChangeDue, h.suffix),
		},
	}
}

// --- Helpers ---

func (h *SessionHandler) ids(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	oid, ok := outletID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sid, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return oid, sid, true
}

// update runs fn on the session named by the request and writes the
// resulting session, or the mapped error.
func (h *SessionHandler) update(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}
	snap, err := h.sessions.Update(r.Context(), oid, sid, fn)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(snap))
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, customization.ErrUnknownModifier):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, payment.ErrInvalidMethod),
		errors.Is(err, payment.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrMalformedAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, customization.ErrNoProduct),
		errors.Is(err, payment.ErrNoMethod),
		errors.Is(err, payment.ErrNotCash),
		errors.Is(err, payment.ErrGuardFailed),
		errors.Is(err, payment.ErrCompleted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg("session update")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// --- Session Handlers ---

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(h.sessions.Create(oid)))
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	snaps := h.sessions.List(oid)
	resp := make([]sessionResponse, len(snaps))
	for i, s := range snaps {
		resp[i] = h.toResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}
	snap, err := h.sessions.Get(oid, sid)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(snap))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(oid, sid); err != nil {
		h.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Order Handlers ---

// SetTable binds the order to a table. Binding is idempotent: once a table
// is set, later calls leave it unchanged and report table_bound=false.
func (h *SessionHandler) SetTable(w http.ResponseWriter, r *http.Request) {
	var req setTableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TableID <= 0 {
		writeError(w, http.StatusBadRequest, "table_id is required")
		return
	}
	if req.Label == "" {
		req.Label = "Table " + strconv.Itoa(req.TableID)
	}

	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}
	var bound bool
	snap, err := h.sessions.Update(r.Context(), oid, sid, func(s *session.Session) error {
		bound = s.Order().SetTable(req.TableID, req.Label)
		return nil
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{sessionResponse: h.toResponse(snap), TableBound: bound})
}

func (h *SessionHandler) ClearOrder(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(s *session.Session) error {
		s.Order().ClearOrder()
		return nil
	})
}

// --- Customization Handlers ---

func (h *SessionHandler) OpenCustomization(w http.ResponseWriter, r *http.Request) {
	var req openCustomizationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}

	product, err := h.products.Product(r.Context(), oid, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error().Err(err).Int64("product_id", req.ProductID).Msg("get product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	snap, err := h.sessions.Update(r.Context(), oid, sid, func(s *session.Session) error {
		s.Customizer().Open(r.Context(), product)
		return nil
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(snap))
}

func (h *SessionHandler) DiscardCustomization(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(s *session.Session) error {
		s.Customizer().Discard()
		return nil
	})
}

func (h *SessionHandler) ToggleModifier(w http.ResponseWriter, r *http.Request) {
	modifierID, err := strconv.ParseInt(chi.URLParam(r, "mid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid modifier ID")
		return
	}
	h.update(w, r, func(s *session.Session) error {
		return s.Customizer().ToggleModifierByID(modifierID)
	})
}

func (h *SessionHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil && req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "quantity or delta is required")
		return
	}
	h.update(w, r, func(s *session.Session) error {
		c := s.Customizer()
		if c.State().Product == nil {
			return customization.ErrNoProduct
		}
		if req.Quantity != nil {
			c.SetQuantity(*req.Quantity)
		} else {
			c.AdjustQuantity(req.Delta)
		}
		return nil
	})
}

func (h *SessionHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *session.Session) error {
		if s.Customizer().State().Product == nil {
			return customization.ErrNoProduct
		}
		s.Customizer().SetNotes(req.Notes)
		return nil
	})
}

func (h *SessionHandler) ConfirmCustomization(w http.ResponseWriter, r *http.Request) {
	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}
	var item order.LineItem
	snap, err := h.sessions.Update(r.Context(), oid, sid, func(s *session.Session) error {
		var err error
		item, err = s.Customizer().Confirm()
		return err
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, confirmResponse{Item: item, Session: h.toResponse(snap)})
}

// --- Payment Handlers ---

func (h *SessionHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	var req methodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *session.Session) error {
		return s.Payment().SelectMethod(req.Method)
	})
}

func (h *SessionHandler) PressKey(w http.ResponseWriter, r *http.Request) {
	var req keypadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *session.Session) error {
		return s.Payment().PressKey(req.Key)
	})
}

func (h *SessionHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid quick-add amount")
		return
	}
	h.update(w, r, func(s *session.Session) error {
		return s.Payment().QuickAdd(amount)
	})
}

func (h *SessionHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *session.Session) error {
		return s.Payment().SetAmount(req.Amount)
	})
}

func (h *SessionHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	oid, sid, ok := h.ids(w, r)
	if !ok {
		return
	}
	receipt, snap, err := h.sessions.CompletePayment(r.Context(), oid, sid)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{Receipt: receipt, Session: h.toResponse(snap)})
}

// ClosePayment closes the payment dialog, discarding method and amount.
func (h *SessionHandler) ClosePayment(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(s *session.Session) error {
		s.Payment().Reset()
		return nil
	})
}
