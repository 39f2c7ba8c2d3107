package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/preorder"
)

// PreOrderTracker is satisfied by *preorder.Tracker.
type PreOrderTracker interface {
	Watch(outletID uuid.UUID, orderID, initial string) preorder.Status
	Status(outletID uuid.UUID, orderID string) (preorder.Status, error)
	Stop(outletID uuid.UUID, orderID string) error
}

// PreOrderHandler lets a register follow pre-orders until the kitchen
// starts them.
type PreOrderHandler struct {
	tracker PreOrderTracker
}

func NewPreOrderHandler(tracker PreOrderTracker) *PreOrderHandler {
	return &PreOrderHandler{tracker: tracker}
}

// RegisterRoutes is expected to be mounted at /outlets/{oid}/preorders.
func (h *PreOrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{id}/watch", h.Watch)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}/watch", h.Unwatch)
}

type watchRequest struct {
	Status string `json:"status"`
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid pre-order ID")
		return "", false
	}
	return id, true
}

// Watch starts polling the pre-order. The body is optional; without a
// status the pre-order is assumed to be DRAFT.
func (h *PreOrderHandler) Watch(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req watchRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case "", enum.PreOrderStatusDraft, enum.PreOrderStatusPreparing,
		enum.PreOrderStatusCompleted, enum.PreOrderStatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	writeJSON(w, http.StatusAccepted, h.tracker.Watch(oid, id, status))
}

func (h *PreOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	st, err := h.tracker.Status(oid, id)
	if err != nil {
		if errors.Is(err, preorder.ErrNotWatched) {
			writeError(w, http.StatusNotFound, "pre-order not watched")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *PreOrderHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	if err := h.tracker.Stop(oid, id); err != nil {
		if errors.Is(err, preorder.ErrNotWatched) {
			writeError(w, http.StatusNotFound, "pre-order not watched")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
