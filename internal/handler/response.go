package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/middleware"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes the JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// outletID returns the outlet resolved by middleware.RequireOutlet, falling
// back to parsing {oid} when the handler is mounted without it.
func outletID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if oid, ok := middleware.OutletFromContext(r.Context()); ok {
		return oid, true
	}
	oid, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outlet ID")
		return uuid.Nil, false
	}
	return oid, true
}
