package handler

import (
	"errors"
	"net/http"

	preferencesdomain "expense-tracker-go/internal/domain/preferences"
	"expense-tracker-go/internal/transport/httpserver/middleware"
	"expense-tracker-go/pkg/logger"
)

type PreferenceHandlers struct {
	service *preferencesdomain.Service
	log     logger.Logger
}

// Get returns the currency catalogue alongside the caller's saved choice, so
// a single request can populate the preferences screen.
func (h *PreferenceHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	currencies, err := h.service.Currencies(r.Context())
	if err != nil {
		h.log.InternalError("preferences.get: catalogue load failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	selected, err := h.service.CurrencyFor(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("preferences.get: lookup failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currencies": currencies,
		"currency":   selected,
	})
}

func (h *PreferenceHandlers) Save(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req struct {
		Currency string `json:"currency"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	pref, err := h.service.Save(r.Context(), user.ID, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, preferencesdomain.ErrUnknownCurrency):
			h.log.BusinessError("preferences.save: unknown currency", err, "user_id", user.ID, "currency", req.Currency)
			writeError(w, http.StatusBadRequest, "unknown_currency", "currency is not in the supported list")
		default:
			h.log.InternalError("preferences.save failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "changes saved",
		"currency": pref.Currency,
	})
}
