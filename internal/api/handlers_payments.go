/**
 * @description
 * This file contains the HTTP handlers for the landlord dashboard's payment
 * read API: the payment history for a unit and a tenant's rent summary.
 * These endpoints sit behind the identity provider's JWT middleware; the
 * dashboard frontend calls them with the signed-in landlord's token.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: For URL parameters.
 * - internal/store: For sentinel error mapping.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kejaniverse/payment-service/internal/store"
)

// ListUnitPaymentsHandler returns the recorded payments for a unit.
func (h *PaymentHandlers) ListUnitPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	unitID := chi.URLParam(r, "unitID")
	if unitID == "" {
		h.writeError(w, http.StatusBadRequest, "Unit ID is required")
		return
	}

	payments, err := h.service.ListUnitPayments(r.Context(), unitID)
	if err != nil {
		if errors.Is(err, store.ErrUnitNotFound) {
			h.writeError(w, http.StatusNotFound, "Unit not found")
			return
		}
		log.Printf("level=error component=api endpoint=list_unit_payments unit_id=%s err=%v", unitID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to list payments")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"unit_id":  unitID,
		"payments": payments,
	})
}

// TenantRentSummaryHandler returns a tenant's cumulative rent position.
func (h *PaymentHandlers) TenantRentSummaryHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid tenant ID format")
		return
	}

	summary, err := h.service.TenantRentSummary(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, store.ErrTenantNotFound) {
			h.writeError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		log.Printf("level=error component=api endpoint=tenant_rent_summary tenant_id=%s err=%v", tenantID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load rent summary")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *PaymentHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *PaymentHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
