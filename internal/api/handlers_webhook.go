/**
 * @description
 * This file contains the HTTP handler for processing incoming webhooks from
 * Paystack. It is the entry point for asynchronous charge outcomes and the
 * sole trust boundary between the payment gateway and the ledger.
 *
 * Key features:
 * - Security: validates the HMAC-SHA512 signature of the raw body before the
 *   payload is parsed or acted upon. A mismatch is the only case that does
 *   not return 200.
 * - Event filtering: only charge.success triggers reconciliation; all other
 *   event kinds are acknowledged and ignored so the gateway stops retrying.
 * - Failure containment: reconciliation errors are logged and still answered
 *   with 200 — re-delivery cannot fix a business-rule conflict such as a
 *   tenant who moved out between charge and webhook.
 *
 * @dependencies
 * - crypto/hmac, crypto/sha512, encoding/hex: For signature validation.
 * - encoding/json, io, net/http: Standard Go libraries.
 * - internal/domain: For the webhook event models.
 */

package api

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/kejaniverse/payment-service/internal/domain"
)

// PaystackWebhookHandler authenticates and applies a webhook delivery.
func (h *PaymentHandlers) PaystackWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("level=warn component=api endpoint=paystack_webhook outcome=reject reason=body_read_failed err=%v", err)
		http.Error(w, "Cannot read request body", http.StatusBadRequest)
		return
	}

	if !h.isValidSignature(r.Header.Get("x-paystack-signature"), body) {
		log.Printf("level=warn component=api endpoint=paystack_webhook outcome=reject reason=invalid_signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event domain.PaystackWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Authenticated but malformed; acknowledge so the gateway does not
		// redeliver a payload we can never parse.
		log.Printf("level=warn component=api endpoint=paystack_webhook outcome=ignored reason=invalid_json err=%v", err)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}

	if event.Event != domain.EventChargeSuccess {
		log.Printf("level=info component=api endpoint=paystack_webhook outcome=ignored event=%q", event.Event)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}

	if err := h.service.ReconcileChargeEvent(r.Context(), event); err != nil {
		log.Printf("level=error component=api endpoint=paystack_webhook outcome=failed reference=%s err=%v", event.Data.Reference, err)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// isValidSignature checks the hex HMAC-SHA512 of the raw body against the
// x-paystack-signature header using a constant-time comparison.
func (h *PaymentHandlers) isValidSignature(signatureHeader string, body []byte) bool {
	if h.webhookSecret == "" {
		log.Printf("level=error component=api endpoint=paystack_webhook msg=\"webhook secret not configured; rejecting delivery\"")
		return false
	}
	if signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
