/**
 * @description
 * This file contains the HTTP handler for the USSD gateway callback. The
 * gateway posts a form-encoded request for every step of the menu session and
 * expects a plain-text reply starting with CON (continue) or END (terminate).
 * HTTP status is always 200: the USSD protocol does not use status codes to
 * signal application-level errors.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries.
 * - internal/app: For the USSD flow logic.
 */

package api

import (
	"log"
	"net/http"

	"github.com/kejaniverse/payment-service/internal/app"
)

// PaymentHandlers holds the application service that handlers will use.
type PaymentHandlers struct {
	service       *app.Service
	webhookSecret string
}

// NewPaymentHandlers creates a new instance of PaymentHandlers.
func NewPaymentHandlers(service *app.Service, webhookSecret string) *PaymentHandlers {
	return &PaymentHandlers{service: service, webhookSecret: webhookSecret}
}

const ussdFailureReply = "END Something went wrong. Please try again later."

// USSDCallbackHandler handles one step of a USSD session. The `text` field
// carries a "*"-joined transcript of every answer so far; session progress
// itself lives in the session store, keyed by `sessionId`.
func (h *PaymentHandlers) USSDCallbackHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	if err := r.ParseForm(); err != nil {
		log.Printf("level=warn component=api endpoint=ussd_callback outcome=reject reason=invalid_form err=%v", err)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(ussdFailureReply))
		return
	}

	sessionID := r.PostFormValue("sessionId")
	text := r.PostFormValue("text")
	if sessionID == "" {
		log.Printf("level=warn component=api endpoint=ussd_callback outcome=reject reason=missing_session_id")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(ussdFailureReply))
		return
	}

	reply := h.service.HandleUSSD(r.Context(), sessionID, text)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reply))
}
