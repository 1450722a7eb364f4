/**
 * @description
 * This file sets up the HTTP router for the payment-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * The USSD callback and the Paystack webhook are unauthenticated at the HTTP
 * layer: the gateway signs webhook bodies instead of sending tokens, and the
 * USSD aggregator cannot attach credentials. The payment read endpoints used
 * by the landlord dashboard require a Clerk JWT.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PaymentRoutes creates and returns a new router for the payment service.
func PaymentRoutes(h *PaymentHandlers, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Gateway-facing endpoints.
	r.Post("/callbacks/ussd", h.USSDCallbackHandler)
	r.Post("/webhooks/paystack", h.PaystackWebhookHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(ClerkAuthMiddleware(jwksURL))

		r.Get("/payments/units/{unitID}", h.ListUnitPaymentsHandler)
		r.Get("/payments/tenants/{tenantID}", h.TenantRentSummaryHandler)
	})

	return r
}
