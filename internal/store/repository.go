/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the payment-service. By defining
 * an interface, we decouple the payment flows from the specific database
 * implementation (e.g., PostgreSQL), making the code easier to test with
 * in-memory fakes.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For tenant and property identifiers.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kejaniverse/payment-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Unit, tenant and property lookups used by the USSD flow and the
	// charge-initiation path.
	FindUnitByID(ctx context.Context, unitID string) (*domain.Unit, error)
	FindTenantByUnitID(ctx context.Context, unitID string) (*domain.Tenant, error)
	FindPropertyByUnitID(ctx context.Context, unitID string) (*domain.Property, error)

	// RecordRentPayment runs the webhook reconciliation transaction: it
	// re-checks the unit is occupied, resolves the assigned tenant, inserts
	// the payment record keyed by the gateway reference, and increments the
	// tenant's cumulative rent paid — all atomically. A second delivery of
	// the same reference returns ErrDuplicatePayment with no writes.
	RecordRentPayment(ctx context.Context, params RecordRentPaymentParams) (*domain.Payment, error)

	// Dashboard read models.
	ListPaymentsByUnitID(ctx context.Context, unitID string) ([]domain.Payment, error)
	GetTenantRentSummary(ctx context.Context, tenantID uuid.UUID) (*domain.TenantRentSummary, error)
}

// RecordRentPaymentParams carries a verified charge outcome into the
// reconciliation transaction. Amount is in major units (whole KES).
type RecordRentPaymentParams struct {
	ReferenceNumber  string
	Amount           int64
	PaidAt           time.Time
	PaymentMethod    string
	PaymentReference string
	UnitID           string
}
