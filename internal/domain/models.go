/**
 * @description
 * This file defines the core domain models for the payment-service.
 * These structs represent the rental entities the payment flows operate on:
 * units, tenants, properties, and the persistent payment ledger records.
 *
 * @notes
 * - Payment amounts are stored in major currency units (whole KES) to match
 *   the rent ledger; the Paystack wire format uses minor units (cents), and
 *   the conversion helpers below are the single place that boundary lives.
 * - Unit identifiers are short 6-character codes handed out to tenants, not
 *   UUIDs, because they must be typed on a feature phone keypad.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnitIDLength is the fixed length of the short unit identifiers tenants
// key in over USSD.
const UnitIDLength = 6

// Unit represents a rentable unit within a property.
type Unit struct {
	ID         string    `json:"id"`
	UnitName   string    `json:"unit_name"`
	Occupied   bool      `json:"occupied"`
	PropertyID uuid.UUID `json:"property_id"`
}

// Tenant represents the person currently assigned to a unit. The
// CumulativeRentPaid running total is mutated only inside the same database
// transaction that inserts a payment record.
type Tenant struct {
	ID                 uuid.UUID  `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Email              string     `json:"email"`
	PhoneNumber        *string    `json:"phone_number,omitempty"`
	CumulativeRentPaid int64      `json:"cumulative_rent_paid"` // major units (KES)
	UnitID             string     `json:"unit_id"`
	MoveOutDate        *time.Time `json:"move_out_date,omitempty"`
}

// Property represents a landlord's property. The SubaccountCode routes
// settlement funds to the landlord's bank account on the payment gateway.
type Property struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	SubaccountCode string    `json:"subaccount_code"`
}

// Payment is the persistent ledger record for a confirmed mobile-money
// charge. ReferenceNumber is the gateway-assigned reference and the primary
// key, which is what guards against duplicate webhook delivery.
type Payment struct {
	ReferenceNumber  string     `json:"reference_number"`
	Amount           int64      `json:"amount"` // major units (KES)
	PaidAt           time.Time  `json:"paid_at"`
	PaymentMethod    string     `json:"payment_method"`
	PaymentReference string     `json:"payment_reference"`
	UnitID           string     `json:"unit_id"`
	TenantID         *uuid.UUID `json:"tenant_id,omitempty"`
}

// TenantRentSummary is the read model for a tenant's rent position on the
// landlord dashboard.
type TenantRentSummary struct {
	TenantID           uuid.UUID `json:"tenant_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	UnitID             string    `json:"unit_id"`
	CumulativeRentPaid int64     `json:"cumulative_rent_paid"`
	PaymentCount       int64     `json:"payment_count"`
}

// MajorToMinor converts whole KES to Paystack subunits.
func MajorToMinor(major int64) int64 {
	return major * 100
}

// MinorToMajor converts Paystack subunits back to whole KES.
func MinorToMajor(minor int64) int64 {
	return minor / 100
}
