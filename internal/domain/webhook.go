/**
 * @description
 * This file defines the shapes of the asynchronous webhook notifications the
 * payment-service receives from Paystack. Only the fields the reconciler
 * acts on are modeled; everything else in the payload is ignored.
 */

package domain

// EventChargeSuccess is the only Paystack event kind that triggers
// reconciliation. All other kinds are acknowledged and ignored.
const EventChargeSuccess = "charge.success"

// PaystackWebhookEvent is the envelope of a Paystack webhook delivery.
type PaystackWebhookEvent struct {
	Event string             `json:"event"`
	Data  PaystackChargeData `json:"data"`
}

// PaystackChargeData carries the charge outcome. Amount is in minor units
// (subunits); PaidAt is an ISO-8601 timestamp string.
type PaystackChargeData struct {
	ID        int64          `json:"id"`
	Status    string         `json:"status"`
	Reference string         `json:"reference"`
	Amount    int64          `json:"amount"`
	PaidAt    string         `json:"paid_at"`
	Channel   string         `json:"channel"`
	Metadata  ChargeMetadata `json:"metadata"`
}

// ChargeMetadata links a gateway charge back to the unit the USSD session
// collected. It is set by us on charge initiation and echoed back verbatim.
type ChargeMetadata struct {
	UnitID string `json:"unitId"`
}
