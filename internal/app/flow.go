/**
 * @description
 * This file defines the USSD session state machine: the explicit session
 * states, the session record stored in Redis between gateway callbacks, and
 * the CON/END reply messages for every step of the rent-payment menu.
 *
 * The current step is always derived from the stored State field, never from
 * the position or length of the gateway's answer transcript. The transcript
 * is only used to pick off the newest answer.
 *
 * @notes
 * - Replies starting with "CON" keep the session open for more input;
 *   replies starting with "END" terminate it on the handset.
 * - An invalid entry ends the session rather than re-prompting: the USSD
 *   gateway protocol offers no step-back, so the caller dials in again.
 */

package app

import (
	"fmt"
	"strings"
)

// SessionState identifies which input the flow expects next. It is persisted
// with the session so the next callback resumes at the right step.
type SessionState string

const (
	StateAwaitingUnit         SessionState = "awaiting_unit"
	StateAwaitingAmount       SessionState = "awaiting_amount"
	StateAwaitingPhone        SessionState = "awaiting_phone"
	StateAwaitingConfirmation SessionState = "awaiting_confirmation"
)

// Session is the ephemeral record of one USSD interaction. Fields are
// populated strictly in order: the presence of a later field implies all
// earlier fields were provided and validated.
type Session struct {
	State       SessionState `json:"state"`
	UnitID      string       `json:"unit_id,omitempty"`
	Amount      int64        `json:"amount,omitempty"` // major units (KES)
	PhoneNumber string       `json:"phone_number,omitempty"`
}

// NewSession returns a fresh session at the first step of the flow.
func NewSession() *Session {
	return &Session{State: StateAwaitingUnit}
}

const (
	msgWelcome         = "CON Kejaniverse Rent Payment\nEnter the unit identifier"
	msgPromptAmount    = "CON Enter the amount you want to pay."
	msgPromptPhone     = "CON Enter the M-Pesa number you want to pay with e.g. +254712345678"
	msgUnitIDLength    = "END The unit identifier should be 6 characters long. Please try again."
	msgUnitNotFound    = "END Unit not found. Please try again."
	msgCancelled       = "END Transaction cancelled."
	msgChargeInitiated = "END You'll receive an M-Pesa prompt shortly."
	msgChargeFailed    = "END Transaction failed. Please try again later."
	msgChargeInvalid   = "END Transaction failed. Please try again."
	msgLookupFailed    = "END Something went wrong. Please try again."
	msgGenericFailure  = "END Something went wrong. Please try again later."
)

func invalidAmountMessage(raw string, min, max int64) string {
	return fmt.Sprintf(
		"END Invalid amount: %s. The amount must be between KES %s and KES %s.\nPlease try again.",
		raw, formatThousands(min), formatThousands(max),
	)
}

func invalidPhoneMessage(raw string) string {
	return fmt.Sprintf("END Invalid phone number: %s. Please try again.", raw)
}

func confirmationPrompt(amount int64, unitID string) string {
	return fmt.Sprintf(
		"CON Do you want to pay KES %d for the unit with the identifier %s?\n1. Yes\n2. No",
		amount, unitID,
	)
}

// lastAnswer extracts the newest answer from the gateway transcript, which is
// a "*"-joined list of every answer given so far.
func lastAnswer(text string) string {
	answers := strings.Split(text, "*")
	return answers[len(answers)-1]
}

// formatThousands renders an amount with comma grouping, e.g. 150000 ->
// "150,000", for the menu text bounds.
func formatThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
