/**
 * @description
 * This file contains the input validation rules for the USSD payment flow
 * and the defense-in-depth check applied to the outgoing charge payload.
 * The rules mirror the constraints the gateway itself enforces: M-Pesa
 * charges through Paystack are bounded to KES 1–150,000 per transaction and
 * only Kenyan mobile numbers (+254 followed by nine digits) are chargeable.
 */

package app

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/kejaniverse/payment-service/pkg/paystackclient"
)

// Charge payload bounds in minor units (subunits): KES 1 to KES 150,000.
const (
	minChargeMinor = 100
	maxChargeMinor = 15_000_000
)

var phonePattern = regexp.MustCompile(`^\+254\d{9}$`)

// validateAmount parses a USSD amount entry and checks it against the
// configured per-transaction bounds (major units). The second return value
// reports whether the entry was acceptable.
func validateAmount(raw string, min, max int64) (int64, bool) {
	amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	if amount < min || amount > max {
		return 0, false
	}
	return amount, true
}

// validatePhoneNumber checks that the entry is a Kenyan mobile number in
// international format.
func validatePhoneNumber(raw string) bool {
	return phonePattern.MatchString(raw)
}

// validateChargeRequest re-checks the assembled charge payload just before it
// is sent to the gateway. The flow has already validated each field, but the
// payload is built from several sources (session, tenant, property), so a
// final check guards against a malformed combination reaching the gateway.
func validateChargeRequest(req paystackclient.ChargeRequest) error {
	if req.Amount < minChargeMinor || req.Amount > maxChargeMinor {
		return errors.New("charge amount out of bounds")
	}
	if !strings.Contains(req.Email, "@") {
		return errors.New("invalid payer email")
	}
	if req.MobileMoney.Provider != paystackclient.ProviderMpesa {
		return errors.New("unsupported mobile money provider")
	}
	if !validatePhoneNumber(req.MobileMoney.Phone) {
		return errors.New("invalid payer phone number")
	}
	return nil
}
