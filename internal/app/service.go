/**
 * @description
 * This file contains the core business logic for the payment-service. The
 * `Service` struct drives the USSD rent-payment flow, initiates mobile-money
 * charges against Paystack, and reconciles verified webhook events into the
 * payment ledger.
 *
 * Key features:
 * - Advances the USSD state machine one step per gateway callback, storing
 *   progress in the session store between requests.
 * - Builds and submits the charge payload once the caller confirms.
 * - Applies webhook charge outcomes atomically through the repository and
 *   publishes payment events for downstream services.
 *
 * @dependencies
 * - context, errors, fmt, log, strings, time: Standard Go libraries.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/paystackclient, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kejaniverse/payment-service/internal/domain"
	"github.com/kejaniverse/payment-service/internal/store"
	"github.com/kejaniverse/payment-service/pkg/paystackclient"
	"github.com/kejaniverse/payment-service/pkg/rabbitmq"
)

// ChargeInitiator submits a charge request to the payment gateway. The
// Paystack client satisfies this; tests substitute a spy.
type ChargeInitiator interface {
	Charge(ctx context.Context, payload paystackclient.ChargeRequest) (*paystackclient.ChargeResponse, error)
}

// Service provides the core business logic for rent payments.
type Service struct {
	repo          store.Repository
	sessions      SessionStore
	charger       ChargeInitiator
	eventProducer rabbitmq.Publisher
	rentMin       int64 // major units (KES)
	rentMax       int64 // major units (KES)
}

// NewService creates a new payment service instance. producer may be nil when
// RabbitMQ is unavailable; event publishing degrades to a no-op.
func NewService(repo store.Repository, sessions SessionStore, charger ChargeInitiator, producer rabbitmq.Publisher, rentMin, rentMax int64) *Service {
	if rentMin <= 0 {
		rentMin = 1
	}
	if rentMax <= 0 {
		rentMax = 150_000
	}
	return &Service{
		repo:          repo,
		sessions:      sessions,
		charger:       charger,
		eventProducer: producer,
		rentMin:       rentMin,
		rentMax:       rentMax,
	}
}

// HandleUSSD processes one gateway callback for the given session and returns
// the CON/END reply text. It never returns an error: every failure maps to a
// terminal END message, because the USSD gateway expects a 200 with reply
// text in all cases.
func (s *Service) HandleUSSD(ctx context.Context, sessionID, text string) string {
	if strings.TrimSpace(text) == "" {
		return msgWelcome
	}

	// The transcript carries every answer so far; only the newest one is
	// consumed. The stored state, not the transcript, decides the next step.
	input := lastAnswer(text)

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Printf("level=error component=ussd_flow msg=\"session load failed\" session_id=%s err=%v", sessionID, err)
		return msgGenericFailure
	}
	if sess == nil {
		sess = NewSession()
	}

	switch sess.State {
	case StateAwaitingUnit:
		return s.stepUnit(ctx, sessionID, sess, input)
	case StateAwaitingAmount:
		return s.stepAmount(ctx, sessionID, sess, input)
	case StateAwaitingPhone:
		return s.stepPhone(ctx, sessionID, sess, input)
	case StateAwaitingConfirmation:
		return s.stepConfirmation(ctx, sessionID, sess, input)
	default:
		log.Printf("level=error component=ussd_flow msg=\"unknown session state\" session_id=%s state=%q", sessionID, sess.State)
		return msgGenericFailure
	}
}

// stepUnit validates the unit identifier and advances to the amount step.
func (s *Service) stepUnit(ctx context.Context, sessionID string, sess *Session, input string) string {
	if len(input) != domain.UnitIDLength {
		return msgUnitIDLength
	}

	_, err := s.repo.FindUnitByID(ctx, input)
	if err != nil {
		if errors.Is(err, store.ErrUnitNotFound) {
			return msgUnitNotFound
		}
		log.Printf("level=error component=ussd_flow step=unit msg=\"unit lookup failed\" session_id=%s unit_id=%s err=%v", sessionID, input, err)
		return msgGenericFailure
	}

	sess.UnitID = input
	sess.State = StateAwaitingAmount
	if err := s.sessions.Save(ctx, sessionID, sess); err != nil {
		log.Printf("level=error component=ussd_flow step=unit msg=\"session save failed\" session_id=%s err=%v", sessionID, err)
		return msgGenericFailure
	}
	return msgPromptAmount
}

// stepAmount validates the rent amount and advances to the phone step.
func (s *Service) stepAmount(ctx context.Context, sessionID string, sess *Session, input string) string {
	amount, ok := validateAmount(input, s.rentMin, s.rentMax)
	if !ok {
		return invalidAmountMessage(input, s.rentMin, s.rentMax)
	}

	sess.Amount = amount
	sess.State = StateAwaitingPhone
	if err := s.sessions.Save(ctx, sessionID, sess); err != nil {
		log.Printf("level=error component=ussd_flow step=amount msg=\"session save failed\" session_id=%s err=%v", sessionID, err)
		return msgGenericFailure
	}
	return msgPromptPhone
}

// stepPhone validates the payer phone number and advances to confirmation.
func (s *Service) stepPhone(ctx context.Context, sessionID string, sess *Session, input string) string {
	if !validatePhoneNumber(input) {
		return invalidPhoneMessage(input)
	}

	sess.PhoneNumber = input
	sess.State = StateAwaitingConfirmation
	if err := s.sessions.Save(ctx, sessionID, sess); err != nil {
		log.Printf("level=error component=ussd_flow step=phone msg=\"session save failed\" session_id=%s err=%v", sessionID, err)
		return msgGenericFailure
	}
	return confirmationPrompt(sess.Amount, sess.UnitID)
}

// stepConfirmation either initiates the charge or cancels the session.
// Both branches are terminal, so the session is discarded; an abandoned
// session would otherwise linger until the TTL clears it.
func (s *Service) stepConfirmation(ctx context.Context, sessionID string, sess *Session, input string) string {
	defer func() {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			log.Printf("level=warn component=ussd_flow step=confirmation msg=\"session delete failed\" session_id=%s err=%v", sessionID, err)
		}
	}()

	if input != "1" {
		return msgCancelled
	}
	return s.initiateCharge(ctx, sess)
}

// initiateCharge resolves the tenant and landlord routing details for the
// unit, assembles the charge payload, and submits it to the gateway. The
// charge outcome itself arrives later on the webhook; a successful submission
// only means the payer will receive an M-Pesa prompt.
func (s *Service) initiateCharge(ctx context.Context, sess *Session) string {
	tenant, err := s.repo.FindTenantByUnitID(ctx, sess.UnitID)
	if err != nil {
		log.Printf("level=error component=charge msg=\"tenant lookup failed\" unit_id=%s err=%v", sess.UnitID, err)
		return msgLookupFailed
	}

	property, err := s.repo.FindPropertyByUnitID(ctx, sess.UnitID)
	if err != nil {
		log.Printf("level=error component=charge msg=\"property lookup failed\" unit_id=%s err=%v", sess.UnitID, err)
		return msgLookupFailed
	}

	payload := paystackclient.ChargeRequest{
		Amount: domain.MajorToMinor(sess.Amount),
		Email:  tenant.Email,
		MobileMoney: paystackclient.MobileMoney{
			Phone:    sess.PhoneNumber,
			Provider: paystackclient.ProviderMpesa,
		},
		Subaccount: property.SubaccountCode,
		Metadata:   paystackclient.ChargeMetadata{UnitID: sess.UnitID},
	}

	if err := validateChargeRequest(payload); err != nil {
		log.Printf("level=error component=charge msg=\"charge payload rejected\" unit_id=%s err=%v", sess.UnitID, err)
		return msgChargeInvalid
	}

	if _, err := s.charger.Charge(ctx, payload); err != nil {
		log.Printf("level=warn component=charge msg=\"charge initiation failed\" unit_id=%s err=%v", sess.UnitID, err)
		return msgChargeFailed
	}

	log.Printf("level=info component=charge msg=\"charge initiated\" unit_id=%s amount_kes=%d", sess.UnitID, sess.Amount)
	return msgChargeInitiated
}

// ReconcileChargeEvent applies a verified webhook event to the payment
// ledger. Events other than charge.success are ignored. A duplicate delivery
// of an already-recorded reference is treated as success so the gateway does
// not keep retrying.
func (s *Service) ReconcileChargeEvent(ctx context.Context, event domain.PaystackWebhookEvent) error {
	if event.Event != domain.EventChargeSuccess {
		return nil
	}
	if event.Data.Reference == "" {
		return errors.New("charge event missing reference")
	}
	if event.Data.Metadata.UnitID == "" {
		return errors.New("charge event missing unit metadata")
	}

	paidAt, err := time.Parse(time.RFC3339, event.Data.PaidAt)
	if err != nil {
		log.Printf("level=warn component=reconciler msg=\"unparsable paid_at; using current time\" reference=%s paid_at=%q", event.Data.Reference, event.Data.PaidAt)
		paidAt = time.Now().UTC()
	}

	payment, err := s.repo.RecordRentPayment(ctx, store.RecordRentPaymentParams{
		ReferenceNumber:  event.Data.Reference,
		Amount:           domain.MinorToMajor(event.Data.Amount),
		PaidAt:           paidAt,
		PaymentMethod:    "mpesa",
		PaymentReference: fmt.Sprintf("paystack:%d", event.Data.ID),
		UnitID:           event.Data.Metadata.UnitID,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicatePayment) {
			log.Printf("level=info component=reconciler msg=\"duplicate delivery ignored\" reference=%s", event.Data.Reference)
			return nil
		}
		return err
	}

	log.Printf("level=info component=reconciler msg=\"payment recorded\" reference=%s unit_id=%s amount_kes=%d", payment.ReferenceNumber, payment.UnitID, payment.Amount)

	if s.eventProducer != nil {
		recorded := rabbitmq.PaymentRecordedEvent{
			ReferenceNumber: payment.ReferenceNumber,
			UnitID:          payment.UnitID,
			TenantID:        payment.TenantID,
			Amount:          payment.Amount,
			PaidAt:          payment.PaidAt,
		}
		if err := s.eventProducer.PublishPaymentRecorded(ctx, recorded); err != nil {
			log.Printf("level=warn component=reconciler msg=\"payment event publish failed\" reference=%s err=%v", payment.ReferenceNumber, err)
		}
	}

	return nil
}

// ListUnitPayments returns the recorded payments for a unit.
func (s *Service) ListUnitPayments(ctx context.Context, unitID string) ([]domain.Payment, error) {
	if _, err := s.repo.FindUnitByID(ctx, unitID); err != nil {
		return nil, err
	}
	return s.repo.ListPaymentsByUnitID(ctx, unitID)
}

// TenantRentSummary returns a tenant's rent position.
func (s *Service) TenantRentSummary(ctx context.Context, tenantID uuid.UUID) (*domain.TenantRentSummary, error) {
	return s.repo.GetTenantRentSummary(ctx, tenantID)
}
