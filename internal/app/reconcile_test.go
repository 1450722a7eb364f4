package app

import (
	"context"
	"testing"
	"time"

	"github.com/kejaniverse/payment-service/internal/domain"
	"github.com/kejaniverse/payment-service/internal/store"
)

func chargeSuccessEvent() domain.PaystackWebhookEvent {
	return domain.PaystackWebhookEvent{
		Event: domain.EventChargeSuccess,
		Data: domain.PaystackChargeData{
			ID:        4099260516,
			Status:    "success",
			Reference: "ref-123",
			Amount:    150000,
			PaidAt:    "2026-08-30T12:00:00Z",
			Channel:   "mobile_money",
			Metadata:  domain.ChargeMetadata{UnitID: "AB12CD"},
		},
	}
}

func TestReconcileChargeEvent_RecordsPayment(t *testing.T) {
	repo := fixtureRepository()
	svc := newFlowService(repo, newMemorySessionStore(), &spyCharger{})

	if err := svc.ReconcileChargeEvent(context.Background(), chargeSuccessEvent()); err != nil {
		t.Fatalf("ReconcileChargeEvent returned error: %v", err)
	}

	if repo.recordCalls != 1 {
		t.Fatalf("expected one ledger write, got %d", repo.recordCalls)
	}
	params := repo.recordParams
	if params.ReferenceNumber != "ref-123" {
		t.Fatalf("expected gateway reference as primary key, got %q", params.ReferenceNumber)
	}
	if params.Amount != 1500 {
		t.Fatalf("expected 150000 subunits to record as KES 1500, got %d", params.Amount)
	}
	if params.UnitID != "AB12CD" {
		t.Fatalf("expected unit from charge metadata, got %q", params.UnitID)
	}
	if params.PaymentMethod != "mpesa" {
		t.Fatalf("expected mpesa payment method, got %q", params.PaymentMethod)
	}
	if params.PaymentReference != "paystack:4099260516" {
		t.Fatalf("expected gateway transaction id reference, got %q", params.PaymentReference)
	}
	wantPaidAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if !params.PaidAt.Equal(wantPaidAt) {
		t.Fatalf("expected paid_at %v, got %v", wantPaidAt, params.PaidAt)
	}
}

func TestReconcileChargeEvent_IgnoresOtherEvents(t *testing.T) {
	repo := fixtureRepository()
	svc := newFlowService(repo, newMemorySessionStore(), &spyCharger{})

	event := chargeSuccessEvent()
	event.Event = "transfer.success"
	if err := svc.ReconcileChargeEvent(context.Background(), event); err != nil {
		t.Fatalf("expected non-charge events to be ignored, got error: %v", err)
	}
	if repo.recordCalls != 0 {
		t.Fatalf("expected no ledger write for ignored event, got %d", repo.recordCalls)
	}
}

func TestReconcileChargeEvent_DuplicateDeliveryIsNoOp(t *testing.T) {
	repo := fixtureRepository()
	repo.recordErr = store.ErrDuplicatePayment
	svc := newFlowService(repo, newMemorySessionStore(), &spyCharger{})

	if err := svc.ReconcileChargeEvent(context.Background(), chargeSuccessEvent()); err != nil {
		t.Fatalf("expected duplicate delivery to succeed as a no-op, got error: %v", err)
	}
}

func TestReconcileChargeEvent_PropagatesLedgerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unit missing", store.ErrUnitNotFound},
		{"unit vacant", store.ErrUnitNotOccupied},
		{"tenant missing", store.ErrTenantNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := fixtureRepository()
			repo.recordErr = tt.err
			svc := newFlowService(repo, newMemorySessionStore(), &spyCharger{})

			if err := svc.ReconcileChargeEvent(context.Background(), chargeSuccessEvent()); err == nil {
				t.Fatal("expected ledger error to propagate")
			}
		})
	}
}

func TestReconcileChargeEvent_RejectsIncompleteEvents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PaystackWebhookEvent)
	}{
		{"missing reference", func(e *domain.PaystackWebhookEvent) { e.Data.Reference = "" }},
		{"missing unit metadata", func(e *domain.PaystackWebhookEvent) { e.Data.Metadata.UnitID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := fixtureRepository()
			svc := newFlowService(repo, newMemorySessionStore(), &spyCharger{})

			event := chargeSuccessEvent()
			tt.mutate(&event)
			if err := svc.ReconcileChargeEvent(context.Background(), event); err == nil {
				t.Fatal("expected error for incomplete event")
			}
			if repo.recordCalls != 0 {
				t.Fatalf("expected no ledger write, got %d", repo.recordCalls)
			}
		})
	}
}

func TestReconcileChargeEvent_UnparsablePaidAtUsesCurrentTime(t *testing.T) {
	repo := fixtureRepository()
	svc := newFlowService(repo, newMemorySessionStore(), &spyCharger{})

	event := chargeSuccessEvent()
	event.Data.PaidAt = "not-a-timestamp"
	before := time.Now().UTC()
	if err := svc.ReconcileChargeEvent(context.Background(), event); err != nil {
		t.Fatalf("ReconcileChargeEvent returned error: %v", err)
	}
	after := time.Now().UTC()

	if repo.recordParams.PaidAt.Before(before) || repo.recordParams.PaidAt.After(after) {
		t.Fatalf("expected fallback paid_at near current time, got %v", repo.recordParams.PaidAt)
	}
}
