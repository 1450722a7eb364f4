package app

import (
	"testing"

	"github.com/kejaniverse/payment-service/pkg/paystackclient"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  int64
		valid bool
	}{
		{"minimum", "1", 1, true},
		{"maximum", "150000", 150000, true},
		{"typical rent", "15000", 15000, true},
		{"with surrounding spaces", " 1500 ", 1500, true},
		{"zero", "0", 0, false},
		{"negative", "-1", 0, false},
		{"above maximum", "150001", 0, false},
		{"decimal", "1500.50", 0, false},
		{"non-numeric", "abc", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := validateAmount(tt.raw, 1, 150_000)
			if ok != tt.valid {
				t.Fatalf("validateAmount(%q) valid = %t, want %t", tt.raw, ok, tt.valid)
			}
			if got != tt.want {
				t.Fatalf("validateAmount(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"+254712345678", true},
		{"+254112345678", true},
		{"0712345678", false},
		{"+255712345678", false},
		{"+2547123456789", false},
		{"+25471234567", false},
		{"254712345678", false},
		{"+254 712345678", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := validatePhoneNumber(tt.raw); got != tt.valid {
			t.Fatalf("validatePhoneNumber(%q) = %t, want %t", tt.raw, got, tt.valid)
		}
	}
}

func TestValidateChargeRequest(t *testing.T) {
	valid := paystackclient.ChargeRequest{
		Amount: 150000,
		Email:  "tenant@example.com",
		MobileMoney: paystackclient.MobileMoney{
			Phone:    "+254712345678",
			Provider: paystackclient.ProviderMpesa,
		},
	}

	if err := validateChargeRequest(valid); err != nil {
		t.Fatalf("expected valid payload to pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*paystackclient.ChargeRequest)
	}{
		{"amount below bound", func(r *paystackclient.ChargeRequest) { r.Amount = 99 }},
		{"amount above bound", func(r *paystackclient.ChargeRequest) { r.Amount = 15_000_001 }},
		{"missing email", func(r *paystackclient.ChargeRequest) { r.Email = "" }},
		{"invalid email", func(r *paystackclient.ChargeRequest) { r.Email = "tenant" }},
		{"wrong provider", func(r *paystackclient.ChargeRequest) { r.MobileMoney.Provider = "airtel" }},
		{"invalid phone", func(r *paystackclient.ChargeRequest) { r.MobileMoney.Phone = "0712345678" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid
			tt.mutate(&payload)
			if err := validateChargeRequest(payload); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
