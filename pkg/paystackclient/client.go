/**
 * @description
 * This package provides a client for interacting with the Paystack API.
 * It encapsulates the logic for making authenticated HTTP requests to
 * Paystack's charge endpoint, handling request body construction, and
 * parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package paystackclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ProviderMpesa is the mobile-money provider tag Paystack expects for
// M-Pesa charges.
const ProviderMpesa = "mpesa"

// Client is a client for the Paystack API.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// NewClient creates a new Paystack API client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MobileMoney identifies the wallet to debit.
type MobileMoney struct {
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

// ChargeMetadata is echoed back verbatim in webhook notifications and links
// the charge to the unit it pays rent for.
type ChargeMetadata struct {
	UnitID string `json:"unitId"`
}

// ChargeRequest is the payload for Paystack's charge endpoint. Amount is in
// minor units (subunits).
type ChargeRequest struct {
	Amount      int64          `json:"amount"`
	Email       string         `json:"email"`
	MobileMoney MobileMoney    `json:"mobile_money"`
	Subaccount  string         `json:"subaccount,omitempty"`
	Metadata    ChargeMetadata `json:"metadata"`
}

// ChargeResponse is the expected response from Paystack's charge endpoint.
type ChargeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference   string `json:"reference"`
		Status      string `json:"status"`
		DisplayText string `json:"display_text"`
	} `json:"data"`
}

// ErrorResponse represents an error from the Paystack API.
type ErrorResponse struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *ErrorResponse) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("paystack api error: %s", e.Message)
	}
	return fmt.Sprintf("paystack api error (status %d)", e.StatusCode)
}

// Charge submits a mobile-money charge request. The gateway responds
// synchronously with a pending charge; the final outcome arrives later on
// the webhook.
func (c *Client) Charge(ctx context.Context, payload ChargeRequest) (*ChargeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/charge", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create charge request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute charge request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read charge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := ErrorResponse{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			log.Printf("level=warn component=paystack_client op=charge status=%d msg=\"non-2xx response (unparsable error body)\"", resp.StatusCode)
			return nil, fmt.Errorf("failed to decode error response (status %d)", resp.StatusCode)
		}
		log.Printf("level=warn component=paystack_client op=charge status=%d message=%q", resp.StatusCode, errResp.Message)
		return nil, &errResp
	}

	var successResp ChargeResponse
	if err := json.Unmarshal(bodyBytes, &successResp); err != nil {
		return nil, fmt.Errorf("failed to decode charge response: %w", err)
	}

	return &successResp, nil
}
